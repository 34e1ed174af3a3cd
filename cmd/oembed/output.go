package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"oembed/internal/lookup"
	"oembed/pkg/oembed"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
)

type resultJSON struct {
	URL      string          `json:"url"`
	Status   lookup.Status   `json:"status"`
	Provider string          `json:"provider,omitempty"`
	Error    string          `json:"error,omitempty"`
	Response oembed.Response `json:"response,omitempty"`
}

// printJSON writes one JSON object per result.
func printJSON(w io.Writer, results []lookup.Result) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		out := resultJSON{
			URL:      res.URL,
			Status:   res.Status,
			Provider: res.Provider,
			Response: res.Response,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	return nil
}

func printText(w io.Writer, results []lookup.Result) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		switch res.Status {
		case lookup.StatusUnsupported:
			fmt.Fprintf(w, "%s %s\n", yellow.Sprint("?"), res.URL)
			fmt.Fprintf(w, "  %s\n", yellow.Sprint("no provider for this URL"))
		case lookup.StatusFailed:
			fmt.Fprintf(w, "%s %s %s\n", red.Sprint("✗"), res.URL, cyan.Sprintf("[%s]", res.Provider))
			fmt.Fprintf(w, "  %s\n", red.Sprint(res.Err))
		default:
			fmt.Fprintf(w, "%s %s %s\n", green.Sprint("✓"), res.URL, cyan.Sprintf("[%s]", res.Provider))
			printResponse(w, res.Response)
		}
	}
}

func printResponse(w io.Writer, resp oembed.Response) {
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %s %s\n", bold.Sprintf("%-10s", name+":"), value)
		}
	}

	m := resp.Meta()
	field("type", string(resp.Kind()))
	field("title", deref(m.Title))
	field("author", deref(m.AuthorName))
	field("provider", deref(m.ProviderName))

	switch r := resp.(type) {
	case *oembed.Photo:
		field("url", r.URL)
		field("size", size(r.Width, r.Height))
	case *oembed.Video:
		field("size", size(r.Width, r.Height))
		field("html", oneLine(r.HTML, 100))
	case *oembed.Rich:
		field("size", size(r.Width, r.Height))
		field("html", oneLine(r.HTML, 100))
	}

	field("thumbnail", deref(m.ThumbnailURL))
	if m.CacheAge != nil {
		field("cache age", fmt.Sprintf("%ds", *m.CacheAge))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func size(width, height *int) string {
	if width == nil && height == nil {
		return ""
	}
	dim := func(v *int) string {
		if v == nil {
			return "?"
		}
		return fmt.Sprint(*v)
	}
	return dim(width) + "x" + dim(height)
}

// oneLine collapses whitespace and truncates s to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

// exitStatus maps results to the process exit status. A failure outranks an
// unsupported URL.
func exitStatus(results []lookup.Result) error {
	var failed, unsupported int
	for _, res := range results {
		switch res.Status {
		case lookup.StatusFailed:
			failed++
		case lookup.StatusUnsupported:
			unsupported++
		}
	}

	switch {
	case failed > 0:
		return &exitError{code: exitFailure, msg: fmt.Sprintf("%d of %d lookups failed", failed, len(results))}
	case unsupported > 0:
		return &exitError{code: exitUnsupported, msg: fmt.Sprintf("%d of %d URLs have no provider", unsupported, len(results))}
	}
	return nil
}
