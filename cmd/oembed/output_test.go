package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"oembed/internal/lookup"
	"oembed/pkg/oembed"
)

func init() {
	color.NoColor = true
}

func mustParse(t *testing.T, body string) oembed.Response {
	t.Helper()
	resp, err := oembed.Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return resp
}

func sampleResults(t *testing.T) []lookup.Result {
	return []lookup.Result{
		{
			URL:      "http://www.flickr.com/photos/bees/2341623661/",
			Status:   lookup.StatusOK,
			Provider: "Flickr",
			Response: mustParse(t, `{"version":"1.0","type":"photo","width":240,"height":160,
				"title":"ZB8T0193","url":"http://farm4.static.flickr.com/3123/2341623661_7c99f48bbf_m.jpg",
				"author_name":"Bees","provider_name":"Flickr","cache_age":"3600"}`),
		},
		{
			URL:    "https://nowhere.test/",
			Status: lookup.StatusUnsupported,
		},
		{
			URL:      "https://vimeo.com/1",
			Status:   lookup.StatusFailed,
			Provider: "Vimeo",
			Err:      errors.New("returned 404"),
		},
	}
}

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	printText(&buf, sampleResults(t))
	out := buf.String()

	for _, want := range []string{
		"✓ http://www.flickr.com/photos/bees/2341623661/ [Flickr]",
		"title:     ZB8T0193",
		"size:      240x160",
		"cache age: 3600s",
		"? https://nowhere.test/",
		"no provider for this URL",
		"✗ https://vimeo.com/1 [Vimeo]",
		"returned 404",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, sampleResults(t)); err != nil {
		t.Fatalf("printJSON() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var first struct {
		Status   string         `json:"status"`
		Response map[string]any `json:"response"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Status != "ok" || first.Response["type"] != "photo" || first.Response["cache_age"] != float64(3600) {
		t.Errorf("first line = %s", lines[0])
	}
	if strings.Contains(lines[1], `"response"`) {
		t.Errorf("unsupported result carries a response: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"error":"returned 404"`) {
		t.Errorf("failed result missing error: %s", lines[2])
	}
}

func TestExitStatus(t *testing.T) {
	ok := lookup.Result{Status: lookup.StatusOK}
	unsupported := lookup.Result{Status: lookup.StatusUnsupported}
	failed := lookup.Result{Status: lookup.StatusFailed}

	tests := []struct {
		name    string
		results []lookup.Result
		want    int
	}{
		{"all ok", []lookup.Result{ok, ok}, exitOK},
		{"unsupported", []lookup.Result{ok, unsupported}, exitUnsupported},
		{"failed", []lookup.Result{ok, failed}, exitFailure},
		{"failed outranks unsupported", []lookup.Result{unsupported, failed}, exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitStatus(tt.results)
			code := exitOK
			var ee *exitError
			if errors.As(err, &ee) {
				code = ee.code
			}
			if code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("<iframe\n   src=\"x\">\n</iframe>", 100); got != `<iframe src="x"> </iframe>` {
		t.Errorf("oneLine() = %q", got)
	}
	if got := oneLine("abcdef", 3); got != "abc…" {
		t.Errorf("oneLine() = %q", got)
	}
}

func TestPrintMatches(t *testing.T) {
	schema, err := oembed.LoadIncluded()
	if err != nil {
		t.Fatal(err)
	}
	m, ok := schema.Match("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	matches := []matchResult{
		newMatchResult("https://www.youtube.com/watch?v=dQw4w9WgXcQ", m, ok),
		newMatchResult("https://nowhere.test/", oembed.Match{}, false),
	}

	var buf bytes.Buffer
	printMatches(&buf, matches)
	out := buf.String()
	if !strings.Contains(out, "[YouTube]") || !strings.Contains(out, "? https://nowhere.test/") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
