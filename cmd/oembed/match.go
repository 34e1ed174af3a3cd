package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"oembed/pkg/oembed"
)

var matchCmd = &cobra.Command{
	Use:   "match <url>...",
	Short: "Show which provider handles each URL, without fetching",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		matches := make([]matchResult, len(args))
		unsupported := 0
		for i, u := range args {
			m, ok := a.svc.Match(u)
			matches[i] = newMatchResult(u, m, ok)
			if !ok {
				unsupported++
			}
		}

		if a.cfg.Output == "json" {
			if err := json.NewEncoder(os.Stdout).Encode(matches); err != nil {
				return fmt.Errorf("failed to encode matches: %w", err)
			}
		} else {
			printMatches(os.Stdout, matches)
		}

		if unsupported > 0 {
			return &exitError{code: exitUnsupported, msg: fmt.Sprintf("%d of %d URLs have no provider", unsupported, len(args))}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

type matchResult struct {
	URL         string `json:"url"`
	Supported   bool   `json:"supported"`
	Provider    string `json:"provider_name,omitempty"`
	ProviderURL string `json:"provider_url,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
}

func newMatchResult(url string, m oembed.Match, ok bool) matchResult {
	if !ok {
		return matchResult{URL: url}
	}
	return matchResult{
		URL:         url,
		Supported:   true,
		Provider:    m.Provider.Name,
		ProviderURL: m.Provider.URL,
		Endpoint:    m.Endpoint.URL,
		Scheme:      m.Scheme,
	}
}

func printMatches(w io.Writer, matches []matchResult) {
	for _, m := range matches {
		if !m.Supported {
			fmt.Fprintf(w, "%s %s\n", yellow.Sprint("?"), m.URL)
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", green.Sprint("✓"), m.URL, cyan.Sprintf("[%s]", m.Provider))
		fmt.Fprintf(w, "  %s %s\n", bold.Sprintf("%-10s", "scheme:"), m.Scheme)
		fmt.Fprintf(w, "  %s %s\n", bold.Sprintf("%-10s", "endpoint:"), m.Endpoint)
	}
}
