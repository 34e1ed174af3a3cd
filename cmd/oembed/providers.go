package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"oembed/internal/lookup"
	"oembed/pkg/oembed"
)

var providerFilter string

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List known oEmbed providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		providers := lookup.FilterProviders(a.svc.Schema().Providers(), providerFilter)
		if a.cfg.Output == "json" {
			return printProvidersJSON(os.Stdout, providers)
		}
		printProviders(os.Stdout, providers)
		return nil
	},
}

func init() {
	providersCmd.Flags().StringVar(&providerFilter, "filter", "", "only list providers whose name or URL contains this text")
	rootCmd.AddCommand(providersCmd)
}

type endpointJSON struct {
	URL     string   `json:"url"`
	Schemes []string `json:"schemes"`
}

type providerJSON struct {
	Name      string         `json:"provider_name"`
	URL       string         `json:"provider_url"`
	Endpoints []endpointJSON `json:"endpoints"`
}

func printProvidersJSON(w io.Writer, providers []oembed.Provider) error {
	out := make([]providerJSON, len(providers))
	for i, p := range providers {
		out[i] = providerJSON{Name: p.Name, URL: p.URL}
		for _, e := range p.Endpoints {
			out[i].Endpoints = append(out[i].Endpoints, endpointJSON{URL: e.URL, Schemes: e.Schemes})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode providers: %w", err)
	}
	return nil
}

func printProviders(w io.Writer, providers []oembed.Provider) {
	for _, p := range providers {
		schemes := 0
		for _, e := range p.Endpoints {
			schemes += len(e.Schemes)
		}
		fmt.Fprintf(w, "%s %s (%d schemes)\n", bold.Sprintf("%-20s", p.Name), p.URL, schemes)
	}
	fmt.Fprintf(w, "\n%d providers\n", len(providers))
}
