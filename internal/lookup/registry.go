package lookup

import (
	"context"
	"fmt"
	"os"
	"strings"

	"oembed/internal/config"
	"oembed/internal/logger"
	"oembed/internal/transport"
	"oembed/pkg/oembed"
)

// SourceBundled names the provider list compiled into the binary.
const SourceBundled = "bundled"

// LoadSchema loads the provider list selected by cfg: a local file, a remote
// list (providers_url or fetch_latest) or the bundled snapshot. A remote list
// that cannot be loaded falls back to the bundled one. It returns the schema
// and a description of where it came from.
func LoadSchema(ctx context.Context, cfg config.Config, client *transport.Client, log *logger.Logger) (*oembed.Schema, string, error) {
	if cfg.ProvidersFile != "" {
		f, err := os.Open(cfg.ProvidersFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open providers file: %w", err)
		}
		defer f.Close()

		schema, err := oembed.LoadReader(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load providers file %s: %w", cfg.ProvidersFile, err)
		}
		return schema, cfg.ProvidersFile, nil
	}

	remote := cfg.ProvidersURL
	if remote == "" && cfg.FetchLatest {
		remote = oembed.LatestProvidersURL
	}
	if remote != "" {
		schema, err := oembed.FetchFromURL(client.WithContext(ctx), remote)
		if err == nil {
			return schema, remote, nil
		}
		log.Warn("Could not load provider list from %s, using bundled list: %v", remote, err)
	}

	schema, err := oembed.LoadIncluded()
	if err != nil {
		return nil, "", fmt.Errorf("bundled provider list is broken: %w", err)
	}
	return schema, SourceBundled, nil
}

// FilterProviders returns the providers whose name or URL contains substr,
// ignoring case. An empty substr returns all providers.
func FilterProviders(providers []oembed.Provider, substr string) []oembed.Provider {
	if substr == "" {
		return providers
	}
	needle := strings.ToLower(substr)
	var out []oembed.Provider
	for _, p := range providers {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.URL), needle) {
			out = append(out, p)
		}
	}
	return out
}
