package lookup

import (
	"context"
	"time"

	"oembed/internal/logger"
	"oembed/internal/metrics"
	"oembed/internal/transport"
	"oembed/pkg/oembed"
)

// Status is the outcome of a lookup.
type Status string

const (
	StatusOK          Status = metrics.OutcomeOK
	StatusUnsupported Status = metrics.OutcomeUnsupported
	StatusFailed      Status = metrics.OutcomeFailed
)

// Result describes one lookup. Provider, Endpoint and Scheme are empty when
// Status is StatusUnsupported; Err is set only when Status is StatusFailed.
type Result struct {
	URL      string
	Status   Status
	Provider string
	Endpoint string
	Scheme   string
	Response oembed.Response
	Err      error
	Elapsed  time.Duration
}

// Service resolves URLs to oEmbed responses using a loaded schema.
type Service struct {
	schema *oembed.Schema
	client *transport.Client
	opts   oembed.Options
	logger *logger.Logger
}

// New creates a Service. opts are the default consumer parameters.
func New(schema *oembed.Schema, client *transport.Client, opts oembed.Options, log *logger.Logger) *Service {
	return &Service{schema: schema, client: client, opts: opts, logger: log}
}

// Schema returns the provider schema in use.
func (s *Service) Schema() *oembed.Schema { return s.schema }

// Options returns the default consumer parameters.
func (s *Service) Options() oembed.Options { return s.opts }

// Match finds the provider endpoint for url without fetching anything.
func (s *Service) Match(url string) (oembed.Match, bool) {
	return s.schema.Match(url)
}

// Lookup fetches the oEmbed response for url with the default options.
func (s *Service) Lookup(ctx context.Context, url string) Result {
	return s.LookupWithOptions(ctx, url, s.opts)
}

// LookupWithOptions fetches the oEmbed response for url.
func (s *Service) LookupWithOptions(ctx context.Context, url string, opts oembed.Options) Result {
	start := time.Now()
	res := Result{URL: url}

	m, ok := s.schema.Match(url)
	if !ok {
		res.Status = StatusUnsupported
		res.Elapsed = time.Since(start)
		s.logger.Debug("No provider for %s", url)
		metrics.ObserveLookup("", string(res.Status), res.Elapsed)
		return res
	}

	res.Provider = m.Provider.Name
	res.Endpoint = m.Endpoint.URL
	res.Scheme = m.Scheme
	s.logger.Debug("Matched %s to %s via %s", url, m.Provider.Name, m.Scheme)

	resp, err := m.Endpoint.Fetch(s.client.WithContext(ctx), url, opts)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		s.logger.Warn("%s lookup for %s failed: %v", m.Provider.Name, url, err)
	} else {
		res.Status = StatusOK
		res.Response = resp
		s.logger.Debug("%s returned a %s response in %s", m.Provider.Name, resp.Kind(), res.Elapsed)
	}

	metrics.ObserveLookup(res.Provider, string(res.Status), res.Elapsed)
	return res
}
