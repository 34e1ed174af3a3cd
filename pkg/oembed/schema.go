package oembed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

//go:embed providers.json
var includedProviders []byte

// Provider is an oEmbed provider and the endpoints it serves.
type Provider struct {
	Name      string
	URL       string
	Endpoints []Endpoint
}

// Endpoint is one API endpoint of a provider. URL is a template that may
// contain the {format} and {url} placeholders.
type Endpoint struct {
	URL       string
	Schemes   []string
	Formats   []string
	Discovery bool

	patterns []*Pattern
}

// MatchScheme returns the first of the endpoint's schemes matching url.
func (e *Endpoint) MatchScheme(url string) (string, bool) {
	for _, p := range e.patterns {
		if p.Match(url) {
			return p.String(), true
		}
	}
	return "", false
}

// Match is the result of a successful schema lookup.
type Match struct {
	Provider *Provider
	Endpoint *Endpoint
	// Scheme is the pattern that matched the URL.
	Scheme string
}

// Schema is an ordered, read-only list of providers. A loaded Schema may be
// shared between goroutines.
//
// Lookups are a linear scan in load order; the first matching provider wins.
type Schema struct {
	providers []Provider
}

type providerJSON struct {
	Name      *string         `json:"provider_name"`
	URL       *string         `json:"provider_url"`
	Endpoints *[]endpointJSON `json:"endpoints"`
}

type endpointJSON struct {
	URL       *string  `json:"url"`
	Schemes   []string `json:"schemes"`
	Formats   []string `json:"formats"`
	Discovery bool     `json:"discovery"`
}

// Load parses a provider list in the oembed.com providers.json format.
//
// Endpoints that declare no schemes can only be reached through discovery,
// which is unsupported, so they are left out; so is a provider left with no
// endpoints at all.
func Load(data []byte) (*Schema, error) {
	var raw []providerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Msg: "provider list", Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Msg: "provider list is not an array"}
	}

	providers := make([]Provider, 0, len(raw))
	for i, rp := range raw {
		p, err := buildProvider(i, rp)
		if err != nil {
			return nil, err
		}
		if len(p.Endpoints) == 0 {
			continue
		}
		providers = append(providers, p)
	}
	return &Schema{providers: providers}, nil
}

func buildProvider(i int, rp providerJSON) (Provider, error) {
	switch {
	case rp.Name == nil:
		return Provider{}, parseErrorf("provider_name", "provider %d: missing", i)
	case rp.URL == nil:
		return Provider{}, parseErrorf("provider_url", "provider %d (%s): missing", i, *rp.Name)
	case rp.Endpoints == nil:
		return Provider{}, parseErrorf("endpoints", "provider %d (%s): missing", i, *rp.Name)
	}

	p := Provider{Name: *rp.Name, URL: *rp.URL}
	for j, re := range *rp.Endpoints {
		if re.URL == nil {
			return Provider{}, parseErrorf("url", "provider %s: endpoint %d: missing", p.Name, j)
		}
		if len(re.Schemes) == 0 {
			continue
		}

		e := Endpoint{
			URL:       *re.URL,
			Schemes:   re.Schemes,
			Formats:   re.Formats,
			Discovery: re.Discovery,
			patterns:  make([]*Pattern, 0, len(re.Schemes)),
		}
		for _, s := range re.Schemes {
			pat, err := CompilePattern(s)
			if err != nil {
				return Provider{}, &ParseError{
					Field: "schemes",
					Msg:   fmt.Sprintf("provider %s: endpoint %d", p.Name, j),
					Err:   err,
				}
			}
			e.patterns = append(e.patterns, pat)
		}
		p.Endpoints = append(p.Endpoints, e)
	}
	return p, nil
}

// LoadReader reads a provider list from r and parses it with Load.
func LoadReader(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("oembed: read provider list: %w", err)
	}
	return Load(data)
}

// LoadIncluded loads the provider list bundled with this package. The list is
// a snapshot; use FetchLatest for the current one.
func LoadIncluded() (*Schema, error) {
	return Load(includedProviders)
}

// FetchLatest loads the public provider list from oembed.com.
func FetchLatest(h HTTP) (*Schema, error) {
	return FetchFromURL(h, LatestProvidersURL)
}

// FetchFromURL loads a provider list from url.
func FetchFromURL(h HTTP, url string) (*Schema, error) {
	body, err := h.Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return Load([]byte(body))
}

// Len returns the number of providers.
func (s *Schema) Len() int { return len(s.providers) }

// Providers returns the providers in load order. The returned slice is a copy
// but the providers themselves are shared and must not be modified.
func (s *Schema) Providers() []Provider {
	return slices.Clone(s.providers)
}

// Match finds the first endpoint with a scheme matching url. Providers are
// searched in load order, then endpoints and schemes in declared order.
func (s *Schema) Match(url string) (Match, bool) {
	for i := range s.providers {
		p := &s.providers[i]
		for j := range p.Endpoints {
			e := &p.Endpoints[j]
			if scheme, ok := e.MatchScheme(url); ok {
				return Match{Provider: p, Endpoint: e, Scheme: scheme}, true
			}
		}
	}
	return Match{}, false
}

// FindProvider returns the provider owning url. An unsupported URL is not an
// error; ok is false.
func (s *Schema) FindProvider(url string) (*Provider, bool) {
	m, ok := s.Match(url)
	if !ok {
		return nil, false
	}
	return m.Provider, true
}

// Fetch requests the oEmbed response for url from the matching provider.
//
// The three outcomes are kept apart: ok is false when no provider matches url
// (resp and err are nil); ok is true with a non-nil err when a provider
// matched but encoding, the request or parsing failed; otherwise resp holds
// the parsed response.
func (s *Schema) Fetch(h HTTP, url string) (resp Response, ok bool, err error) {
	return s.FetchWithOptions(h, url, Options{})
}

// FetchWithOptions is Fetch with consumer request parameters.
func (s *Schema) FetchWithOptions(h HTTP, url string, opts Options) (Response, bool, error) {
	m, ok := s.Match(url)
	if !ok {
		return nil, false, nil
	}
	resp, err := m.Endpoint.Fetch(h, url, opts)
	return resp, true, err
}

// Fetch requests and parses the oEmbed response for url from this endpoint.
// The endpoint is used even if url does not match its schemes.
func (e *Endpoint) Fetch(h HTTP, url string, opts Options) (Response, error) {
	reqURL, err := BuildRequestURL(e, url, h, opts)
	if err != nil {
		return nil, err
	}

	body, err := h.Get(reqURL)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}
	return Parse([]byte(body))
}
