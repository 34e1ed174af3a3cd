package oembed

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

// fakeHTTP is an in-memory HTTP capability.
type fakeHTTP struct {
	body      string
	getErr    error
	encodeErr error

	encodeCalls int
	requested   []string
}

func (f *fakeHTTP) URLEncode(s string) (string, error) {
	f.encodeCalls++
	if f.encodeErr != nil {
		return "", f.encodeErr
	}
	return url.QueryEscape(s), nil
}

func (f *fakeHTTP) Get(u string) (string, error) {
	f.requested = append(f.requested, u)
	return f.body, f.getErr
}

const quickStartPhoto = `{
	"version": "1.0",
	"type": "photo",
	"width": 240,
	"height": 160,
	"title": "ZB8T0193",
	"url": "http://farm4.static.flickr.com/3123/2341623661_7c99f48bbf_m.jpg",
	"author_name": "Bees",
	"author_url": "http://www.flickr.com/photos/bees/",
	"provider_name": "Flickr",
	"provider_url": "http://www.flickr.com/"
}`

const twoProviders = `[
	{
		"provider_name": "First",
		"provider_url": "https://first.test/",
		"endpoints": [{"schemes": ["https://media.test/*"], "url": "https://first.test/oembed"}]
	},
	{
		"provider_name": "Second",
		"provider_url": "https://second.test/",
		"endpoints": [{"schemes": ["https://media.test/video/*"], "url": "https://second.test/oembed"}]
	}
]`

func mustLoad(t *testing.T, data string) *Schema {
	t.Helper()
	s, err := Load([]byte(data))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return s
}

func TestLoadIncluded(t *testing.T) {
	s, err := LoadIncluded()
	if err != nil {
		t.Fatalf("LoadIncluded() error: %v", err)
	}
	if s.Len() == 0 {
		t.Fatal("bundled schema has no providers")
	}
	for _, p := range s.Providers() {
		if len(p.Endpoints) == 0 {
			t.Errorf("provider %s has no endpoints", p.Name)
		}
		for _, e := range p.Endpoints {
			if len(e.Schemes) == 0 || len(e.patterns) != len(e.Schemes) {
				t.Errorf("provider %s endpoint %s: %d schemes, %d patterns", p.Name, e.URL, len(e.Schemes), len(e.patterns))
			}
		}
	}
}

func TestFindProvider(t *testing.T) {
	s, err := LoadIncluded()
	if err != nil {
		t.Fatalf("LoadIncluded() error: %v", err)
	}

	tests := []struct {
		url  string
		want string
	}{
		{"http://www.flickr.com/photos/bees/2341623661/", "Flickr"},
		{"https://www.youtube.com/watch?v=5mMOsl8qpfc", "YouTube"},
		{"https://youtu.be/5mMOsl8qpfc", "YouTube"},
		{"https://vimeo.com/76979871", "Vimeo"},
		{"spotify:track:4uLU6hMCjMI75M1A2tKUQC", "Spotify"},
		{"http://www.23hq.com/mprove/photo/1234", "23HQ"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			p, ok := s.FindProvider(tt.url)
			if !ok {
				t.Fatalf("FindProvider(%q) found nothing", tt.url)
			}
			if p.Name != tt.want {
				t.Errorf("FindProvider(%q) = %s, want %s", tt.url, p.Name, tt.want)
			}
		})
	}
}

func TestFindProviderUnknownURL(t *testing.T) {
	s, err := LoadIncluded()
	if err != nil {
		t.Fatalf("LoadIncluded() error: %v", err)
	}
	if p, ok := s.FindProvider("http://totally-unknown-host.test/x"); ok {
		t.Errorf("FindProvider returned %s for an unknown host", p.Name)
	}
}

func TestFindProviderFirstInListWins(t *testing.T) {
	s := mustLoad(t, twoProviders)

	for i := 0; i < 10; i++ {
		p, ok := s.FindProvider("https://media.test/video/42")
		if !ok {
			t.Fatal("expected a provider")
		}
		if p.Name != "First" {
			t.Fatalf("FindProvider = %s, want First", p.Name)
		}
	}
}

func TestMatchEndpointAndSchemeOrder(t *testing.T) {
	s := mustLoad(t, `[{
		"provider_name": "Multi",
		"provider_url": "https://multi.test/",
		"endpoints": [
			{"schemes": ["https://multi.test/a/*"], "url": "https://multi.test/oembed/a"},
			{"schemes": ["https://multi.test/b/*", "https://multi.test/*"], "url": "https://multi.test/oembed/b"}
		]
	}]`)

	m, ok := s.Match("https://multi.test/b/1")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Endpoint.URL != "https://multi.test/oembed/b" {
		t.Errorf("Endpoint = %s, want the second endpoint", m.Endpoint.URL)
	}
	if m.Scheme != "https://multi.test/b/*" {
		t.Errorf("Scheme = %s, want the first scheme of the endpoint", m.Scheme)
	}
	if m.Provider.Name != "Multi" {
		t.Errorf("Provider = %s", m.Provider.Name)
	}

	m, ok = s.Match("https://multi.test/a/1")
	if !ok || m.Endpoint.URL != "https://multi.test/oembed/a" {
		t.Errorf("Match(/a/1) = %+v, %v; want the first endpoint", m, ok)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"malformed JSON", `[{"provider_name": `, ""},
		{"not an array", `{"provider_name": "x"}`, ""},
		{"null document", `null`, ""},
		{"missing provider_name", `[{"provider_url": "u", "endpoints": []}]`, "provider_name"},
		{"missing provider_url", `[{"provider_name": "x", "endpoints": []}]`, "provider_url"},
		{"missing endpoints", `[{"provider_name": "x", "provider_url": "u"}]`, "endpoints"},
		{"null endpoints", `[{"provider_name": "x", "provider_url": "u", "endpoints": null}]`, "endpoints"},
		{"endpoint missing url", `[{"provider_name": "x", "provider_url": "u", "endpoints": [{"schemes": ["https://x/*"]}]}]`, "url"},
		{"invalid scheme", `[{"provider_name": "x", "provider_url": "u", "endpoints": [{"schemes": ["no scheme"], "url": "e"}]}]`, "schemes"},
		{"schemes wrong type", `[{"provider_name": "x", "provider_url": "u", "endpoints": [{"schemes": "https://x/*", "url": "e"}]}]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if perr.Field != tt.field {
				t.Errorf("ParseError.Field = %q, want %q", perr.Field, tt.field)
			}
		})
	}
}

func TestLoadInvalidSchemeWrapsPatternError(t *testing.T) {
	_, err := Load([]byte(`[{"provider_name": "x", "provider_url": "u", "endpoints": [{"schemes": [""], "url": "e"}]}]`))
	var perr *PatternError
	if !errors.As(err, &perr) {
		t.Fatalf("errors.As(*PatternError) failed for %v", err)
	}
}

func TestLoadDropsDiscoveryOnlyEndpoints(t *testing.T) {
	s := mustLoad(t, `[
		{"provider_name": "Discovery", "provider_url": "https://d.test/", "endpoints": [{"url": "https://d.test/oembed", "discovery": true}]},
		{"provider_name": "Empty", "provider_url": "https://e.test/", "endpoints": []},
		{"provider_name": "Mixed", "provider_url": "https://m.test/", "endpoints": [
			{"url": "https://m.test/discover"},
			{"url": "https://m.test/oembed", "schemes": ["https://m.test/*"], "formats": ["json"]}
		]}
	]`)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	p := s.Providers()[0]
	if p.Name != "Mixed" || len(p.Endpoints) != 1 || p.Endpoints[0].URL != "https://m.test/oembed" {
		t.Errorf("unexpected provider %+v", p)
	}
	if len(p.Endpoints[0].Formats) != 1 || p.Endpoints[0].Formats[0] != "json" {
		t.Errorf("Formats = %v, want [json]", p.Endpoints[0].Formats)
	}
}

func TestLoadReader(t *testing.T) {
	s, err := LoadReader(strings.NewReader(twoProviders))
	if err != nil {
		t.Fatalf("LoadReader() error: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestProvidersReturnsCopy(t *testing.T) {
	s := mustLoad(t, twoProviders)
	ps := s.Providers()
	ps[0] = Provider{Name: "changed"}
	if s.Providers()[0].Name != "First" {
		t.Error("modifying the returned slice changed the schema")
	}
}

func TestFetchQuickStart(t *testing.T) {
	s, err := LoadIncluded()
	if err != nil {
		t.Fatalf("LoadIncluded() error: %v", err)
	}
	h := &fakeHTTP{body: quickStartPhoto}

	resp, ok, err := s.Fetch(h, "http://www.flickr.com/photos/bees/2341623661/")
	if !ok {
		t.Fatal("missing provider")
	}
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if resp.Meta().Title == nil || *resp.Meta().Title != "ZB8T0193" {
		t.Errorf("Title = %v, want ZB8T0193", resp.Meta().Title)
	}

	want := "https://www.flickr.com/services/oembed/?format=json&url=http%3A%2F%2Fwww.flickr.com%2Fphotos%2Fbees%2F2341623661%2F"
	if len(h.requested) != 1 || h.requested[0] != want {
		t.Errorf("requested %v, want [%s]", h.requested, want)
	}
	if h.encodeCalls != 1 {
		t.Errorf("URLEncode called %d times, want 1", h.encodeCalls)
	}
}

func TestFetchNoProvider(t *testing.T) {
	s, err := LoadIncluded()
	if err != nil {
		t.Fatalf("LoadIncluded() error: %v", err)
	}
	h := &fakeHTTP{body: quickStartPhoto}

	resp, ok, err := s.Fetch(h, "http://totally-unknown-host.test/x")
	if ok || resp != nil || err != nil {
		t.Errorf("Fetch() = %v, %v, %v; want nil, false, nil", resp, ok, err)
	}
	if h.encodeCalls != 0 || len(h.requested) != 0 {
		t.Error("capability must not be used when no provider matches")
	}
}

func TestFetchMatchedButFailed(t *testing.T) {
	transportErr := errors.New("connection refused")
	encodeErr := errors.New("bad byte")

	tests := []struct {
		name  string
		http  *fakeHTTP
		check func(t *testing.T, err error)
	}{
		{
			name: "get fails",
			http: &fakeHTTP{getErr: transportErr},
			check: func(t *testing.T, err error) {
				var ferr *FetchError
				if !errors.As(err, &ferr) {
					t.Fatalf("error type = %T, want *FetchError", err)
				}
				if !errors.Is(err, transportErr) {
					t.Error("FetchError must unwrap to the transport error")
				}
			},
		},
		{
			name: "encode fails",
			http: &fakeHTTP{encodeErr: encodeErr},
			check: func(t *testing.T, err error) {
				var eerr *EncodeError
				if !errors.As(err, &eerr) {
					t.Fatalf("error type = %T, want *EncodeError", err)
				}
				if !errors.Is(err, encodeErr) {
					t.Error("EncodeError must unwrap to the encoder error")
				}
			},
		},
		{
			name: "body is not oEmbed",
			http: &fakeHTTP{body: `<html>nope</html>`},
			check: func(t *testing.T, err error) {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("error type = %T, want *ParseError", err)
				}
			},
		},
	}

	s := mustLoad(t, twoProviders)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, ok, err := s.Fetch(tt.http, "https://media.test/1")
			if !ok {
				t.Fatal("provider should match")
			}
			if resp != nil {
				t.Errorf("resp = %v, want nil", resp)
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestFetchWithOptions(t *testing.T) {
	s := mustLoad(t, twoProviders)
	h := &fakeHTTP{body: quickStartPhoto}

	if _, _, err := s.FetchWithOptions(h, "https://media.test/1", Options{MaxWidth: 320, MaxHeight: 200}); err != nil {
		t.Fatalf("FetchWithOptions() error: %v", err)
	}
	want := "https://first.test/oembed?format=json&url=https%3A%2F%2Fmedia.test%2F1&maxwidth=320&maxheight=200"
	if h.requested[0] != want {
		t.Errorf("requested %s, want %s", h.requested[0], want)
	}
}

func TestFetchFromURL(t *testing.T) {
	h := &fakeHTTP{body: twoProviders}
	s, err := FetchFromURL(h, "https://lists.test/providers.json")
	if err != nil {
		t.Fatalf("FetchFromURL() error: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if h.requested[0] != "https://lists.test/providers.json" {
		t.Errorf("requested %v", h.requested)
	}
}

func TestFetchLatestUsesPublicList(t *testing.T) {
	h := &fakeHTTP{getErr: errors.New("offline")}
	_, err := FetchLatest(h)

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if ferr.URL != LatestProvidersURL {
		t.Errorf("FetchError.URL = %s, want %s", ferr.URL, LatestProvidersURL)
	}
}

func TestFetchFromURLBadList(t *testing.T) {
	h := &fakeHTTP{body: `[{"provider_name": "x", "provider_url": "u"}]`}
	_, err := FetchFromURL(h, "https://lists.test/providers.json")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
}
