package oembed

import (
	"errors"
	"testing"
)

func TestBuildRequestURL(t *testing.T) {
	const target = "https://vimeo.com/1"
	const enc = "https%3A%2F%2Fvimeo.com%2F1"

	tests := []struct {
		name     string
		template string
		opts     Options
		want     string
	}{
		{
			name:     "plain endpoint",
			template: "https://www.flickr.com/services/oembed/",
			want:     "https://www.flickr.com/services/oembed/?format=json&url=" + enc,
		},
		{
			name:     "format in path",
			template: "https://vimeo.com/api/oembed.{format}",
			want:     "https://vimeo.com/api/oembed.json?url=" + enc,
		},
		{
			name:     "existing query",
			template: "https://api.test/oembed?key=abc",
			want:     "https://api.test/oembed?key=abc&format=json&url=" + enc,
		},
		{
			name:     "dangling question mark",
			template: "https://api.test/oembed?",
			want:     "https://api.test/oembed?format=json&url=" + enc,
		},
		{
			name:     "url placeholder",
			template: "https://api.test/embed/{format}?u={url}",
			want:     "https://api.test/embed/json?u=" + enc,
		},
		{
			name:     "max dimensions",
			template: "https://api.test/oembed",
			opts:     Options{MaxWidth: 640, MaxHeight: 480},
			want:     "https://api.test/oembed?format=json&url=" + enc + "&maxwidth=640&maxheight=480",
		},
		{
			name:     "max dimensions with url placeholder",
			template: "https://api.test/oembed?u={url}",
			opts:     Options{MaxWidth: 640},
			want:     "https://api.test/oembed?u=" + enc + "&maxwidth=640",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHTTP{}
			got, err := BuildRequestURL(&Endpoint{URL: tt.template}, target, h, tt.opts)
			if err != nil {
				t.Fatalf("BuildRequestURL() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildRequestURL() = %s, want %s", got, tt.want)
			}
			if h.encodeCalls != 1 {
				t.Errorf("URLEncode called %d times, want 1", h.encodeCalls)
			}
		})
	}
}

func TestBuildRequestURLUsesEncoderVerbatim(t *testing.T) {
	h := identityEncoder{}
	got, err := BuildRequestURL(&Endpoint{URL: "https://api.test/oembed"}, "raw value", h, Options{})
	if err != nil {
		t.Fatalf("BuildRequestURL() error: %v", err)
	}
	if got != "https://api.test/oembed?format=json&url=raw value" {
		t.Errorf("BuildRequestURL() = %q", got)
	}
}

func TestBuildRequestURLEncodeError(t *testing.T) {
	cause := errors.New("cannot encode")
	_, err := BuildRequestURL(&Endpoint{URL: "https://api.test/oembed"}, "x", &fakeHTTP{encodeErr: cause}, Options{})

	var eerr *EncodeError
	if !errors.As(err, &eerr) {
		t.Fatalf("error type = %T, want *EncodeError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("EncodeError must unwrap to the encoder error")
	}
}

type identityEncoder struct{}

func (identityEncoder) URLEncode(s string) (string, error) { return s, nil }
