// Package tagger writes oEmbed metadata into audio files.
package tagger

import (
	"context"
	"fmt"
	"net/http"

	"go.senan.xyz/taglib"

	"oembed/internal/transport"
	"oembed/pkg/oembed"
)

// Property names without a taglib constant.
const (
	tagComment   = "COMMENT"
	tagPublisher = "PUBLISHER"
)

// Info is the subset of an oEmbed response that maps onto audio tags.
type Info struct {
	Title     string
	Artist    string
	Publisher string
	Source    string
}

// InfoFromResponse extracts tag values from resp. source is the URL the
// response was fetched for.
func InfoFromResponse(resp oembed.Response, source string) Info {
	m := resp.Meta()
	return Info{
		Title:     deref(m.Title),
		Artist:    deref(m.AuthorName),
		Publisher: deref(m.ProviderName),
		Source:    source,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteTags writes info to an audio file. Empty fields are left untouched.
func WriteTags(path string, info Info) error {
	tags := make(map[string][]string)

	if info.Title != "" {
		tags[taglib.Title] = []string{info.Title}
	}
	if info.Artist != "" {
		tags[taglib.Artist] = []string{info.Artist}
	}
	if info.Publisher != "" {
		tags[tagPublisher] = []string{info.Publisher}
	}
	if info.Source != "" {
		tags[tagComment] = []string{info.Source}
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

// WriteArtwork embeds artwork image data into an audio file.
func WriteArtwork(path string, imageData []byte) error {
	if len(imageData) == 0 {
		return nil
	}
	if err := taglib.WriteImage(path, imageData); err != nil {
		return fmt.Errorf("failed to write artwork to %s: %w", path, err)
	}
	return nil
}

// ArtworkURL returns the image to embed for resp: the thumbnail, or for
// photos without one the photo itself. It returns "" when there is none.
func ArtworkURL(resp oembed.Response) string {
	if u := deref(resp.Meta().ThumbnailURL); u != "" {
		return u
	}
	if p, ok := resp.(*oembed.Photo); ok {
		return p.URL
	}
	return ""
}

// FetchArtwork downloads the artwork for resp. It returns nil data when the
// response has no image.
func FetchArtwork(ctx context.Context, client *transport.Client, resp oembed.Response) ([]byte, error) {
	u := ArtworkURL(resp)
	if u == "" {
		return nil, nil
	}
	data, err := client.GetBytes(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	if ct := http.DetectContentType(data); ct != "image/jpeg" && ct != "image/png" {
		return nil, fmt.Errorf("artwork is %s, not a JPEG or PNG image", ct)
	}
	return data, nil
}
