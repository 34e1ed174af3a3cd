package oembed

import "encoding/json"

type wireCommon struct {
	Type            Kind    `json:"type"`
	Version         string  `json:"version"`
	Title           *string `json:"title,omitempty"`
	AuthorName      *string `json:"author_name,omitempty"`
	AuthorURL       *string `json:"author_url,omitempty"`
	ProviderName    *string `json:"provider_name,omitempty"`
	ProviderURL     *string `json:"provider_url,omitempty"`
	CacheAge        *int64  `json:"cache_age,omitempty"`
	ThumbnailURL    *string `json:"thumbnail_url,omitempty"`
	ThumbnailWidth  *int    `json:"thumbnail_width,omitempty"`
	ThumbnailHeight *int    `json:"thumbnail_height,omitempty"`
}

func (c *Common) wire(k Kind) wireCommon {
	return wireCommon{
		Type:            k,
		Version:         c.Version,
		Title:           c.Title,
		AuthorName:      c.AuthorName,
		AuthorURL:       c.AuthorURL,
		ProviderName:    c.ProviderName,
		ProviderURL:     c.ProviderURL,
		CacheAge:        c.CacheAge,
		ThumbnailURL:    c.ThumbnailURL,
		ThumbnailWidth:  c.ThumbnailWidth,
		ThumbnailHeight: c.ThumbnailHeight,
	}
}

// MarshalJSON encodes the response in the oEmbed wire format.
func (p *Photo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		wireCommon
		URL    string `json:"url"`
		Width  *int   `json:"width,omitempty"`
		Height *int   `json:"height,omitempty"`
	}{p.wire(KindPhoto), p.URL, p.Width, p.Height})
}

// MarshalJSON encodes the response in the oEmbed wire format.
func (v *Video) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		wireCommon
		HTML   string `json:"html"`
		Width  *int   `json:"width,omitempty"`
		Height *int   `json:"height,omitempty"`
	}{v.wire(KindVideo), v.HTML, v.Width, v.Height})
}

// MarshalJSON encodes the response in the oEmbed wire format.
func (l *Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.wire(KindLink))
}

// MarshalJSON encodes the response in the oEmbed wire format.
func (r *Rich) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		wireCommon
		HTML   string `json:"html"`
		Width  *int   `json:"width,omitempty"`
		Height *int   `json:"height,omitempty"`
	}{r.wire(KindRich), r.HTML, r.Width, r.Height})
}
