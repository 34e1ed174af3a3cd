package oembed

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Kind is the value of a response's "type" field.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
	KindLink  Kind = "link"
	KindRich  Kind = "rich"
)

// Response is an oEmbed response. It is implemented by *Photo, *Video, *Link
// and *Rich only; switch on the concrete type to reach variant fields.
type Response interface {
	Kind() Kind
	Meta() *Common
	isResponse()
}

// Common holds the fields shared by every response type. A nil pointer means
// the provider did not send the field.
type Common struct {
	Version         string
	Title           *string
	AuthorName      *string
	AuthorURL       *string
	ProviderName    *string
	ProviderURL     *string
	CacheAge        *int64 // seconds
	ThumbnailURL    *string
	ThumbnailWidth  *int
	ThumbnailHeight *int
}

// Meta returns the shared fields.
func (c *Common) Meta() *Common { return c }

// Photo is a static photo.
type Photo struct {
	Common
	URL    string
	Width  *int
	Height *int
}

// Video is a playable video embedded as HTML.
type Video struct {
	Common
	HTML   string
	Width  *int
	Height *int
}

// Link carries only the shared fields.
type Link struct {
	Common
}

// Rich is generic embedded HTML.
type Rich struct {
	Common
	HTML   string
	Width  *int
	Height *int
}

func (*Photo) Kind() Kind { return KindPhoto }
func (*Video) Kind() Kind { return KindVideo }
func (*Link) Kind() Kind  { return KindLink }
func (*Rich) Kind() Kind  { return KindRich }

func (*Photo) isResponse() {}
func (*Video) isResponse() {}
func (*Link) isResponse()  {}
func (*Rich) isResponse()  {}

// Parse decodes a JSON oEmbed response body.
func Parse(body []byte) (Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &ParseError{Msg: "response body", Err: err}
	}
	if fields == nil {
		return nil, parseErrorf("", "response body is not a JSON object")
	}

	d := &fieldDecoder{fields: fields}
	kind := Kind(d.requiredString("type"))
	if d.err != nil {
		return nil, d.err
	}

	var resp Response
	switch kind {
	case KindPhoto:
		resp = &Photo{
			Common: d.common(),
			URL:    d.requiredString("url"),
			Width:  d.optionalInt("width"),
			Height: d.optionalInt("height"),
		}
	case KindVideo:
		resp = &Video{
			Common: d.common(),
			HTML:   d.requiredString("html"),
			Width:  d.optionalInt("width"),
			Height: d.optionalInt("height"),
		}
	case KindLink:
		resp = &Link{Common: d.common()}
	case KindRich:
		resp = &Rich{
			Common: d.common(),
			HTML:   d.requiredString("html"),
			Width:  d.optionalInt("width"),
			Height: d.optionalInt("height"),
		}
	default:
		return nil, parseErrorf("type", "unknown response type %q", kind)
	}

	if d.err != nil {
		return nil, d.err
	}
	return resp, nil
}

// fieldDecoder reads typed fields out of a JSON object and keeps the first
// error it meets.
type fieldDecoder struct {
	fields map[string]json.RawMessage
	err    error
}

func (d *fieldDecoder) common() Common {
	return Common{
		Version:         d.requiredString("version"),
		Title:           d.optionalString("title"),
		AuthorName:      d.optionalString("author_name"),
		AuthorURL:       d.optionalString("author_url"),
		ProviderName:    d.optionalString("provider_name"),
		ProviderURL:     d.optionalString("provider_url"),
		CacheAge:        d.cacheAge("cache_age"),
		ThumbnailURL:    d.optionalString("thumbnail_url"),
		ThumbnailWidth:  d.optionalInt("thumbnail_width"),
		ThumbnailHeight: d.optionalInt("thumbnail_height"),
	}
}

// value returns the raw field, treating JSON null as absent.
func (d *fieldDecoder) value(key string) (json.RawMessage, bool) {
	if d.err != nil {
		return nil, false
	}
	v, ok := d.fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func (d *fieldDecoder) fail(key, msg string) {
	if d.err == nil {
		d.err = parseErrorf(key, "%s", msg)
	}
}

func (d *fieldDecoder) requiredString(key string) string {
	if d.err != nil {
		return ""
	}
	s := d.optionalString(key)
	if s == nil {
		d.fail(key, "required field missing")
		return ""
	}
	return *s
}

func (d *fieldDecoder) optionalString(key string) *string {
	v, ok := d.value(key)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		d.fail(key, "expected a string")
		return nil
	}
	return &s
}

func (d *fieldDecoder) optionalInt(key string) *int {
	v, ok := d.value(key)
	if !ok {
		return nil
	}
	n, ok := parseInteger(v)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		d.fail(key, "expected an integer")
		return nil
	}
	if n < 0 {
		d.fail(key, "must not be negative")
		return nil
	}
	i := int(n)
	return &i
}

// cacheAge accepts an integer or a string of digits, both of which are
// common in the wild.
func (d *fieldDecoder) cacheAge(key string) *int64 {
	v, ok := d.value(key)
	if !ok {
		return nil
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
				return &n
			}
		}
		d.fail(key, "expected a non-negative integer number of seconds")
		return nil
	}
	n, ok := parseInteger(v)
	if !ok || n < 0 {
		d.fail(key, "expected a non-negative integer number of seconds")
		return nil
	}
	return &n
}

// parseInteger accepts JSON numbers with no fractional part, including
// forms such as 640.0.
func parseInteger(v json.RawMessage) (int64, bool) {
	if len(v) == 0 || v[0] == '"' {
		return 0, false
	}
	var num json.Number
	if err := json.Unmarshal(v, &num); err != nil {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false
	}
	return int64(f), true
}
