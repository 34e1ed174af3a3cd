package oembed

import (
	"strconv"
	"strings"
)

const (
	formatPlaceholder = "{format}"
	urlPlaceholder    = "{url}"
)

// Options are the optional consumer parameters of an oEmbed request.
// Zero values are not sent.
type Options struct {
	MaxWidth  int
	MaxHeight int
}

// BuildRequestURL builds the request URL asking endpoint e for the embed of
// target. enc is called exactly once, on target.
//
// {format} in the endpoint template becomes "json". The encoded target
// replaces {url} when the template has one and is otherwise appended as the
// url query parameter.
func BuildRequestURL(e *Endpoint, target string, enc Encoder, opts Options) (string, error) {
	encoded, err := enc.URLEncode(target)
	if err != nil {
		return "", &EncodeError{Err: err}
	}

	tmpl := e.URL
	formatInPath := strings.Contains(tmpl, formatPlaceholder)
	tmpl = strings.ReplaceAll(tmpl, formatPlaceholder, "json")

	var params []string
	if strings.Contains(tmpl, urlPlaceholder) {
		tmpl = strings.ReplaceAll(tmpl, urlPlaceholder, encoded)
	} else {
		if !formatInPath {
			params = append(params, "format=json")
		}
		params = append(params, "url="+encoded)
	}
	if opts.MaxWidth > 0 {
		params = append(params, "maxwidth="+strconv.Itoa(opts.MaxWidth))
	}
	if opts.MaxHeight > 0 {
		params = append(params, "maxheight="+strconv.Itoa(opts.MaxHeight))
	}

	if len(params) == 0 {
		return tmpl, nil
	}
	return appendQuery(tmpl, strings.Join(params, "&")), nil
}

func appendQuery(u, query string) string {
	switch {
	case !strings.Contains(u, "?"):
		return u + "?" + query
	case strings.HasSuffix(u, "?"), strings.HasSuffix(u, "&"):
		return u + query
	default:
		return u + "&" + query
	}
}
