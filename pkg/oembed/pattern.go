package oembed

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// wildcard inside scheme and authority; never crosses into the path
	hostWildcard = `[^/?#@]*`
	// wildcard inside path, query and fragment
	pathWildcard = `.*`
)

// Pattern is a compiled provider URL scheme such as
// "http://www.flickr.com/photos/*" or "https://*.youtube.com/watch*".
//
// A '*' matches any run of characters. Matches are anchored at both ends, so
// a pattern never matches a URL that merely contains it. Scheme and host are
// compared case-insensitively, the rest of the URL is case-sensitive.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// CompilePattern compiles a provider URL scheme.
func CompilePattern(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, &PatternError{Pattern: pattern, Msg: "empty pattern"}
	}
	for _, r := range pattern {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return nil, &PatternError{Pattern: pattern, Msg: "contains whitespace or control characters"}
		}
	}

	colon := strings.IndexByte(pattern, ':')
	star := strings.IndexByte(pattern, '*')
	if colon <= 0 || (star >= 0 && star < colon) {
		return nil, &PatternError{Pattern: pattern, Msg: "missing URL scheme"}
	}

	head, tail := splitAuthority(pattern, colon)
	// A wildcard closing a pattern with no path also covers the path.
	if tail == "" && strings.HasSuffix(head, "*") {
		head, tail = head[:len(head)-1], "*"
	}

	var b strings.Builder
	b.WriteString("^(?i:")
	b.WriteString(globToRegexp(head, hostWildcard))
	b.WriteString(")")
	b.WriteString(globToRegexp(tail, pathWildcard))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Msg: err.Error()}
	}
	return &Pattern{raw: pattern, re: re}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(pattern string) *Pattern {
	p, err := CompilePattern(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether url matches the whole pattern.
func (p *Pattern) Match(url string) bool {
	return p.re.MatchString(url)
}

// String returns the pattern as it was written.
func (p *Pattern) String() string { return p.raw }

// splitAuthority splits pattern into the case-insensitive scheme+authority
// prefix and the case-sensitive remainder.
func splitAuthority(pattern string, colon int) (string, string) {
	if !strings.HasPrefix(pattern[colon:], "://") {
		return pattern[:colon+1], pattern[colon+1:]
	}
	start := colon + len("://")
	end := strings.IndexAny(pattern[start:], "/?#")
	if end < 0 {
		return pattern, ""
	}
	return pattern[:start+end], pattern[start+end:]
}

func globToRegexp(glob, wildcard string) string {
	parts := strings.Split(glob, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, wildcard)
}
