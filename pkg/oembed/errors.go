package oembed

import "fmt"

// ParseError reports a provider list or response body that could not be
// turned into the expected types.
type ParseError struct {
	Field string // offending JSON field, empty when the document itself is bad
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	msg := "oembed: parse"
	if e.Field != "" {
		msg += fmt.Sprintf(" %q", e.Field)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// EncodeError wraps a failure returned by the caller's Encoder.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return "oembed: url encode: " + e.Err.Error() }

func (e *EncodeError) Unwrap() error { return e.Err }

// FetchError wraps a failure returned by the caller's HTTP.Get.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("oembed: get %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PatternError reports a URL scheme pattern that cannot be compiled.
type PatternError struct {
	Pattern string
	Msg     string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("oembed: invalid pattern %q: %s", e.Pattern, e.Msg)
}

func parseErrorf(field, format string, args ...any) *ParseError {
	return &ParseError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
