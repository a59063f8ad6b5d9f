package feed

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransportUnsupported reports that the push transport cannot be used at all.
	ErrTransportUnsupported = errors.New("stream transport unsupported")
	// ErrStreamClosed reports that the server ended the push stream.
	ErrStreamClosed = errors.New("stream closed by server")
)

// TransportError is a mid-session failure of the push transport.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("stream transport error: %v", e.Err)
	}
	return fmt.Sprintf("stream transport error (%s): %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a message or response body that is not well-formed JSON.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "malformed payload"
	if e.Source != "" {
		msg += " from " + e.Source
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// RouteError is the failure of a single pull route.
type RouteError struct {
	Route      string
	StatusCode int
	Err        error
}

func (e *RouteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Route, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Route, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

// FetchError is a poll attempt where every route failed.
type FetchError struct {
	Attempts []*RouteError
}

func (e *FetchError) Error() string {
	if len(e.Attempts) == 0 {
		return "fetch failed"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return "fetch failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes each route failure to errors.Is/As.
func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}
	return errs
}

// AsFetchError attempts to unwrap an error into a FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// AsParseError attempts to unwrap an error into a ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// FallbackReason classifies why a session left (or never entered) streaming.
func FallbackReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrTransportUnsupported):
		return "unsupported"
	case errors.Is(err, ErrStreamClosed):
		return "closed"
	default:
		var te *TransportError
		if errors.As(err, &te) {
			return "transport_error"
		}
		return "open_failed"
	}
}
