package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// RequestOption adjusts a test request before it is served.
type RequestOption func(*http.Request) *http.Request

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) *http.Request {
		r.Header.Set(key, value)
		return r
	}
}

// WithContext replaces the request context, e.g. with an already cancelled one.
func WithContext(ctx context.Context) RequestOption {
	return func(r *http.Request) *http.Request {
		return r.WithContext(ctx)
	}
}

// Serve executes a request against h and returns the recorder.
func Serve(h http.Handler, method, path string, body io.Reader, opts ...RequestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for _, opt := range opts {
		req = opt(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// AssertStatus fails with the response body attached, which usually carries
// the handler's error message.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// DecodeJSON decodes the recorder body into dest.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dest); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}
