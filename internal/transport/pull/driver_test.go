package pull

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/upstream"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, contentType, body string) *http.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     h,
	}
}

var testRoutes = []upstream.Route{
	{Name: "primary", URL: "http://primary.test/api/scoreboard?date=2025-11-23&sport=cfb"},
	{Name: "secondary", URL: "http://secondary.test/api/espn/scoreboard?dates=20251123"},
}

func newTestDriver(rt roundTripperFunc, rec *metrics.Recorder) *Driver {
	return New(Config{
		Routes:     testRoutes,
		Interval:   5 * time.Millisecond,
		HTTPClient: &http.Client{Transport: rt},
		Metrics:    rec,
	})
}

func TestFetchOncePrimarySuccess(t *testing.T) {
	var hosts []string
	d := newTestDriver(func(req *http.Request) (*http.Response, error) {
		hosts = append(hosts, req.URL.Host)
		if req.Header.Get("Accept") != "application/json" {
			t.Fatalf("expected json accept header, got %s", req.Header.Get("Accept"))
		}
		return respond(http.StatusOK, "application/json; charset=utf-8", `{"sport":"cfb","date":"2025-11-23","payload":{"events":[{"id":"1"}]}}`), nil
	}, nil)

	payload, err := d.FetchOnce(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(payload) != `{"events":[{"id":"1"}]}` {
		t.Fatalf("unexpected payload %s", payload)
	}
	if len(hosts) != 1 || hosts[0] != "primary.test" {
		t.Fatalf("expected only primary to be called, got %v", hosts)
	}
	if st := d.Status(); !st.IsReady() || st.LastRoute != "primary" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestFetchOnceFallsBackToSecondaryOnStatus(t *testing.T) {
	rec := metrics.NewRecorder()
	d := newTestDriver(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "primary.test" {
			return respond(http.StatusInternalServerError, "text/plain", "boom"), nil
		}
		// mislabelled JSON from the proxy
		return respond(http.StatusOK, "text/plain", `{"sport":"cfb","date":"2025-11-23","payload":{"events":[{"id":"1"},{"id":"2"}]}}`), nil
	}, rec)

	payload, err := d.FetchOnce(context.Background())
	if err != nil {
		t.Fatalf("expected secondary to succeed, got %v", err)
	}
	if string(payload) != `{"events":[{"id":"1"},{"id":"2"}]}` {
		t.Fatalf("unexpected payload %s", payload)
	}
	if got := rec.Route("primary"); got.Errors != 1 || got.LastStatus != 500 {
		t.Fatalf("expected primary failure recorded, got %+v", got)
	}
	if got := rec.Route("secondary"); got.Calls != 1 || got.Errors != 0 {
		t.Fatalf("expected secondary success recorded, got %+v", got)
	}
}

func TestFetchOnceFallsBackOnNetworkAndParseErrors(t *testing.T) {
	cases := map[string]func() (*http.Response, error){
		"network": func() (*http.Response, error) { return nil, errors.New("cors blocked") },
		"parse":   func() (*http.Response, error) { return respond(http.StatusOK, "application/json", `{bad`), nil },
		"trailing bytes": func() (*http.Response, error) {
			return respond(http.StatusOK, "application/json", `{"payload":{"events":[{"id":"stale"}]}}<html>proxy error</html>`), nil
		},
	}
	for name, primary := range cases {
		t.Run(name, func(t *testing.T) {
			d := newTestDriver(func(req *http.Request) (*http.Response, error) {
				if req.URL.Host == "primary.test" {
					return primary()
				}
				return respond(http.StatusOK, "application/json", `{"events":[]}`), nil
			}, nil)

			payload, err := d.FetchOnce(context.Background())
			if err != nil {
				t.Fatalf("expected secondary to succeed, got %v", err)
			}
			if string(payload) != `{"events":[]}` {
				t.Fatalf("unexpected payload %s", payload)
			}
		})
	}
}

func TestFetchOnceBothRoutesFail(t *testing.T) {
	rec := metrics.NewRecorder()
	d := newTestDriver(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "primary.test" {
			return respond(http.StatusBadGateway, "", ""), nil
		}
		return respond(http.StatusOK, "text/html", "<html>proxy error</html>"), nil
	}, rec)

	_, err := d.FetchOnce(context.Background())
	fe, ok := feed.AsFetchError(err)
	if !ok {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(fe.Attempts) != 2 || fe.Attempts[0].StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected attempts %+v", fe.Attempts)
	}
	if _, ok := feed.AsParseError(err); !ok {
		t.Fatalf("expected secondary parse error to be reachable, got %v", err)
	}
	st := d.Status()
	if st.ConsecutiveFailures != 1 || st.LastError == "" || st.IsReady() {
		t.Fatalf("unexpected status %+v", st)
	}
	if rec.Feed().PollFailures != 1 {
		t.Fatalf("expected poll failure recorded, got %+v", rec.Feed())
	}
}

func TestRunKeepsPollingAfterFailuresWithOneFetchInFlight(t *testing.T) {
	var calls, inflight, maxInflight atomic.Int32
	d := newTestDriver(func(req *http.Request) (*http.Response, error) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		if n > maxInflight.Load() {
			maxInflight.Store(n)
		}
		time.Sleep(2 * time.Millisecond)
		c := calls.Add(1)
		// first cycle fails on both routes
		if c <= 2 {
			return nil, errors.New("offline")
		}
		return respond(http.StatusOK, "application/json", `{"events":[{"id":"x"}]}`), nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var delivered []string
	got := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx, func(p scoreboard.Payload) {
			mu.Lock()
			delivered = append(delivered, string(p))
			if len(delivered) == 2 {
				close(got)
			}
			mu.Unlock()
		})
	}()

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for deliveries")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after cancel")
	}

	if maxInflight.Load() != 1 {
		t.Fatalf("expected at most one request in flight, saw %d", maxInflight.Load())
	}
	mu.Lock()
	defer mu.Unlock()
	if delivered[0] != `{"events":[{"id":"x"}]}` {
		t.Fatalf("unexpected delivery %s", delivered[0])
	}
}

func TestRunOnceStopsAfterSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	d := New(Config{
		Routes: testRoutes,
		Once:   true,
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return respond(http.StatusOK, "application/json", `{"payload":{"events":[]}}`), nil
		})},
	})

	deliveries := 0
	d.Run(context.Background(), func(p scoreboard.Payload) { deliveries++ })

	if calls.Load() != 1 || deliveries != 1 {
		t.Fatalf("expected one fetch and one delivery, got %d/%d", calls.Load(), deliveries)
	}
}

func TestRunLogsIntervalUnderItsOwnKey(t *testing.T) {
	var buf bytes.Buffer
	d := New(Config{
		Routes:   testRoutes,
		Interval: 1500 * time.Millisecond,
		Once:     true,
		Logger:   slog.New(slog.NewTextHandler(&buf, nil)),
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return respond(http.StatusOK, "application/json", `{"events":[]}`), nil
		})},
	})
	d.Run(context.Background(), nil)

	var started string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `msg="poller started"`) {
			started = line
		}
	}
	if !strings.Contains(started, "interval_ms=1500") || strings.Contains(started, "duration_ms") {
		t.Fatalf("expected interval_ms on poller start, got %q", started)
	}
}

func TestRunDoesNotDeliverAfterCancel(t *testing.T) {
	release := make(chan struct{})
	d := newTestDriver(func(req *http.Request) (*http.Response, error) {
		<-release
		return nil, req.Context().Err()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	delivered := atomic.Bool{}
	go func() {
		defer close(done)
		d.Run(ctx, func(scoreboard.Payload) { delivered.Store(true) })
	}()

	cancel()
	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after cancel")
	}
	if delivered.Load() {
		t.Fatal("expected no delivery after cancel")
	}
}

func TestNewDefaults(t *testing.T) {
	d := New(Config{})
	if d.interval != DefaultInterval {
		t.Fatalf("expected default interval %s, got %s", DefaultInterval, d.interval)
	}
	client, ok := d.client.(*http.Client)
	if !ok || client.Timeout == 0 {
		t.Fatalf("expected default http client with timeout")
	}
}

func TestIsJSONContentType(t *testing.T) {
	cases := map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"application/vnd.api+json":        true,
		"text/plain":                      false,
		"text/html; charset=utf-8":        false,
		"":                                false,
		"not a media type;;":              false,
	}
	for header, want := range cases {
		if got := isJSONContentType(header); got != want {
			t.Fatalf("content type %q expected %v, got %v", header, want, got)
		}
	}
}
