package testutil

import (
	"context"
	"net/http"
	"sync"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
)

// FakeTelemetry stands in for metrics.Setup. It records the config it was
// handed and returns Err when set.
type FakeTelemetry struct {
	Err     error
	Handler http.Handler

	mu       sync.Mutex
	Seen     metrics.TelemetryConfig
	Calls    int
	Shutdown int
}

// Setup has the same signature as metrics.Setup.
func (f *FakeTelemetry) Setup(ctx context.Context, cfg metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Seen = cfg
	if f.Err != nil {
		return nil, nil, nil, f.Err
	}
	handler := f.Handler
	if handler == nil {
		handler = http.NewServeMux()
	}
	stop := func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.Shutdown++
		return nil
	}
	return metrics.NewRecorder(), handler, stop, nil
}

// ShutdownCalls reports how often the returned shutdown hook ran.
func (f *FakeTelemetry) ShutdownCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Shutdown
}
