// Package stream provides push-channel drivers for live feed sessions.
// Drivers never reconnect: a failure is reported once and the session decides
// what to do next.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
)

// handle is the shared feed.StreamHandle implementation. The reader goroutine
// owns msgs and errs; msgs is never closed, errs receives at most one value.
type handle struct {
	source  string
	msgs    chan []byte
	errs    chan error
	cancel  context.CancelFunc
	closer  func() error
	once    sync.Once
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newHandle(source string, cancel context.CancelFunc, logger *slog.Logger, recorder *metrics.Recorder) *handle {
	return &handle{
		source:  source,
		msgs:    make(chan []byte),
		errs:    make(chan error, 1),
		cancel:  cancel,
		logger:  logger,
		metrics: recorder,
	}
}

func (h *handle) Messages() <-chan []byte { return h.msgs }

func (h *handle) Errors() <-chan error { return h.errs }

// Close releases the connection. Only the first call has an effect.
func (h *handle) Close() error {
	var err error
	h.once.Do(func() {
		if h.cancel != nil {
			h.cancel()
		}
		if h.closer != nil {
			err = h.closer()
		}
	})
	return err
}

// push forwards a well-formed message; anything else is dropped and logged.
func (h *handle) push(ctx context.Context, data []byte) {
	if len(data) == 0 {
		return
	}
	if !json.Valid(data) {
		h.metrics.RecordStreamMessage(metrics.OutcomeDropped)
		logging.Warn(h.logger, "dropped malformed stream message",
			slog.String(logging.FieldTransport, h.source),
			slog.Int("bytes", len(data)),
		)
		return
	}
	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case h.msgs <- msg:
		h.metrics.RecordStreamMessage(metrics.OutcomeDelivered)
	case <-ctx.Done():
	}
}

func (h *handle) fail(err error) {
	select {
	case h.errs <- err:
	default:
	}
}
