// Package feed owns transport selection for one live session: push first,
// timed pulls once the push channel is unavailable or fails.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/normalize"
)

// Config describes one session. Poller and Deliver are required; an empty
// StreamURL or nil Opener is treated as an unsupported push transport.
type Config struct {
	Key       scoreboard.Key
	SessionID string
	StreamURL string
	Token     Token
	Opener    StreamOpener
	Poller    Poller
	Deliver   DeliverFunc
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// Controller is the per-session state machine: Idle -> Streaming -> Polling,
// with teardown possible from any state. It never returns to Streaming.
type Controller struct {
	cfg    Config
	logger *slog.Logger
	state  atomic.Int32

	mu      sync.Mutex
	handle  StreamHandle
	cancel  context.CancelFunc
	started bool
	stopped bool
	done    chan struct{}
}

// NewController builds an idle controller.
func NewController(cfg Config) *Controller {
	logger := logging.With(cfg.Logger,
		slog.String(logging.FieldSport, string(cfg.Key.Sport)),
		slog.String(logging.FieldDate, cfg.Key.Date),
		slog.String(logging.FieldSession, cfg.SessionID),
	)
	return &Controller{
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the session. Calling it twice, or after Stop, does nothing.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(runCtx)
}

// Stop tears the session down: the token is revoked first so nothing still in
// flight can be delivered, then the active driver is released and the run loop
// awaited. Safe to call repeatedly and from any state.
func (c *Controller) Stop() {
	c.cfg.Token.Revoke()

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		<-c.waitCh()
		return
	}
	c.stopped = true
	started := c.started
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.closeHandle()
	if started {
		<-c.done
	}
	c.setState(StateStopped)
	logging.Info(c.logger, "feed session stopped")
}

// State reports the current transport mode.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Done is closed once the run loop has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.waitCh()
}

func (c *Controller) waitCh() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	defer c.closeHandle()

	err := c.stream(ctx)
	if ctx.Err() != nil {
		return
	}

	reason := FallbackReason(err)
	c.cfg.Metrics.RecordFallback(reason)
	logging.Warn(c.logger, "stream unavailable, falling back to polling",
		slog.String(logging.FieldReason, reason),
		"error", err,
	)

	c.setState(StatePolling)
	if c.cfg.Poller == nil {
		logging.Warn(c.logger, "no poller configured, session idle")
		return
	}
	c.cfg.Poller.Run(ctx, func(p scoreboard.Payload) {
		c.deliver(TransportPull, p)
	})
}

// stream runs the push side until it fails or ctx ends. It only enters
// Streaming once the opener has returned a handle.
func (c *Controller) stream(ctx context.Context) error {
	if c.cfg.Opener == nil || c.cfg.StreamURL == "" {
		return ErrTransportUnsupported
	}
	handle, err := c.cfg.Opener.Open(ctx, c.cfg.StreamURL)
	if err != nil {
		return err
	}
	if !c.attach(handle) {
		_ = handle.Close()
		return ctx.Err()
	}

	c.setState(StateStreaming)
	logging.Info(c.logger, "stream connected", slog.String(logging.FieldURL, c.cfg.StreamURL))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-handle.Messages():
			if !ok {
				c.closeHandle()
				return ErrStreamClosed
			}
			raw := json.RawMessage(msg)
			if c.logger != nil && c.logger.Enabled(ctx, slog.LevelDebug) {
				env := normalize.Peek(raw)
				logging.Debug(c.logger, "stream message",
					slog.String("type", env.Type),
					slog.Int("bytes", len(msg)),
				)
			}
			c.deliver(TransportStream, normalize.Normalize(raw))
		case err := <-handle.Errors():
			c.closeHandle()
			if err == nil {
				err = ErrStreamClosed
			}
			return &TransportError{URL: c.cfg.StreamURL, Err: err}
		}
	}
}

// deliver drops the payload when the session token is stale; the owner's
// DeliverFunc re-checks it under its own lock.
func (c *Controller) deliver(transport Transport, p scoreboard.Payload) {
	if !c.cfg.Token.Valid() || c.cfg.Deliver == nil || !c.cfg.Deliver(c.cfg.Token, transport, p) {
		c.cfg.Metrics.RecordDiscarded(string(transport))
		logging.Debug(c.logger, "discarded delivery for stale session", slog.String(logging.FieldTransport, string(transport)))
		return
	}
	c.cfg.Metrics.RecordDelivery(string(transport))
}

func (c *Controller) attach(h StreamHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.handle = h
	return true
}

func (c *Controller) closeHandle() {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.mu.Unlock()
	if h != nil {
		if err := h.Close(); err != nil {
			logging.Warn(c.logger, "stream close failed", "error", err)
		}
	}
}

func (c *Controller) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		logging.Debug(c.logger, "feed state changed",
			slog.String("from", prev.String()),
			slog.String(logging.FieldState, s.String()),
		)
	}
}
