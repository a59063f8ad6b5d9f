package feed

import (
	"context"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
)

// StreamOpener connects a push channel. A synchronous failure (including
// ErrTransportUnsupported) means the session goes straight to polling.
type StreamOpener interface {
	Open(ctx context.Context, url string) (StreamHandle, error)
}

// StreamHandle is a live push connection. Messages carries well-formed JSON only;
// Errors yields at most one value, after which no further messages arrive.
// Close must be idempotent and safe on a handle that never fully connected.
type StreamHandle interface {
	Messages() <-chan []byte
	Errors() <-chan error
	Close() error
}

// Poller runs the pull side of a session until ctx is done or, for one-shot
// pollers, after its single attempt.
type Poller interface {
	Run(ctx context.Context, deliver func(scoreboard.Payload))
}

// DeliverFunc hands a payload to the session owner. It returns false when the
// owner rejected it because tok is no longer current.
type DeliverFunc func(tok Token, transport Transport, payload scoreboard.Payload) bool
