package stream

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/r3labs/sse/v2"
	backoff "gopkg.in/cenkalti/backoff.v1"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
)

// SSEOpener consumes a text/event-stream endpoint. Each event's data field is
// one message.
type SSEOpener struct {
	// HTTPClient must not set a Timeout; the response body stays open for the session.
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Open starts the subscription. Connection and status failures surface on
// the handle's Errors channel.
func (o *SSEOpener) Open(ctx context.Context, rawURL string) (feed.StreamHandle, error) {
	u, err := parseURL(rawURL, "http", "https")
	if err != nil {
		return nil, err
	}

	client := sse.NewClient(u.String(), sse.ClientMaxBufferSize(maxMessageSize))
	if o.HTTPClient != nil {
		client.Connection = o.HTTPClient
	}
	client.ReconnectStrategy = &backoff.StopBackOff{}

	streamCtx, cancel := context.WithCancel(ctx)
	h := newHandle(KindSSE, cancel, o.Logger, o.Metrics)

	go func() {
		err := client.SubscribeRawWithContext(streamCtx, func(ev *sse.Event) {
			h.push(streamCtx, ev.Data)
		})
		if streamCtx.Err() != nil {
			return
		}
		if err == nil {
			err = feed.ErrStreamClosed
		}
		logging.Warn(o.Logger, "sse stream ended", slog.String(logging.FieldURL, u.Redacted()), "error", err)
		h.fail(err)
	}()

	return h, nil
}
