package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
)

// Transport kinds accepted by NewOpener.
const (
	KindSSE       = "sse"
	KindWebsocket = "websocket"
	KindNone      = "none"
)

// NewOpener returns the driver for kind. Unknown kinds fall back to an opener
// that always reports feed.ErrTransportUnsupported.
func NewOpener(kind string, logger *slog.Logger, recorder *metrics.Recorder) feed.StreamOpener {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindSSE, "":
		return &SSEOpener{Logger: logger, Metrics: recorder}
	case KindWebsocket, "ws":
		return &WebsocketOpener{Logger: logger, Metrics: recorder}
	default:
		return Unsupported{}
	}
}

// Unsupported is the opener for runtimes without a push transport.
type Unsupported struct{}

func (Unsupported) Open(ctx context.Context, rawURL string) (feed.StreamHandle, error) {
	_ = ctx
	_ = rawURL
	return nil, feed.ErrTransportUnsupported
}

func parseURL(rawURL string, schemes ...string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", feed.ErrTransportUnsupported, err)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: scheme %q", feed.ErrTransportUnsupported, u.Scheme)
}
