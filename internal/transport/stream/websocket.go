package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
)

// maxMessageSize bounds one scoreboard message on either transport; full-slate
// payloads run to a few MB.
const maxMessageSize = 16 << 20

// WebsocketOpener dials a websocket endpoint; http(s) URLs are mapped to ws(s).
type WebsocketOpener struct {
	Dialer  *websocket.Dialer
	Header  http.Header
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Open dials synchronously, so handshake failures are returned here.
func (o *WebsocketOpener) Open(ctx context.Context, rawURL string) (feed.StreamHandle, error) {
	u, err := parseURL(rawURL, "ws", "wss", "http", "https")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	dialer := o.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), o.Header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", u.Redacted(), err)
	}
	conn.SetReadLimit(maxMessageSize)

	streamCtx, cancel := context.WithCancel(ctx)
	h := newHandle(KindWebsocket, cancel, o.Logger, o.Metrics)
	var closeOnce sync.Once
	closeConn := func() error {
		var err error
		closeOnce.Do(func() { err = conn.Close() })
		return err
	}
	h.closer = closeConn
	// unblock ReadMessage when the session context ends without Close
	stop := context.AfterFunc(streamCtx, func() { _ = closeConn() })

	go func() {
		defer stop()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if streamCtx.Err() != nil {
					return
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					err = feed.ErrStreamClosed
				}
				logging.Warn(o.Logger, "websocket stream ended", slog.String(logging.FieldURL, u.Redacted()), "error", err)
				h.fail(err)
				return
			}
			h.push(streamCtx, data)
		}
	}()

	return h, nil
}
