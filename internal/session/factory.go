package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/transport/pull"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/upstream"
)

// Deps wires the real drivers into sessions.
type Deps struct {
	Routes       upstream.Routes
	Mode         upstream.Mode
	Opener       feed.StreamOpener
	PollInterval time.Duration
	PollOnce     bool
	HTTPClient   *http.Client
	Logger       *slog.Logger
	Metrics      *metrics.Recorder
}

// liveSession pairs a controller with its pull driver so readiness can report
// pull health.
type liveSession struct {
	*feed.Controller
	driver *pull.Driver
}

func (s *liveSession) PollStatus() pull.Status {
	return s.driver.Status()
}

// ControllerFactory builds stream-first sessions. Direct mode has no push
// endpoint, so its sessions start polling straight away and keep polling on
// the interval even when the fallback pull is one-shot.
func ControllerFactory(d Deps) Factory {
	return func(key scoreboard.Key, sessionID string, tok feed.Token, deliver feed.DeliverFunc) Runner {
		logger := logging.With(d.Logger, slog.String("component", "feed"))

		var streamURL string
		if d.Mode != upstream.ModeDirect {
			streamURL = d.Routes.StreamURL(key)
		}

		driver := pull.New(pull.Config{
			Routes:     d.Routes.PullRoutes(key, d.Mode),
			Interval:   d.PollInterval,
			Once:       d.PollOnce && d.Mode != upstream.ModeDirect,
			HTTPClient: d.HTTPClient,
			Logger:     logger,
			Metrics:    d.Metrics,
		})

		ctrl := feed.NewController(feed.Config{
			Key:       key,
			SessionID: sessionID,
			StreamURL: streamURL,
			Token:     tok,
			Opener:    d.Opener,
			Poller:    driver,
			Deliver:   deliver,
			Logger:    logger,
			Metrics:   d.Metrics,
		})
		return &liveSession{Controller: ctrl, driver: driver}
	}
}
