package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/http/handlers"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/http/middleware"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
)

// RouterConfig carries the handlers and cross-cutting settings for NewRouter.
type RouterConfig struct {
	Handler        *handlers.Handler
	Sessions       *handlers.SessionHandler
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *metrics.Recorder
}

// NewRouter registers the local API routes.
func NewRouter(cfg RouterConfig) nethttp.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", cfg.Handler.Health)
	r.Get("/ready", cfg.Handler.Ready)
	r.Get("/scoreboard", cfg.Handler.Scoreboard)
	r.Get("/teams/{name}", cfg.Handler.Team)
	if cfg.Sessions != nil {
		r.Put("/session", cfg.Sessions.Switch)
		r.Delete("/session", cfg.Sessions.Close)
	}
	return r
}
