package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/config"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	httpserver "github.com/preston-bernstein/scoreboard-feed-service/internal/http"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/http/handlers"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/session"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/teams"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/transport/stream"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/upstream"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	sessions      *session.Manager
	teams         *teams.Store
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server with the default feed wiring.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithMetrics(cfg, logger, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)
	manager := buildSessions(cfg, logger, recorder)
	teamStore := teams.NewStore(cfg.TeamsCSV)
	httpSrv := buildHTTPServer(cfg, manager, teamStore, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		sessions:      manager,
		teams:         teamStore,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
}

func buildSessions(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) *session.Manager {
	routes := upstream.NewRoutes(upstream.Config{
		FeedBaseURL:     cfg.Feed.BaseURL,
		UpstreamBaseURL: cfg.Feed.UpstreamBaseURL,
		Sports: map[scoreboard.Sport]upstream.SportConfig{
			scoreboard.SportCFB: {Groups: cfg.Feed.CFB.Groups, Limit: cfg.Feed.CFB.Limit},
			scoreboard.SportCBB: {Groups: cfg.Feed.CBB.Groups, Limit: cfg.Feed.CBB.Limit},
		},
	})

	factory := session.ControllerFactory(session.Deps{
		Routes:       routes,
		Mode:         upstream.ParseMode(cfg.Feed.Mode),
		Opener:       stream.NewOpener(cfg.Feed.StreamTransport, logger, recorder),
		PollInterval: cfg.Feed.PollInterval,
		PollOnce:     cfg.Feed.PollOnce,
		Logger:       logger,
		Metrics:      recorder,
	})

	manager := session.NewManager(factory, logger)
	manager.OnUpdate(func(snap scoreboard.Snapshot) {
		logging.Debug(logger, "scoreboard updated",
			slog.String(logging.FieldSport, string(snap.Key.Sport)),
			slog.String(logging.FieldDate, snap.Key.Date),
			slog.String(logging.FieldTransport, snap.Transport),
			slog.Int(logging.FieldCount, snap.Payload.EventCount()),
		)
	})
	return manager
}

func buildHTTPServer(cfg config.Config, manager *session.Manager, teamStore *teams.Store, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Handler:        handlers.NewHandler(manager, teamStore, logger),
		Sessions:       handlers.NewSessionHandler(manager, logger),
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         logger,
		Metrics:        recorder,
	})

	return newNetHTTPServer(":"+cfg.Port, router, apiTimeouts)
}

// Run serves HTTP, starts the configured feed session, and blocks until ctx
// is cancelled or the HTTP server fails. Shutdown is graceful either way.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if s.metricsServer != nil {
		g.Go(func() error {
			// Telemetry failures never take the service down.
			if err := serve("metrics", s.metricsServer, s.logger); err != nil {
				logging.Warn(s.logger, "metrics server failed", "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return serve("http", s.httpServer, s.logger)
	})
	g.Go(func() error {
		s.preloadTeams()
		s.startInitialSession(gctx)

		<-gctx.Done()
		logging.Info(s.logger, "shutdown signal received")
		return s.gracefulShutdown()
	})

	return g.Wait()
}

func (s *Server) preloadTeams() {
	if s.cfg.TeamsCSV == "" {
		return
	}
	if err := s.teams.Load(); err != nil {
		logging.Warn(s.logger, "team metadata unavailable", "error", err)
		return
	}
	logging.Info(s.logger, "team metadata loaded", slog.Int(logging.FieldCount, s.teams.Len()))
}

func (s *Server) startInitialSession(ctx context.Context) {
	key, err := scoreboard.NewKey(s.cfg.Feed.Date, s.cfg.Feed.Sport)
	if err != nil {
		logging.Warn(s.logger, "invalid initial feed key, starting idle",
			slog.String(logging.FieldDate, s.cfg.Feed.Date),
			slog.String(logging.FieldSport, s.cfg.Feed.Sport),
			"error", err,
		)
		return
	}
	s.sessions.Switch(ctx, key)
}

func (s *Server) gracefulShutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.sessions.Close()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
		return err
	}

	logging.Info(s.logger, "shutdown complete")
	return nil
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := cfg.Metrics.Telemetry()

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = newNetHTTPServer(":"+recCfg.Port, handler, metricsTimeouts)
	}

	return rec, metricsSrv, shutdown
}

// serve blocks in ListenAndServe; a server closed by Shutdown is not an error.
func serve(name string, srv httpServer, logger *slog.Logger) error {
	logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Warn(logger, name+" server failed", "error", err)
		return err
	}
	return nil
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
