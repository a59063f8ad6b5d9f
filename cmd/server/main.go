package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/config"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/server"
)

const appVersion = "dev"

type runner interface {
	Run(ctx context.Context) error
}

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg := config.Load()
	logger := newLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, server.New(cfg, logger), logger)
	stop()
	os.Exit(code)
}

func newLogger(cfg config.Config, out io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.Metrics.ServiceName,
		Version: appVersion,
		Output:  out,
	})
}

// run blocks until the server stops and maps the outcome to an exit code.
func run(ctx context.Context, srv runner, logger *slog.Logger) int {
	if err := srv.Run(ctx); err != nil {
		logging.Error(logger, "server exited", err)
		return 1
	}
	return 0
}
