// Package pull fetches scoreboard documents on demand or on a fixed timer,
// falling back from the primary route to the secondary on every attempt.
package pull

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/normalize"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/upstream"
)

const (
	DefaultInterval    = 20 * time.Second
	defaultHTTPTimeout = 15 * time.Second
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls one pull driver. Routes are tried in order on every attempt.
type Config struct {
	Routes     []upstream.Route
	Interval   time.Duration
	Once       bool
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Driver issues pulls for a single session. At most one fetch is in flight.
type Driver struct {
	routes   []upstream.Route
	client   httpDoer
	interval time.Duration
	once     bool
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the driver.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastRoute           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the driver has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Driver with sane defaults.
func New(cfg Config) *Driver {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	var client httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Driver{
		routes:   cfg.Routes,
		client:   client,
		interval: interval,
		once:     cfg.Once,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Run fetches immediately, then re-arms the timer only after each attempt
// completes. Failed attempts keep the caller's last payload and are retried on
// the next tick. A one-shot driver returns after its first attempt.
func (d *Driver) Run(ctx context.Context, deliver func(scoreboard.Payload)) {
	logging.Info(d.logger, "poller started",
		slog.Int64(logging.FieldIntervalMS, d.interval.Milliseconds()),
		slog.Bool("once", d.once),
	)
	for {
		payload, err := d.FetchOnce(ctx)
		if ctx.Err() != nil {
			logging.Info(d.logger, "poller stopped")
			return
		}
		if err != nil {
			logging.Warn(d.logger, "poll failed, keeping last payload", "error", err)
		} else if deliver != nil {
			deliver(payload)
		}
		if d.once {
			return
		}

		timer := time.NewTimer(d.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			logging.Info(d.logger, "poller stopped")
			return
		case <-timer.C:
		}
	}
}

// FetchOnce tries each route in order and returns the first parsable document,
// normalized. When every route fails the result is a *feed.FetchError.
func (d *Driver) FetchOnce(ctx context.Context) (scoreboard.Payload, error) {
	start := d.now()
	d.recordAttempt(start)

	fe := &feed.FetchError{}
	for _, route := range d.routes {
		raw, err := d.fetchRoute(ctx, route)
		if err == nil {
			payload := normalize.Normalize(raw)
			d.metrics.RecordPollCycle(time.Since(start), nil)
			d.recordSuccess(route.Name, start)
			logging.Info(d.logger, "poll succeeded",
				slog.String(logging.FieldRoute, route.Name),
				slog.Int(logging.FieldCount, payload.EventCount()),
				slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
			)
			return payload, nil
		}
		fe.Attempts = append(fe.Attempts, err)
		if ctx.Err() != nil {
			break
		}
		logging.Warn(d.logger, "poll route failed", slog.String(logging.FieldRoute, route.Name), "error", err)
	}

	var err error = fe
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	d.metrics.RecordPollCycle(time.Since(start), err)
	d.recordFailure(err, start)
	return nil, err
}

// Status returns a snapshot of the driver's recent health.
func (d *Driver) Status() Status {
	d.statusMu.RLock()
	defer d.statusMu.RUnlock()
	return d.status
}

func (d *Driver) recordAttempt(at time.Time) {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.status.LastAttempt = at
}

func (d *Driver) recordSuccess(route string, at time.Time) {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.status.ConsecutiveFailures = 0
	d.status.LastError = ""
	d.status.LastRoute = route
	d.status.LastSuccess = at
}

func (d *Driver) recordFailure(err error, at time.Time) {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.status.ConsecutiveFailures++
	if err != nil {
		d.status.LastError = err.Error()
	}
	d.status.LastAttempt = at
}
