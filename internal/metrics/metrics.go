package metrics

import (
	"sync"
	"time"
)

type routeStats struct {
	calls           int
	errors          int
	lastStatus      int
	lastCallLatency time.Duration
}

type feedStats struct {
	streamDelivered int
	streamDropped   int
	fallbacks       map[string]int
	deliveries      map[string]int
	discarded       int
	pollCycles      int
	pollFailures    int
}

// Recorder captures lightweight, in-memory metrics about the live feed and
// forwards them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu     sync.Mutex
	routes map[string]*routeStats
	feed   feedStats
	otel   *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		routes: make(map[string]*routeStats),
		feed: feedStats{
			fallbacks:  make(map[string]int),
			deliveries: make(map[string]int),
		},
		otel: otel,
	}
}

// RecordRouteAttempt tracks one request against a pull route.
func (r *Recorder) RecordRouteAttempt(route string, status int, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureRoute(route)
	stats.calls++
	stats.lastStatus = status
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRouteAttempt(route, duration, err)
	}
}

// RecordPollCycle tracks a completed poll attempt (all routes).
func (r *Recorder) RecordPollCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.feed.pollCycles++
	if err != nil {
		r.feed.pollFailures++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPoll(duration, err)
	}
}

// RecordStreamMessage counts an inbound push message by outcome.
func (r *Recorder) RecordStreamMessage(outcome string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	switch outcome {
	case OutcomeDropped:
		r.feed.streamDropped++
	default:
		r.feed.streamDelivered++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordStreamMessage(outcome)
	}
}

// RecordFallback counts a switch from push to pull.
func (r *Recorder) RecordFallback(reason string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.feed.fallbacks[reason]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFallback(reason)
	}
}

// RecordDelivery counts a payload accepted by the session owner.
func (r *Recorder) RecordDelivery(transport string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.feed.deliveries[transport]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordDelivery(transport)
	}
}

// RecordDiscarded counts a payload dropped because its session was torn down.
func (r *Recorder) RecordDiscarded(transport string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.feed.discarded++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordDiscarded(transport)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RouteSnapshot returns a copy of the current stats for a pull route.
type RouteSnapshot struct {
	Calls           int
	Errors          int
	LastStatus      int
	LastCallLatency time.Duration
}

func (r *Recorder) Route(route string) RouteSnapshot {
	if r == nil {
		return RouteSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.routes[route]
	if !ok || stats == nil {
		return RouteSnapshot{}
	}
	return RouteSnapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		LastStatus:      stats.lastStatus,
		LastCallLatency: stats.lastCallLatency,
	}
}

// FeedSnapshot is a copy of the feed counters.
type FeedSnapshot struct {
	StreamDelivered int
	StreamDropped   int
	Fallbacks       map[string]int
	Deliveries      map[string]int
	Discarded       int
	PollCycles      int
	PollFailures    int
}

func (r *Recorder) Feed() FeedSnapshot {
	if r == nil {
		return FeedSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return FeedSnapshot{
		StreamDelivered: r.feed.streamDelivered,
		StreamDropped:   r.feed.streamDropped,
		Fallbacks:       copyCounts(r.feed.fallbacks),
		Deliveries:      copyCounts(r.feed.deliveries),
		Discarded:       r.feed.discarded,
		PollCycles:      r.feed.pollCycles,
		PollFailures:    r.feed.pollFailures,
	}
}

// ensureRoute must be called with r.mu held.
func (r *Recorder) ensureRoute(route string) *routeStats {
	stats, ok := r.routes[route]
	if !ok {
		stats = &routeStats{}
		r.routes[route] = stats
	}
	return stats
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
