// Package session binds feed keys to live sessions: at most one session runs
// at a time and a key change fully tears down the previous one first.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/transport/pull"
)

// Runner is one running session. Done is closed once it has nothing left to
// do, e.g. after a one-shot fallback pull.
type Runner interface {
	Start(ctx context.Context)
	Stop()
	State() feed.State
	Done() <-chan struct{}
}

// Factory builds the runner for a key. deliver must be used for every payload.
type Factory func(key scoreboard.Key, sessionID string, tok feed.Token, deliver feed.DeliverFunc) Runner

// Listener observes accepted deliveries. Listeners run under the manager's
// lock, in arrival order, and must not call back into the Manager.
type Listener func(scoreboard.Snapshot)

// Status is the manager's view for readiness checks.
type Status struct {
	Snapshot scoreboard.Snapshot
	Poll     *pull.Status
}

// Ready reports whether the current session has delivered data. A polling
// session must also have a healthy pull driver.
func (s Status) Ready() bool {
	if !s.Snapshot.HasData {
		return false
	}
	if s.Poll != nil && s.Snapshot.State == feed.StatePolling.String() {
		return s.Poll.IsReady()
	}
	return true
}

// Manager owns the active session and its latest payload.
type Manager struct {
	factory Factory
	logger  *slog.Logger
	now     func() time.Time
	tokens  feed.Tokens

	// switchMu serializes key changes; mu guards session state and deliveries.
	switchMu sync.Mutex
	mu       sync.Mutex

	key       scoreboard.Key
	sessionID string
	token     feed.Token
	runner    Runner
	latest    scoreboard.Payload
	transport feed.Transport
	updatedAt time.Time
	listeners []Listener
}

// NewManager constructs an idle manager.
func NewManager(factory Factory, logger *slog.Logger) *Manager {
	return &Manager{
		factory: factory,
		logger:  logger,
		now:     time.Now,
	}
}

// OnUpdate registers a listener for accepted deliveries.
func (m *Manager) OnUpdate(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Switch makes key the active session. An unchanged key with a session
// still running is a no-op; one whose runner has ended is rebuilt. Otherwise the previous session is invalidated
// and stopped before anything new is built; a key without a date leaves the
// manager idle. ctx bounds the new session's lifetime.
func (m *Manager) Switch(ctx context.Context, key scoreboard.Key) {
	m.switchMu.Lock()
	defer m.switchMu.Unlock()

	m.mu.Lock()
	running := m.runner != nil && !ended(m.runner)
	if key == m.key && (running || !key.Valid()) {
		m.mu.Unlock()
		return
	}
	reason := "key changed"
	if key == m.key {
		reason = "session ended"
	}
	m.mu.Unlock()

	m.teardown(reason)

	m.mu.Lock()
	m.key = key
	m.mu.Unlock()

	if !key.Valid() {
		logging.Info(m.logger, "no feed date, session idle", slog.String(logging.FieldSport, string(key.Sport)))
		return
	}

	id := uuid.NewString()
	m.mu.Lock()
	tok := m.tokens.Issue()
	runner := m.factory(key, id, tok, m.deliver)
	m.sessionID = id
	m.token = tok
	m.runner = runner
	m.mu.Unlock()

	logging.Info(m.logger, "feed session starting",
		slog.String(logging.FieldSport, string(key.Sport)),
		slog.String(logging.FieldDate, key.Date),
		slog.String(logging.FieldSession, id),
		slog.Uint64("generation", tok.Generation()),
	)
	runner.Start(ctx)
}

func ended(r Runner) bool {
	select {
	case <-r.Done():
		return true
	default:
		return false
	}
}

// Close disposes the active session, if any.
func (m *Manager) Close() {
	m.switchMu.Lock()
	defer m.switchMu.Unlock()

	m.teardown("disposed")
	m.mu.Lock()
	m.key = scoreboard.Key{}
	m.mu.Unlock()
}

// Key returns the active key.
func (m *Manager) Key() scoreboard.Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key
}

// Snapshot returns the latest payload, or HasData=false before the first delivery.
func (m *Manager) Snapshot() scoreboard.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Status returns the snapshot plus pull health when the session exposes it.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{Snapshot: m.snapshotLocked()}
	if ps, ok := m.runner.(interface{ PollStatus() pull.Status }); ok {
		poll := ps.PollStatus()
		st.Poll = &poll
	}
	return st
}

// teardown invalidates the current token under mu, so no delivery can land
// afterwards, then stops the runner outside the lock. Must hold switchMu.
func (m *Manager) teardown(reason string) {
	m.mu.Lock()
	m.tokens.Invalidate()
	old, oldID := m.runner, m.sessionID
	m.runner = nil
	m.sessionID = ""
	m.token = feed.Token{}
	m.latest = nil
	m.transport = ""
	m.updatedAt = time.Time{}
	m.mu.Unlock()

	if old == nil {
		return
	}
	old.Stop()
	logging.Info(m.logger, "feed session torn down",
		slog.String(logging.FieldSession, oldID),
		slog.String(logging.FieldReason, reason),
	)
}

func (m *Manager) deliver(tok feed.Token, transport feed.Transport, p scoreboard.Payload) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !tok.Valid() || tok != m.token {
		return false
	}
	m.latest = p
	m.transport = transport
	m.updatedAt = m.now()

	snap := m.snapshotLocked()
	for _, l := range m.listeners {
		l(snap)
	}
	return true
}

func (m *Manager) snapshotLocked() scoreboard.Snapshot {
	state := feed.StateIdle
	if m.runner != nil {
		state = m.runner.State()
	}
	return scoreboard.Snapshot{
		Key:       m.key,
		SessionID: m.sessionID,
		State:     state.String(),
		Transport: string(m.transport),
		HasData:   !m.latest.IsZero(),
		Payload:   m.latest,
		UpdatedAt: m.updatedAt,
	}
}
