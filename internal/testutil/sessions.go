package testutil

import (
	"context"
	"sync"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/session"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/transport/pull"
)

// StubSessions records session changes and returns canned state.
type StubSessions struct {
	mu          sync.Mutex
	Keys        []scoreboard.Key
	Closes      int
	SnapshotVal scoreboard.Snapshot
	PollVal     *pull.Status
}

func (s *StubSessions) Switch(ctx context.Context, key scoreboard.Key) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Keys = append(s.Keys, key)
	s.SnapshotVal.Key = key
}

func (s *StubSessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closes++
}

func (s *StubSessions) Snapshot() scoreboard.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SnapshotVal
}

func (s *StubSessions) Status() session.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Status{Snapshot: s.SnapshotVal, Poll: s.PollVal}
}
