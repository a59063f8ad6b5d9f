package testutil

import (
	"context"
	"net/http"
	"sync"
)

// StubHTTPServer stands in for a listening server.
//
// ListenAndServe returns ListenErr straight away when it is set; otherwise it
// blocks until Shutdown and returns http.ErrServerClosed, like net/http does.
// When ShutdownWait is non-nil, Shutdown waits for it to close or for ctx to
// expire.
type StubHTTPServer struct {
	AddrVal      string
	HandlerVal   http.Handler
	ListenErr    error
	ShutdownErr  error
	ShutdownWait chan struct{}

	mu        sync.Mutex
	listens   int
	shutdowns int
	closeOnce sync.Once
	closed    chan struct{}
}

func (s *StubHTTPServer) closedCh() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed == nil {
		s.closed = make(chan struct{})
	}
	return s.closed
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.mu.Lock()
	s.listens++
	s.mu.Unlock()
	if s.ListenErr != nil {
		return s.ListenErr
	}
	<-s.closedCh()
	return http.ErrServerClosed
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdowns++
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.closedCh()) })

	if s.ShutdownWait != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ShutdownWait:
		}
	}
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string {
	if s.AddrVal == "" {
		return ":0"
	}
	return s.AddrVal
}

func (s *StubHTTPServer) Handler() http.Handler {
	if s.HandlerVal == nil {
		return http.NotFoundHandler()
	}
	return s.HandlerVal
}

// ListenCalls reports how many times ListenAndServe ran.
func (s *StubHTTPServer) ListenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listens
}

// ShutdownCalls reports how many times Shutdown ran.
func (s *StubHTTPServer) ShutdownCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdowns
}
