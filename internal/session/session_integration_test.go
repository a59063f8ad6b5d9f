package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/transport/stream"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/upstream"
)

type feedServer struct {
	cfbStreams atomic.Int32
	cbbStreams atomic.Int32
}

func (s *feedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/live":
		w.Header().Set("Content-Type", "text/event-stream")
		if r.URL.Query().Get("sport") == "cbb" {
			s.cbbStreams.Add(1)
			fmt.Fprint(w, `data: {"type":"update","sport":"cbb","payload":{"events":[{"id":"c1"},{"id":"c2"},{"id":"c3"}]}}`+"\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
			return
		}
		// one event, then the connection drops
		s.cfbStreams.Add(1)
		fmt.Fprint(w, `data: {"type":"update","sport":"cfb","payload":{"events":[{"id":"1"}]}}`+"\n\n")
		w.(http.Flusher).Flush()
	case "/api/scoreboard":
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
	case "/api/espn/scoreboard":
		w.Header().Set("Content-Type", "text/plain")
		if r.URL.Query().Get("groups") == "50" {
			fmt.Fprint(w, `{"payload":{"events":[{"id":"c1"}]}}`)
			return
		}
		fmt.Fprint(w, `{"sport":"cfb","date":"2025-11-23","payload":{"events":[{"id":"1"},{"id":"2"}]}}`)
	default:
		http.NotFound(w, r)
	}
}

type recorded struct {
	sport     scoreboard.Sport
	transport string
	events    int
}

type recordingListener struct {
	mu   sync.Mutex
	seen []recorded
}

func (l *recordingListener) observe(s scoreboard.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, recorded{sport: s.Key.Sport, transport: s.Transport, events: s.Payload.EventCount()})
}

func (l *recordingListener) snapshot() []recorded {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recorded(nil), l.seen...)
}

func (l *recordingListener) waitFor(t *testing.T, match func(recorded) bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, r := range l.snapshot() {
			if match(r) {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met, saw %+v", l.snapshot())
}

func TestStreamFailureFallsBackToSecondaryRouteThenSwitchesKey(t *testing.T) {
	fs := &feedServer{}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	rec := metrics.NewRecorder()
	factory := ControllerFactory(Deps{
		Routes:       upstream.NewRoutes(upstream.Config{FeedBaseURL: srv.URL}),
		Mode:         upstream.ModeLive,
		Opener:       stream.NewOpener(stream.KindSSE, nil, rec),
		PollInterval: 10 * time.Millisecond,
		HTTPClient:   srv.Client(),
		Metrics:      rec,
	})
	m := NewManager(factory, nil)
	defer m.Close()

	l := &recordingListener{}
	m.OnUpdate(l.observe)

	cfb, _ := scoreboard.NewKey("2025-11-23", "cfb")
	m.Switch(context.Background(), cfb)

	l.waitFor(t, func(r recorded) bool { return r.transport == "pull" && r.events == 2 })
	first := l.snapshot()[0]
	if first.transport != "stream" || first.events != 1 || first.sport != scoreboard.SportCFB {
		t.Fatalf("expected the stream event to be delivered first, got %+v", first)
	}
	if fs.cfbStreams.Load() != 1 {
		t.Fatalf("expected no stream reconnect, got %d connections", fs.cfbStreams.Load())
	}
	if st := m.Status(); st.Snapshot.State != "polling" || st.Poll == nil || st.Poll.LastRoute != upstream.RouteProxy {
		t.Fatalf("unexpected status %+v", st)
	}

	cbb, _ := scoreboard.NewKey("2025-11-23", "cbb")
	m.Switch(context.Background(), cbb)
	mark := len(l.snapshot())

	l.waitFor(t, func(r recorded) bool { return r.sport == scoreboard.SportCBB && r.transport == "stream" })
	time.Sleep(50 * time.Millisecond)

	for _, r := range l.snapshot()[mark:] {
		if r.sport != scoreboard.SportCBB {
			t.Fatalf("delivery for previous key after switch: %+v", r)
		}
	}
	if snap := m.Snapshot(); snap.Key != cbb || snap.Payload.EventCount() != 3 {
		t.Fatalf("unexpected snapshot after switch %+v", snap)
	}
	if rec.Route(upstream.RouteScoreboard).Errors == 0 {
		t.Fatal("expected primary pull failures recorded")
	}
}
