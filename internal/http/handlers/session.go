package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
)

// SessionHandler changes or disposes the active feed session.
type SessionHandler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions Sessions, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Switch handles PUT /session?date=YYYY-MM-DD&sport=cfb. An empty date
// tears the session down and leaves the service idle.
func (h *SessionHandler) Switch(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)

	q := r.URL.Query()
	key, err := scoreboard.NewKey(strings.TrimSpace(q.Get("date")), strings.TrimSpace(q.Get("sport")))
	if err != nil {
		logging.Warn(logger, "session switch rejected", slog.String("date", q.Get("date")), slog.String("sport", q.Get("sport")))
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	// The session outlives this request.
	h.sessions.Switch(context.WithoutCancel(r.Context()), key)
	logging.Info(logger, "session switched",
		slog.String(logging.FieldSport, string(key.Sport)),
		slog.String(logging.FieldDate, key.Date),
	)
	writeJSON(w, http.StatusAccepted, h.sessions.Snapshot(), h.logger)
}

// Close handles DELETE /session.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.sessions.Close()
	logging.Info(loggerFromContext(r, h.logger), "session closed")
	w.WriteHeader(http.StatusNoContent)
}
