package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/session"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/teams"
)

// Sessions is the part of the session manager the HTTP layer needs.
type Sessions interface {
	Switch(ctx context.Context, key scoreboard.Key)
	Close()
	Snapshot() scoreboard.Snapshot
	Status() session.Status
}

// TeamLookup resolves team display metadata by name.
type TeamLookup interface {
	Lookup(name string) (teams.Team, bool, error)
}

// Handler serves the read side of the local API.
type Handler struct {
	sessions Sessions
	teams    TeamLookup
	logger   *slog.Logger
}

// NewHandler constructs a Handler. teams may be nil.
func NewHandler(sessions Sessions, teamLookup TeamLookup, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		teams:    teamLookup,
		logger:   logger,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the active session has delivered a payload.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Status()
	if st.Ready() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := "not ready"
	switch {
	case st.Snapshot.SessionID == "":
		msg = "no active session"
	case st.Poll != nil && st.Poll.LastError != "":
		msg = st.Poll.LastError
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Scoreboard returns the latest snapshot. hasData is false until the first
// delivery for the current key.
func (h *Handler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Snapshot()
	logger := loggerFromContext(r, h.logger)
	logging.Debug(logger, "served scoreboard",
		slog.String(logging.FieldSport, string(snap.Key.Sport)),
		slog.String(logging.FieldDate, snap.Key.Date),
		slog.Bool("has_data", snap.HasData),
	)
	writeJSON(w, http.StatusOK, snap, h.logger)
}

// Team returns display metadata for /teams/{name}.
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid team name", h.logger)
		return
	}
	if h.teams == nil {
		writeError(w, r, http.StatusNotFound, "team metadata not configured", h.logger)
		return
	}

	team, ok, err := h.teams.Lookup(name)
	switch {
	case errors.Is(err, teams.ErrNotConfigured):
		writeError(w, r, http.StatusNotFound, "team metadata not configured", h.logger)
		return
	case err != nil:
		logging.Warn(loggerFromContext(r, h.logger), "team metadata unavailable", "error", err)
		writeError(w, r, http.StatusServiceUnavailable, "team metadata unavailable", h.logger)
		return
	case !ok:
		writeError(w, r, http.StatusNotFound, "team not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, team, h.logger)
}
