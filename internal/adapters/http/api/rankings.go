package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pixelarc/rankboard/internal/domain/period"
	"github.com/pixelarc/rankboard/internal/domain/ranking"
	"github.com/pixelarc/rankboard/internal/domain/score"
)

// RankingsDependencies defines the interface for leaderboard reads.
type RankingsDependencies interface {
	Rankings(ctx context.Context, kind period.Kind, family score.Family, current bool, viewerID string) (ranking.Rankings, error)
	EventRankings(ctx context.Context, eventID, action string, family score.Family, viewerID string) (ranking.Rankings, error)
}

// RankingsHandler handles leaderboard view requests.
type RankingsHandler struct {
	deps RankingsDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetRankings handles GET /rankings/{kind} requests.
//
// Query parameters:
//   - period: "current" (default) or "previous"
//   - viewer: user id whose own row should be included
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/rankings/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	kind, err := parseKind(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	current := true
	switch r.URL.Query().Get("period") {
	case "", "current":
	case "previous":
		current = false
	default:
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("period must be current or previous")))
		return
	}
	viewer := r.URL.Query().Get("viewer")

	view, err := h.deps.Rankings(r.Context(), kind, familyFor(kind), current, viewer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleGetEventRankings handles GET /rankings/event/{event_id}/{action}
// requests for special-event leaderboards.
//
// Query parameters:
//   - family: "count" (default) or "rate"
//   - viewer: user id whose own row should be included
func (h *RankingsHandler) HandleGetEventRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_event_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/rankings/event/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	eventID, action := parts[0], parts[1]

	family := score.FamilyCount
	switch r.URL.Query().Get("family") {
	case "", "count":
	case "rate":
		family = score.FamilyRate
	default:
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("family must be count or rate")))
		return
	}
	viewer := r.URL.Query().Get("viewer")

	view, err := h.deps.EventRankings(r.Context(), eventID, action, family, viewer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
