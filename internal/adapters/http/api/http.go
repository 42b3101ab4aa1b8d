// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pixelarc/rankboard/internal/domain/model"
	"github.com/pixelarc/rankboard/internal/domain/period"
	"github.com/pixelarc/rankboard/internal/domain/ranking"
	"github.com/pixelarc/rankboard/internal/domain/score"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord atomically checks and records an event id.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes a recorded event id so it can be retried.
	Unrecord(ctx context.Context, id string)

	// Enqueue pushes an event for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.ScoreEvent) bool

	// Rankings assembles a half-month leaderboard view.
	Rankings(ctx context.Context, kind period.Kind, family score.Family, current bool, viewerID string) (ranking.Rankings, error)

	// EventRankings assembles a special-event leaderboard view.
	EventRankings(ctx context.Context, eventID, action string, family score.Family, viewerID string) (ranking.Rankings, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	eventsHandler    *EventsHandler
	rankingsHandler  *RankingsHandler
	directoryHandler *DirectoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, dir DirectoryAdmin) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		eventsHandler:    NewEventsHandler(deps),
		rankingsHandler:  NewRankingsHandler(deps),
		directoryHandler: NewDirectoryHandler(dir),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/rankings/event/", MetricsMiddleware(s.rankingsHandler.HandleGetEventRankings, "event_rankings"))
	mux.HandleFunc("/rankings/", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/profiles", MetricsMiddleware(s.directoryHandler.HandlePutProfile, "profiles"))
	mux.HandleFunc("/freeze/", MetricsMiddleware(s.directoryHandler.HandleFreeze, "freeze"))
}

// eventRequest mirrors the JSON schema for POST /events.
type eventRequest struct {
	EventID    string  `json:"event_id"`
	UserID     string  `json:"user_id"`
	Kind       string  `json:"kind"`
	Metric     int64   `json:"metric"`
	Rate       float64 `json:"rate"`
	Trials     int64   `json:"trials"`
	OccurredAt string  `json:"occurred_at"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(e.Kind) == "":
		return errors.New("missing kind")
	}
	if _, err := parseKind(e.Kind); err != nil {
		return err
	}
	if e.OccurredAt != "" {
		if _, err := time.Parse(time.RFC3339, e.OccurredAt); err != nil {
			return errors.New("invalid occurred_at; must be RFC3339")
		}
	}
	return nil
}

// parseKind validates a metric kind path or body value.
func parseKind(s string) (period.Kind, error) {
	switch period.Kind(s) {
	case period.KindSpark, period.KindCraft, period.KindExtract, period.KindWinRate:
		return period.Kind(s), nil
	default:
		return "", errors.New("unknown kind: " + s)
	}
}

// familyFor maps a metric kind to its score family. Win-rate boards carry
// rate-family scores; everything else is a plain counter.
func familyFor(kind period.Kind) score.Family {
	if kind == period.KindWinRate {
		return score.FamilyRate
	}
	return score.FamilyCount
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
