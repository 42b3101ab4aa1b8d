// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/pixelarc/rankboard/internal/domain/period"
	"github.com/pixelarc/rankboard/internal/domain/score"
)

// ScoreEvent represents a qualifying player action (spark, craft, session
// completion) that feeds a leaderboard. One event produces one combined
// score write; a later event for the same player overwrites the earlier
// one (last-write-wins, see scoreboard.Board).
type ScoreEvent struct {
	EventID    string       // unique id for idempotency
	UserID     string       // acting player
	Kind       period.Kind  // which regular leaderboard this feeds
	Family     score.Family // count or rate layout
	Metric     int64        // count family: absolute counter
	Rate       float64      // rate family: percentage 0-100
	Trials     int64        // rate family: trial count
	OccurredAt time.Time    // achievement timestamp
}

// Profile carries the display fields attached to a ranking entry.
type Profile struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	IconType         string `json:"icon_type"`
	IconSubCategory  string `json:"icon_sub_category"`
	TitleSubCategory string `json:"title_sub_category"`
	FrameSubCategory string `json:"frame_sub_category"`
}
