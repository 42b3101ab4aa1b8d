// Package ranking assembles the "top list plus caller's own entry" view of a
// leaderboard.
//
// The assembler is stateless: it reads from a sorted-set board and a user
// directory, both external collaborators reached over the network, and builds
// the view fresh on every call. Frozen accounts are filtered out of the
// displayed list; displayed ranks are recomputed after the filter.
package ranking

import (
	"context"

	"github.com/pixelarc/rankboard/internal/domain/model"
)

// Display limits. The fetch window over-reads past the display cap so the
// frozen-account filter rarely needs a second round trip.
const (
	defaultTopListMax  = 99
	defaultFetchWindow = 121
)

// Member is one (member, combined score) pair read from the board.
type Member struct {
	ID       string
	Combined int64
}

// Board is the sorted-set read surface the assembler consumes. Lookup
// methods signal a missing member with ErrNotFound.
type Board interface {
	// TopRange returns members ordered by combined score descending, ranks
	// start through stop inclusive (0-based).
	TopRange(ctx context.Context, key string, start, stop int) ([]Member, error)

	// Score returns the member's combined score under key.
	Score(ctx context.Context, key, member string) (int64, error)

	// RevRank returns the member's 0-based rank among all members of key,
	// frozen accounts included.
	RevRank(ctx context.Context, key, member string) (int, error)
}

// Directory resolves display profiles and the set of frozen accounts.
type Directory interface {
	// Profiles returns display fields for the given users. Unknown ids are
	// simply absent from the result.
	Profiles(ctx context.Context, ids []string) (map[string]model.Profile, error)

	// LockedIDs returns the ids of currently frozen accounts.
	LockedIDs(ctx context.Context) (map[string]struct{}, error)
}

// Entry is one row of the assembled view. Score is the decoded
// human-meaningful metric, never the combined integer.
type Entry struct {
	Rank             int     `json:"rank"`
	UserID           string  `json:"user_id"`
	Score            float64 `json:"score"`
	Name             string  `json:"name"`
	IconType         string  `json:"icon_type"`
	IconSubCategory  string  `json:"icon_sub_category"`
	TitleSubCategory string  `json:"title_sub_category"`
	FrameSubCategory string  `json:"frame_sub_category"`
}

// Rankings is the assembled view: the displayed top list and, when the
// caller has a qualifying entry, their own row.
type Rankings struct {
	TopList []Entry `json:"top_list"`
	Myself  *Entry  `json:"myself,omitempty"`
}
