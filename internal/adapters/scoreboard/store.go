// Package scoreboard defines the sorted-set leaderboard store interface and
// its implementations.
//
// A board holds many independent leaderboards, one per key (see the period
// package for key derivation). Each leaderboard is an ordered member-to-score
// set: any store with score-descending range reads, single-member score
// lookup, and reverse-rank lookup satisfies the contract.
package scoreboard

import "context"

// Member is one (member, combined score) pair read back from a leaderboard.
type Member struct {
	ID       string
	Combined int64
}

// Board provides read/write access to keyed leaderboards.
//
// Scores are combined values from the score package. They fit in 53 bits, so
// implementations backed by a double-precision score column (Redis sorted
// sets) hold them exactly.
type Board interface {
	// Upsert sets member's score under key. Last write wins; concurrent
	// writes for the same member resolve to whichever lands last.
	Upsert(ctx context.Context, key, member string, combined int64) error

	// TopRange returns members ordered by score descending, from rank start
	// through rank stop inclusive (0-based, ZREVRANGE semantics). Ties are
	// broken by member id ascending; any ordering beyond the combined score
	// itself is store-internal and not a business guarantee.
	TopRange(ctx context.Context, key string, start, stop int) ([]Member, error)

	// Score returns member's combined score under key.
	// Returns ErrNotFound if the member has no entry.
	Score(ctx context.Context, key, member string) (int64, error)

	// RevRank returns member's 0-based rank among all members of key,
	// best score first. Returns ErrNotFound if the member has no entry.
	RevRank(ctx context.Context, key, member string) (int, error)

	// Count returns the number of members under key.
	Count(ctx context.Context, key string) (int, error)
}
