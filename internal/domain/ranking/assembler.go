package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixelarc/rankboard/internal/domain/model"
	"github.com/pixelarc/rankboard/internal/domain/score"
	"github.com/pixelarc/rankboard/pkg/metrics"
)

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithTopListSize caps the displayed top list.
func WithTopListSize(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.topListMax = n
		}
	}
}

// WithFetchWindow sets how many entries are read from the board before the
// frozen filter. Values below the top list size are lifted to it.
func WithFetchWindow(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.fetchWindow = n
		}
	}
}

// Assembler builds Rankings views from a board and a directory.
type Assembler struct {
	board       Board
	directory   Directory
	topListMax  int
	fetchWindow int
}

// New constructs an Assembler with default display limits.
func New(board Board, directory Directory, opts ...Option) *Assembler {
	a := &Assembler{
		board:       board,
		directory:   directory,
		topListMax:  defaultTopListMax,
		fetchWindow: defaultFetchWindow,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.fetchWindow < a.topListMax {
		a.fetchWindow = a.topListMax
	}
	return a
}

type lockedResult struct {
	ids map[string]struct{}
	err error
}

// Assemble produces the view for one leaderboard key. family selects the
// decoder applied to stored combined scores. viewerID may be empty, in which
// case no Myself entry is resolved.
//
// When the viewer is not in the fetched top window, their rank is taken from
// the board's unfiltered reverse rank. That rank does not account for frozen
// accounts ranked above the viewer; the approximation is intentional and
// kept from the original design.
func (a *Assembler) Assemble(ctx context.Context, key string, family score.Family, viewerID string) (Rankings, error) {
	// Frozen-account fetch and top-window fetch are independent reads;
	// issue them concurrently and join before filtering.
	lockedCh := make(chan lockedResult, 1)
	go func() {
		ids, err := a.directory.LockedIDs(ctx)
		lockedCh <- lockedResult{ids: ids, err: err}
	}()

	members, err := a.board.TopRange(ctx, key, 0, a.fetchWindow-1)
	locked := <-lockedCh
	if err != nil {
		metrics.RecordErrorByComponent("ranking", "board_top_range")
		return Rankings{}, fmt.Errorf("%w: top range %q: %w", ErrCollaborator, key, err)
	}
	if locked.err != nil {
		metrics.RecordErrorByComponent("ranking", "directory_locked_ids")
		return Rankings{}, fmt.Errorf("%w: locked ids: %w", ErrCollaborator, locked.err)
	}

	filtered := make([]Entry, 0, len(members))
	for _, m := range members {
		if _, frozen := locked.ids[m.ID]; frozen {
			metrics.RecordFrozenFiltered()
			continue
		}
		filtered = append(filtered, Entry{
			Rank:   len(filtered) + 1,
			UserID: m.ID,
			Score:  score.Decode(family, m.Combined),
		})
	}

	var myself *Entry
	if viewerID != "" {
		for i := range filtered {
			if filtered[i].UserID == viewerID {
				self := filtered[i]
				myself = &self
				break
			}
		}
		if myself == nil {
			self, err := a.lookupViewer(ctx, key, family, viewerID)
			if err != nil {
				return Rankings{}, err
			}
			myself = self
		}
	}

	top := filtered
	if len(top) > a.topListMax {
		top = top[:a.topListMax]
	}

	if err := a.hydrate(ctx, top, myself); err != nil {
		return Rankings{}, err
	}

	metrics.RecordRankingsServed()
	return Rankings{TopList: top, Myself: myself}, nil
}

// lookupViewer resolves the caller's entry when they fall outside the
// fetched top window. Returns (nil, nil) when the caller has no entry.
func (a *Assembler) lookupViewer(ctx context.Context, key string, family score.Family, viewerID string) (*Entry, error) {
	revRank, err := a.board.RevRank(ctx, key, viewerID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordErrorByComponent("ranking", "board_rev_rank")
		return nil, fmt.Errorf("%w: rev rank %q: %w", ErrCollaborator, key, err)
	}
	combined, err := a.board.Score(ctx, key, viewerID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordErrorByComponent("ranking", "board_score")
		return nil, fmt.Errorf("%w: score %q: %w", ErrCollaborator, key, err)
	}
	return &Entry{
		Rank:   revRank + 1,
		UserID: viewerID,
		Score:  score.Decode(family, combined),
	}, nil
}

// hydrate attaches display profile fields to the top list and the viewer's
// entry with a single directory call.
func (a *Assembler) hydrate(ctx context.Context, top []Entry, myself *Entry) error {
	ids := make([]string, 0, len(top)+1)
	seen := make(map[string]struct{}, len(top)+1)
	for i := range top {
		ids = append(ids, top[i].UserID)
		seen[top[i].UserID] = struct{}{}
	}
	if myself != nil {
		if _, ok := seen[myself.UserID]; !ok {
			ids = append(ids, myself.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := a.directory.Profiles(ctx, ids)
	if err != nil {
		metrics.RecordErrorByComponent("ranking", "directory_profiles")
		return fmt.Errorf("%w: profiles: %w", ErrCollaborator, err)
	}

	for i := range top {
		if p, ok := profiles[top[i].UserID]; ok {
			applyProfile(&top[i], p)
		}
	}
	if myself != nil {
		if p, ok := profiles[myself.UserID]; ok {
			applyProfile(myself, p)
		}
	}
	return nil
}

func applyProfile(e *Entry, p model.Profile) {
	e.Name = p.Name
	e.IconType = p.IconType
	e.IconSubCategory = p.IconSubCategory
	e.TitleSubCategory = p.TitleSubCategory
	e.FrameSubCategory = p.FrameSubCategory
}
