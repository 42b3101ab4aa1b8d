package scoreboard

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pixelarc/rankboard/pkg/metrics"
)

// Treap-based, in-memory Board implementation.
//
// Each key owns an independent treap ordered score DESC, member ASC, so an
// in-order traversal yields the leaderboard best-first. Nodes carry subtree
// sizes, which gives O(log n) expected rank and range lookups without
// materializing the whole board.

// treap node
type node struct {
	id    string
	score int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aID) ranks before (bScore, bID):
// higher combined score first, then member id ascending.
func less(aScore int64, aID string, bScore int64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score int64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: rand.Uint64(), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, id string, score int64) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = remove(n.left, id, score)
	} else {
		n.right = remove(n.right, id, score)
	}
	fix(n)
	return n
}

// rankOf counts the nodes ranking strictly before (score, id).
func rankOf(n *node, id string, score int64) int {
	rank := 0
	for n != nil {
		if less(score, id, n.score, n.id) {
			n = n.left
		} else if n.id == id && n.score == score {
			return rank + nsize(n.left)
		} else {
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return rank
}

// collectRange appends the nodes at in-order positions [start, stop] to out.
// pos is the in-order index of n's leftmost descendant.
func collectRange(n *node, pos, start, stop int, out *[]Member) {
	if n == nil || pos > stop || pos+n.size <= start {
		return
	}
	collectRange(n.left, pos, start, stop, out)
	self := pos + nsize(n.left)
	if self >= start && self <= stop {
		*out = append(*out, Member{ID: n.id, Combined: n.score})
	}
	collectRange(n.right, self+1, start, stop, out)
}

// ladder is one key's leaderboard: the treap plus a member index.
type ladder struct {
	root     *node
	byMember map[string]int64
}

// MemoryBoard implements Board with one in-process treap per key.
type MemoryBoard struct {
	mu      sync.RWMutex
	ladders map[string]*ladder
}

// NewMemoryBoard constructs an empty in-memory board.
func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{ladders: make(map[string]*ladder)}
}

// Upsert implements Board.Upsert with O(log n) expected time.
func (b *MemoryBoard) Upsert(ctx context.Context, key, member string, combined int64) error {
	start := time.Now()
	defer func() {
		metrics.RecordBoardUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.ladders[key]
	if !ok {
		l = &ladder{byMember: make(map[string]int64)}
		b.ladders[key] = l
	}
	if old, ok := l.byMember[member]; ok {
		if old == combined {
			return nil
		}
		l.root = remove(l.root, member, old)
	}
	l.byMember[member] = combined
	l.root = insert(l.root, member, combined)
	metrics.RecordBoardWrite()
	return nil
}

// TopRange implements Board.TopRange.
func (b *MemoryBoard) TopRange(ctx context.Context, key string, start, stop int) ([]Member, error) {
	qstart := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(qstart).Milliseconds()))
	}()

	if start < 0 || stop < start {
		metrics.RecordErrorByComponent("scoreboard", "invalid_range")
		return nil, ErrInvalidRange
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.ladders[key]
	if !ok {
		return nil, nil
	}
	out := make([]Member, 0, stop-start+1)
	collectRange(l.root, 0, start, stop, &out)
	return out, nil
}

// Score implements Board.Score.
func (b *MemoryBoard) Score(ctx context.Context, key, member string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.ladders[key]
	if !ok {
		return 0, ErrNotFound
	}
	combined, ok := l.byMember[member]
	if !ok {
		return 0, ErrNotFound
	}
	return combined, nil
}

// RevRank implements Board.RevRank in O(log n) expected time.
func (b *MemoryBoard) RevRank(ctx context.Context, key, member string) (int, error) {
	qstart := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(qstart).Milliseconds()))
	}()

	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.ladders[key]
	if !ok {
		return 0, ErrNotFound
	}
	combined, ok := l.byMember[member]
	if !ok {
		return 0, ErrNotFound
	}
	return rankOf(l.root, member, combined), nil
}

// Count implements Board.Count.
func (b *MemoryBoard) Count(ctx context.Context, key string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.ladders[key]
	if !ok {
		return 0, nil
	}
	return len(l.byMember), nil
}
