package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func TestMemoryBoard_BasicOperations(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard()

	// Empty board
	if n, _ := board.Count(ctx, "regular_spark_202311_early"); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}
	if _, err := board.Score(ctx, "regular_spark_202311_early", "user1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := board.RevRank(ctx, "regular_spark_202311_early", "user1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Single entry
	if err := board.Upsert(ctx, "regular_spark_202311_early", "user1", 1<<23|100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := board.Count(ctx, "regular_spark_202311_early"); n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}
	score, err := board.Score(ctx, "regular_spark_202311_early", "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1<<23|100 {
		t.Errorf("expected score %d, got %d", int64(1<<23|100), score)
	}
	rank, err := board.RevRank(ctx, "regular_spark_202311_early", "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank != 0 {
		t.Errorf("expected rank 0, got %d", rank)
	}
}

func TestMemoryBoard_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard()
	key := "regular_craft_202311_late"

	if err := board.Upsert(ctx, key, "user1", 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A lower score still replaces the stored one; the board is not
	// best-score-keeping, it reflects the latest known state.
	if err := board.Upsert(ctx, key, "user1", 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, err := board.Score(ctx, key, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 300 {
		t.Errorf("expected last write 300, got %d", score)
	}
	if n, _ := board.Count(ctx, key); n != 1 {
		t.Errorf("expected a single member, got %d", n)
	}
}

func TestMemoryBoard_TopRangeOrdering(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard()
	key := "regular_spark_202311_early"

	scores := map[string]int64{
		"alice": 900,
		"bob":   700,
		"carol": 900, // ties with alice, member asc breaks the tie
		"dave":  100,
		"erin":  800,
	}
	for member, s := range scores {
		if err := board.Upsert(ctx, key, member, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := board.TopRange(ctx, key, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"alice", "carol", "erin", "bob", "dave"}
	if len(got) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(got))
	}
	for i, m := range got {
		if m.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], m.ID)
		}
	}

	// Sub-range
	mid, err := board.TopRange(ctx, key, 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMid := []string{"carol", "erin", "bob"}
	for i, m := range mid {
		if m.ID != wantMid[i] {
			t.Errorf("sub-range position %d: expected %s, got %s", i, wantMid[i], m.ID)
		}
	}

	// Bad ranges
	if _, err := board.TopRange(ctx, key, -1, 3); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := board.TopRange(ctx, key, 5, 2); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestMemoryBoard_RevRank(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard()
	key := "event_wintercup_spark"

	for i := 0; i < 50; i++ {
		member := fmt.Sprintf("user%02d", i)
		if err := board.Upsert(ctx, key, member, int64(i)*10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// user49 has the highest score, user00 the lowest.
	rank, err := board.RevRank(ctx, key, "user49")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank != 0 {
		t.Errorf("expected rank 0 for top member, got %d", rank)
	}
	rank, err = board.RevRank(ctx, key, "user00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank != 49 {
		t.Errorf("expected rank 49 for bottom member, got %d", rank)
	}
	rank, err = board.RevRank(ctx, key, "user25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank != 24 {
		t.Errorf("expected rank 24, got %d", rank)
	}
}

func TestMemoryBoard_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard()

	if err := board.Upsert(ctx, "regular_spark_202311_early", "user1", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := board.Upsert(ctx, "regular_spark_202311_late", "user1", 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	early, err := board.Score(ctx, "regular_spark_202311_early", "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	late, err := board.Score(ctx, "regular_spark_202311_late", "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if early != 100 || late != 200 {
		t.Errorf("cross-key leak: early=%d late=%d", early, late)
	}
}

func TestMemoryBoard_RandomizedAgainstSort(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard()
	key := "regular_extract_202401_early"
	rng := rand.New(rand.NewSource(7))

	type pair struct {
		id    string
		score int64
	}
	latest := make(map[string]int64)
	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("user%03d", rng.Intn(300))
		s := int64(rng.Intn(1 << 20))
		latest[id] = s
		if err := board.Upsert(ctx, key, id, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := make([]pair, 0, len(latest))
	for id, s := range latest {
		want = append(want, pair{id, s})
	}
	sort.Slice(want, func(i, j int) bool {
		if want[i].score != want[j].score {
			return want[i].score > want[j].score
		}
		return want[i].id < want[j].id
	})

	got, err := board.TopRange(ctx, key, 0, len(want)-1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].id || got[i].Combined != want[i].score {
			t.Fatalf("position %d: expected (%s,%d), got (%s,%d)",
				i, want[i].id, want[i].score, got[i].ID, got[i].Combined)
		}
		rank, err := board.RevRank(ctx, key, want[i].id)
		if err != nil {
			t.Fatalf("rank lookup %s: %v", want[i].id, err)
		}
		if rank != i {
			t.Fatalf("member %s: expected rank %d, got %d", want[i].id, i, rank)
		}
	}
}
