package ranking_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pixelarc/rankboard/internal/domain/model"
	ranking "github.com/pixelarc/rankboard/internal/domain/ranking"
	"github.com/pixelarc/rankboard/internal/domain/score"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeBoard serves a fixed score-descending member list.
type fakeBoard struct {
	members []ranking.Member
	topErr  error
	rankErr error
	scoErr  error
}

func (b *fakeBoard) TopRange(_ context.Context, _ string, start, stop int) ([]ranking.Member, error) {
	if b.topErr != nil {
		return nil, b.topErr
	}
	if start >= len(b.members) {
		return nil, nil
	}
	if stop >= len(b.members) {
		stop = len(b.members) - 1
	}
	return b.members[start : stop+1], nil
}

func (b *fakeBoard) Score(_ context.Context, _ string, member string) (int64, error) {
	if b.scoErr != nil {
		return 0, b.scoErr
	}
	for _, m := range b.members {
		if m.ID == member {
			return m.Combined, nil
		}
	}
	return 0, ranking.ErrNotFound
}

func (b *fakeBoard) RevRank(_ context.Context, _ string, member string) (int, error) {
	if b.rankErr != nil {
		return 0, b.rankErr
	}
	for i, m := range b.members {
		if m.ID == member {
			return i, nil
		}
	}
	return 0, ranking.ErrNotFound
}

type fakeDirectory struct {
	profiles map[string]model.Profile
	locked   map[string]struct{}
	profErr  error
	lockErr  error

	profileCalls int
}

func (d *fakeDirectory) Profiles(_ context.Context, ids []string) (map[string]model.Profile, error) {
	if d.profErr != nil {
		return nil, d.profErr
	}
	d.profileCalls++
	out := make(map[string]model.Profile, len(ids))
	for _, id := range ids {
		if p, ok := d.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (d *fakeDirectory) LockedIDs(_ context.Context) (map[string]struct{}, error) {
	if d.lockErr != nil {
		return nil, d.lockErr
	}
	return d.locked, nil
}

// seededBoard builds n members user001..userN with strictly decreasing
// spark counts encoded through the real codec.
func seededBoard(t *testing.T, n int) *fakeBoard {
	t.Helper()
	end := time.Date(2023, time.November, 15, 23, 59, 59, 0, time.UTC)
	at := end.Add(-24 * time.Hour)
	members := make([]ranking.Member, 0, n)
	for i := 0; i < n; i++ {
		combined, err := score.EncodeCount(int64(10_000-i), at, end)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		members = append(members, ranking.Member{
			ID:       fmt.Sprintf("user%03d", i+1),
			Combined: combined,
		})
	}
	return &fakeBoard{members: members}
}

func TestAssemble(t *testing.T) {
	ctx := context.Background()

	Convey("Given a board with 111 ranked members and no frozen accounts", t, func() {
		board := seededBoard(t, 111)
		dir := &fakeDirectory{locked: map[string]struct{}{}}
		asm := ranking.New(board, dir)

		Convey("When the caller sits at unfiltered rank 111", func() {
			got, err := asm.Assemble(ctx, "regular_spark_202311_early", score.FamilyCount, "user111")
			So(err, ShouldBeNil)

			Convey("Then the top list is capped at 99 entries", func() {
				So(len(got.TopList), ShouldEqual, 99)
				So(got.TopList[0].Rank, ShouldEqual, 1)
				So(got.TopList[0].UserID, ShouldEqual, "user001")
				So(got.TopList[98].Rank, ShouldEqual, 99)
			})

			Convey("And the caller's own entry reports rank 111", func() {
				So(got.Myself, ShouldNotBeNil)
				So(got.Myself.Rank, ShouldEqual, 111)
				So(got.Myself.UserID, ShouldEqual, "user111")
				So(got.Myself.Score, ShouldEqual, 10_000-110)
			})
		})

		Convey("When the caller is in the displayed slice", func() {
			got, err := asm.Assemble(ctx, "regular_spark_202311_early", score.FamilyCount, "user042")
			So(err, ShouldBeNil)
			So(got.Myself, ShouldNotBeNil)
			So(got.Myself.Rank, ShouldEqual, 42)
			So(got.Myself.Score, ShouldEqual, 10_000-41)
		})

		Convey("When no caller is given", func() {
			got, err := asm.Assemble(ctx, "regular_spark_202311_early", score.FamilyCount, "")
			So(err, ShouldBeNil)
			So(got.Myself, ShouldBeNil)
			So(len(got.TopList), ShouldEqual, 99)
		})
	})

	Convey("Given frozen accounts inside the top window", t, func() {
		board := seededBoard(t, 60)
		dir := &fakeDirectory{
			locked: map[string]struct{}{
				"user010": {},
				"user030": {},
			},
		}
		asm := ranking.New(board, dir)

		got, err := asm.Assemble(ctx, "regular_spark_202311_early", score.FamilyCount, "")
		So(err, ShouldBeNil)

		Convey("Then frozen members never appear in the top list", func() {
			for _, e := range got.TopList {
				So(e.UserID, ShouldNotEqual, "user010")
				So(e.UserID, ShouldNotEqual, "user030")
			}
			So(len(got.TopList), ShouldEqual, 58)
		})

		Convey("And members below a frozen one shift up", func() {
			// user011 held unfiltered rank 11; with user010 removed it
			// displays at rank 10. user031 shifts up past both.
			So(got.TopList[9].UserID, ShouldEqual, "user011")
			So(got.TopList[9].Rank, ShouldEqual, 10)
			So(got.TopList[28].UserID, ShouldEqual, "user031")
			So(got.TopList[28].Rank, ShouldEqual, 29)
		})
	})

	Convey("Given a caller outside the top window with frozen users above", t, func() {
		board := seededBoard(t, 150)
		dir := &fakeDirectory{
			locked: map[string]struct{}{"user001": {}},
		}
		asm := ranking.New(board, dir)

		got, err := asm.Assemble(ctx, "regular_spark_202311_early", score.FamilyCount, "user140")
		So(err, ShouldBeNil)

		Convey("Then the fallback rank stays the unfiltered store rank", func() {
			// user140's displayed rank ignores the frozen user001 above
			// them; the approximation is intentional.
			So(got.Myself, ShouldNotBeNil)
			So(got.Myself.Rank, ShouldEqual, 140)
		})
	})

	Convey("Given a caller with no entry at all", t, func() {
		board := seededBoard(t, 10)
		dir := &fakeDirectory{locked: map[string]struct{}{}}
		asm := ranking.New(board, dir)

		got, err := asm.Assemble(ctx, "regular_spark_202311_early", score.FamilyCount, "stranger")
		So(err, ShouldBeNil)
		So(got.Myself, ShouldBeNil)
		So(len(got.TopList), ShouldEqual, 10)
	})

	Convey("Given a rate-family board", t, func() {
		end := time.Date(2023, time.November, 30, 23, 59, 59, 0, time.UTC)
		at := end.Add(-time.Hour)
		hi, err := score.EncodeRate(98.76, 200, at, end)
		So(err, ShouldBeNil)
		lo, err := score.EncodeRate(97.5, 50, at, end)
		So(err, ShouldBeNil)
		board := &fakeBoard{members: []ranking.Member{
			{ID: "ace", Combined: hi},
			{ID: "brim", Combined: lo},
		}}
		dir := &fakeDirectory{locked: map[string]struct{}{}}
		asm := ranking.New(board, dir)

		got, err := asm.Assemble(ctx, "regular_win_rate_202311_late", score.FamilyRate, "")
		So(err, ShouldBeNil)

		Convey("Then scores decode to two-decimal rates", func() {
			So(got.TopList[0].Score, ShouldEqual, 98.76)
			So(got.TopList[1].Score, ShouldEqual, 97.5)
		})
	})
}

func TestAssembleHydration(t *testing.T) {
	ctx := context.Background()

	Convey("Given profiles for the displayed members", t, func() {
		board := seededBoard(t, 130)
		dir := &fakeDirectory{
			locked: map[string]struct{}{},
			profiles: map[string]model.Profile{
				"user001": {UserID: "user001", Name: "Aiko", IconType: "animal", IconSubCategory: "fox", TitleSubCategory: "sparker", FrameSubCategory: "gold"},
				"user130": {UserID: "user130", Name: "Rex", IconType: "robot", IconSubCategory: "drone", TitleSubCategory: "crafter", FrameSubCategory: "silver"},
			},
		}
		asm := ranking.New(board, dir)

		got, err := asm.Assemble(ctx, "regular_spark_202311_early", score.FamilyCount, "user130")
		So(err, ShouldBeNil)

		Convey("Then display fields are attached where known", func() {
			So(got.TopList[0].Name, ShouldEqual, "Aiko")
			So(got.TopList[0].IconSubCategory, ShouldEqual, "fox")
			So(got.Myself.Name, ShouldEqual, "Rex")
			So(got.Myself.FrameSubCategory, ShouldEqual, "silver")
		})

		Convey("And unknown ids keep zero display fields", func() {
			So(got.TopList[1].Name, ShouldEqual, "")
		})

		Convey("And hydration used a single directory call", func() {
			So(dir.profileCalls, ShouldEqual, 1)
		})
	})
}

func TestAssembleCollaboratorFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	Convey("Given failing collaborators", t, func() {
		Convey("When the top range read fails", func() {
			board := seededBoard(t, 5)
			board.topErr = boom
			asm := ranking.New(board, &fakeDirectory{locked: map[string]struct{}{}})
			_, err := asm.Assemble(ctx, "k", score.FamilyCount, "")
			So(err, ShouldWrap, ranking.ErrCollaborator)
			So(err, ShouldWrap, boom)
		})

		Convey("When the locked-id fetch fails", func() {
			asm := ranking.New(seededBoard(t, 5), &fakeDirectory{lockErr: boom})
			_, err := asm.Assemble(ctx, "k", score.FamilyCount, "")
			So(err, ShouldWrap, ranking.ErrCollaborator)
		})

		Convey("When the profile hydration fails", func() {
			asm := ranking.New(seededBoard(t, 5), &fakeDirectory{locked: map[string]struct{}{}, profErr: boom})
			_, err := asm.Assemble(ctx, "k", score.FamilyCount, "")
			So(err, ShouldWrap, ranking.ErrCollaborator)
		})

		Convey("When the viewer fallback rank read fails", func() {
			board := seededBoard(t, 130)
			board.rankErr = boom
			asm := ranking.New(board, &fakeDirectory{locked: map[string]struct{}{}})
			_, err := asm.Assemble(ctx, "k", score.FamilyCount, "user130")
			So(err, ShouldWrap, ranking.ErrCollaborator)
		})
	})
}

func TestAssembleOptions(t *testing.T) {
	ctx := context.Background()

	Convey("Given custom display limits", t, func() {
		board := seededBoard(t, 40)
		asm := ranking.New(board, &fakeDirectory{locked: map[string]struct{}{}},
			ranking.WithTopListSize(10),
			ranking.WithFetchWindow(20),
		)

		got, err := asm.Assemble(ctx, "k", score.FamilyCount, "user015")
		So(err, ShouldBeNil)

		Convey("Then the list is capped at the configured size", func() {
			So(len(got.TopList), ShouldEqual, 10)
		})

		Convey("And a viewer inside the window but past the cap keeps their filtered rank", func() {
			So(got.Myself, ShouldNotBeNil)
			So(got.Myself.Rank, ShouldEqual, 15)
		})
	})
}
