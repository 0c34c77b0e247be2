package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	"github.com/pickemhq/pickem-backend/internal/domain/pick"
	"github.com/pickemhq/pickem-backend/internal/infrastructure/repository/memory"
)

func finalContest(id int64, homeScore, awayScore int) contest.Contest {
	return contest.Contest{
		ID:              id,
		ExternalID:      "final",
		HomeParticipant: contest.Participant{ID: "home"},
		AwayParticipant: contest.Participant{ID: "away"},
		ScheduledAt:     time.Date(2026, time.September, 6, 17, 0, 0, 0, time.UTC),
		Status:          contest.StatusFinal,
		HomeScore:       homeScore,
		AwayScore:       awayScore,
		Season:          2026,
		SeasonType:      SeasonTypeRegular,
		Week:            1,
	}
}

func seedPick(t *testing.T, repo *memory.PickRepository, userID string, groupID, contestID int64, side string, confidence int) {
	t.Helper()
	err := repo.ApplyBatch(context.Background(), pick.Batch{
		UserID: userID, GroupID: groupID,
		Season: 2026, SeasonType: SeasonTypeRegular, Week: 1,
		Upserts: []pick.Upsert{{
			ContestID:           contestID,
			PickedParticipantID: strPtr(side),
			Confidence:          intPtr(confidence),
		}},
	})
	if err != nil {
		t.Fatalf("seed pick: %v", err)
	}
}

// Home wins 24-10. The 7-confidence pick on home earns 7, the 4-confidence
// pick on away loses 4, and the first reconcile settles both members.
func TestReconcile_SettlesWholeGroup(t *testing.T) {
	ctx := context.Background()
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	groupID := memory.GroupIDSundayRegulars
	c := finalContest(10, 24, 10)

	seedPick(t, picks, "user-alice", groupID, c.ID, "home", 7)
	seedPick(t, picks, "user-bob", groupID, c.ID, "away", 4)

	svc := NewScoringService(picks, groups, memory.NewContestRepository(), nil)

	alicePicks, _ := picks.ListForUserWeek(ctx, "user-alice", groupID, 2026, SeasonTypeRegular, 1)
	scored, err := svc.Reconcile(ctx, groupID, []contest.Contest{c}, alicePicks)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if scored[0].Points == nil || *scored[0].Points != 7 {
		t.Fatalf("unexpected alice points: %+v", scored[0].Points)
	}
	if scored[0].Won == nil || !*scored[0].Won {
		t.Fatalf("alice should have won")
	}

	// Bob never viewed the week but his pick settled in the same pass.
	bobPicks, _ := picks.ListForUserWeek(ctx, "user-bob", groupID, 2026, SeasonTypeRegular, 1)
	if bobPicks[0].Points == nil || *bobPicks[0].Points != -4 {
		t.Fatalf("unexpected bob points: %+v", bobPicks[0].Points)
	}
	if bobPicks[0].Won == nil || *bobPicks[0].Won {
		t.Fatalf("bob should have lost")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	groupID := memory.GroupIDSundayRegulars
	c := finalContest(10, 24, 10)
	seedPick(t, picks, "user-alice", groupID, c.ID, "home", 7)

	svc := NewScoringService(picks, groups, memory.NewContestRepository(), nil)
	for i := 0; i < 2; i++ {
		stored, _ := picks.ListForUserWeek(ctx, "user-alice", groupID, 2026, SeasonTypeRegular, 1)
		if _, err := svc.Reconcile(ctx, groupID, []contest.Contest{c}, stored); err != nil {
			t.Fatalf("reconcile %d: %v", i, err)
		}
	}

	affected, err := picks.FinalizeScores(ctx, pick.ScoreUpdate{GroupID: groupID, ContestID: c.ID, WinningParticipantID: "home"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if affected != 0 {
		t.Fatalf("rescore touched %d picks, want 0", affected)
	}

	stored, _ := picks.ListForUserWeek(ctx, "user-alice", groupID, 2026, SeasonTypeRegular, 1)
	if *stored[0].Points != 7 {
		t.Fatalf("points drifted: %d", *stored[0].Points)
	}
}

func TestReconcile_TieStaysUnscored(t *testing.T) {
	ctx := context.Background()
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	groupID := memory.GroupIDSundayRegulars
	c := finalContest(10, 17, 17)
	seedPick(t, picks, "user-alice", groupID, c.ID, "home", 5)

	svc := NewScoringService(picks, groups, memory.NewContestRepository(), nil)
	stored, _ := picks.ListForUserWeek(ctx, "user-alice", groupID, 2026, SeasonTypeRegular, 1)
	scored, err := svc.Reconcile(ctx, groupID, []contest.Contest{c}, stored)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if scored[0].Won != nil || scored[0].Points != nil {
		t.Fatalf("tie must stay unscored: %+v", scored[0])
	}
}

func TestReconcile_SkipsUnfinishedContests(t *testing.T) {
	ctx := context.Background()
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	groupID := memory.GroupIDSundayRegulars
	c := finalContest(10, 14, 7)
	c.Status = contest.StatusInProgress
	seedPick(t, picks, "user-alice", groupID, c.ID, "home", 5)

	svc := NewScoringService(picks, groups, memory.NewContestRepository(), nil)
	stored, _ := picks.ListForUserWeek(ctx, "user-alice", groupID, 2026, SeasonTypeRegular, 1)
	scored, err := svc.Reconcile(ctx, groupID, []contest.Contest{c}, stored)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if scored[0].Scored() {
		t.Fatalf("in-progress contest must not score picks")
	}
}

func TestPersistFinalScores(t *testing.T) {
	ctx := context.Background()
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	groupID := memory.GroupIDSundayRegulars
	c := finalContest(10, 24, 10)
	seedPick(t, picks, "user-alice", groupID, c.ID, "home", 7)
	seedPick(t, picks, "user-bob", groupID, c.ID, "away", 4)

	svc := NewScoringService(picks, groups, memory.NewContestRepository(), nil)
	affected, err := svc.PersistFinalScores(ctx, groupID, c)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if affected != 2 {
		t.Fatalf("unexpected affected: got=%d want=2", affected)
	}

	live := c
	live.Status = contest.StatusInProgress
	if _, err := svc.PersistFinalScores(ctx, groupID, live); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-final contest, got %v", err)
	}
}

func TestScoreboard(t *testing.T) {
	ctx := context.Background()
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	groupID := memory.GroupIDSundayRegulars
	c := finalContest(10, 24, 10)

	seedPick(t, picks, "user-alice", groupID, c.ID, "home", 7)
	seedPick(t, picks, "user-bob", groupID, c.ID, "away", 4)

	svc := NewScoringService(picks, groups, memory.NewContestRepository(), nil)
	if _, err := svc.PersistFinalScores(ctx, groupID, c); err != nil {
		t.Fatalf("persist: %v", err)
	}

	rows, err := svc.Scoreboard(ctx, "user-alice", groupID, 2026, SeasonTypeRegular)
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected a row per member, got %d", len(rows))
	}
	if rows[0].UserID != "user-alice" || rows[0].TotalPoints != 7 || rows[0].CorrectPicks != 1 {
		t.Fatalf("unexpected leader: %+v", rows[0])
	}
	last := rows[len(rows)-1]
	if last.UserID != "user-bob" || last.TotalPoints != -4 {
		t.Fatalf("unexpected last place: %+v", last)
	}
	if rows[0].WeekPoints[1] != 7 {
		t.Fatalf("unexpected week points: %+v", rows[0].WeekPoints)
	}
}

// Nobody read the week after the contest went final, so the picks are still
// unscored when the scoreboard is requested. The scoreboard settles them
// itself instead of pretending the week never happened.
func TestScoreboard_SettlesFinalUnscoredPicks(t *testing.T) {
	ctx := context.Background()
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	contests := memory.NewContestRepository()
	groupID := memory.GroupIDSundayRegulars
	c := finalContest(10, 24, 10)
	if _, err := contests.Upsert(ctx, c); err != nil {
		t.Fatalf("seed contest: %v", err)
	}

	seedPick(t, picks, "user-alice", groupID, c.ID, "home", 7)
	seedPick(t, picks, "user-bob", groupID, c.ID, "away", 4)

	svc := NewScoringService(picks, groups, contests, nil)
	rows, err := svc.Scoreboard(ctx, "user-alice", groupID, 2026, SeasonTypeRegular)
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	if rows[0].UserID != "user-alice" || rows[0].TotalPoints != 7 || rows[0].WeekPoints[1] != 7 {
		t.Fatalf("unsettled final pick missing from totals: %+v", rows[0])
	}
	last := rows[len(rows)-1]
	if last.UserID != "user-bob" || last.TotalPoints != -4 {
		t.Fatalf("unsettled final pick missing from totals: %+v", last)
	}

	// Settlement also persisted, not just aggregated in memory.
	stored, _ := picks.ListForUserWeek(ctx, "user-alice", groupID, 2026, SeasonTypeRegular, 1)
	if stored[0].Points == nil || *stored[0].Points != 7 {
		t.Fatalf("scoreboard did not persist the settled score: %+v", stored[0].Points)
	}
}

func TestScoreboard_NotAMember(t *testing.T) {
	picks := memory.NewPickRepository()
	groups := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	svc := NewScoringService(picks, groups, memory.NewContestRepository(), nil)

	if _, err := svc.Scoreboard(context.Background(), "user-stranger", memory.GroupIDSundayRegulars, 2026, SeasonTypeRegular); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}
