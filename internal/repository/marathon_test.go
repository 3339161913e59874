package repository

import (
	"context"
	"testing"
	"time"

	"github.com/axatsa/Sadaka-bot/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// startMarathon creates an active marathon and returns it.
func startMarathon(t *testing.T, repo *Repository, goal int64) *models.Marathon {
	t.Helper()
	ctx := context.Background()
	if err := repo.CreateMarathon(ctx, goal, date("2026-08-01"), date("2026-08-31")); err != nil {
		t.Fatalf("create marathon: %v", err)
	}
	m, err := repo.ActiveMarathon(ctx)
	if err != nil {
		t.Fatalf("active marathon: %v", err)
	}
	if m == nil {
		t.Fatal("no active marathon after creation")
	}
	return m
}

func addParticipant(t *testing.T, repo *Repository, userID, marathonID int64) {
	t.Helper()
	ctx := context.Background()
	if err := repo.CreateUser(ctx, userID, "", "User"); err != nil {
		t.Fatalf("create user %d: %v", userID, err)
	}
	if err := repo.JoinMarathon(ctx, userID, marathonID); err != nil {
		t.Fatalf("join marathon: %v", err)
	}
}

func TestActiveMarathonNone(t *testing.T) {
	repo := newTestRepo(t)

	m, err := repo.ActiveMarathon(context.Background())
	if err != nil {
		t.Fatalf("active marathon: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil, got %+v", m)
	}
}

func TestCreateMarathonDeactivatesPrevious(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := startMarathon(t, repo, 100_000)
	second := startMarathon(t, repo, 200_000)

	if second.ID == first.ID {
		t.Fatal("second marathon reused the first id")
	}
	if second.GoalAmount != 200_000 {
		t.Errorf("active goal = %d, want 200000", second.GoalAmount)
	}

	n, err := repo.TotalMarathonsCount(ctx)
	if err != nil {
		t.Fatalf("count marathons: %v", err)
	}
	if n != 2 {
		t.Errorf("TotalMarathonsCount = %d, want 2", n)
	}
}

func TestCreateMarathonEnrollsOnboardedUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, 1, "", "Ready"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateUserState(ctx, 1, models.StateInMarathon); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateUser(ctx, 2, "", "StillNew"); err != nil {
		t.Fatal(err)
	}

	m := startMarathon(t, repo, 100_000)

	participants, err := repo.ActiveParticipants(ctx, m.ID)
	if err != nil {
		t.Fatalf("active participants: %v", err)
	}
	if len(participants) != 1 || participants[0].ID != 1 {
		t.Errorf("enrolled participants = %+v, want only user 1", participants)
	}
}

func TestJoinMarathonIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, m.ID)
	if err := repo.JoinMarathon(ctx, 1, m.ID); err != nil {
		t.Fatalf("second join: %v", err)
	}

	stats, err := repo.MarathonStats(ctx, m.ID)
	if err != nil {
		t.Fatalf("marathon stats: %v", err)
	}
	if stats.ParticipantsCount != 1 {
		t.Errorf("participants = %d, want 1", stats.ParticipantsCount)
	}
}

func TestMarkDayCompletedReplacesAmount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, m.ID)
	day := date("2026-08-10")

	if err := repo.MarkDayCompleted(ctx, 1, m.ID, day, 5000); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := repo.MarkDayCompleted(ctx, 1, m.ID, day, 5000); err != nil {
		t.Fatalf("repeat mark: %v", err)
	}

	stats, err := repo.MarathonStats(ctx, m.ID)
	if err != nil {
		t.Fatalf("marathon stats: %v", err)
	}
	if stats.TotalCollected != 5000 {
		t.Errorf("total after duplicate mark = %d, want 5000", stats.TotalCollected)
	}

	// A new amount for the same day replaces the old one.
	if err := repo.MarkDayCompleted(ctx, 1, m.ID, day, 7000); err != nil {
		t.Fatalf("edit mark: %v", err)
	}
	stats, err = repo.MarathonStats(ctx, m.ID)
	if err != nil {
		t.Fatalf("marathon stats: %v", err)
	}
	if stats.TotalCollected != 7000 {
		t.Errorf("total after edit = %d, want 7000", stats.TotalCollected)
	}
}

func TestLedgerTotalsAndUndo(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, m.ID)
	addParticipant(t, repo, 2, m.ID)
	day := date("2026-08-10")

	if err := repo.MarkDayCompleted(ctx, 1, m.ID, day, 30_000); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkDayCompleted(ctx, 2, m.ID, day, 20_000); err != nil {
		t.Fatal(err)
	}

	stats, err := repo.MarathonStats(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCollected != 50_000 {
		t.Errorf("total = %d, want 50000", stats.TotalCollected)
	}
	if stats.Percent != 50 {
		t.Errorf("percent = %d, want 50", stats.Percent)
	}

	if err := repo.MarkDayNotCompleted(ctx, 1, m.ID, day); err != nil {
		t.Fatalf("undo: %v", err)
	}

	stats, err = repo.MarathonStats(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCollected != 20_000 {
		t.Errorf("total after undo = %d, want 20000", stats.TotalCollected)
	}
	if stats.Percent != 20 {
		t.Errorf("percent after undo = %d, want 20", stats.Percent)
	}

	// The reversed day still counts as acted on.
	userStats, err := repo.UserMarathonStats(ctx, 1, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if userStats.TotalContribution != 0 || userStats.CompletedDays != 0 || userStats.TotalDays != 1 {
		t.Errorf("user stats after undo = %+v", userStats)
	}
}

func TestRecomputeTotalHealsCache(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, m.ID)
	if err := repo.MarkDayCompleted(ctx, 1, m.ID, date("2026-08-10"), 30_000); err != nil {
		t.Fatal(err)
	}

	// Corrupt the cache out of band.
	if _, err := repo.db.ExecContext(ctx, `UPDATE marathons SET current_amount = 999 WHERE id = ?`, m.ID); err != nil {
		t.Fatal(err)
	}

	total, err := repo.RecomputeTotal(ctx, m.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if total != 30_000 {
		t.Errorf("recomputed total = %d, want 30000", total)
	}
}

func TestMarathonRankingSharesTies(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	day := date("2026-08-10")
	for userID, amount := range map[int64]int64{1: 100, 2: 100, 3: 50} {
		addParticipant(t, repo, userID, m.ID)
		if err := repo.MarkDayCompleted(ctx, userID, m.ID, day, amount); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		userID    int64
		wantRank  int
		wantTotal int64
	}{
		{1, 1, 100},
		{2, 1, 100},
		{3, 3, 50},
	}
	for _, tt := range tests {
		rank, total, err := repo.MarathonRanking(ctx, tt.userID, m.ID)
		if err != nil {
			t.Fatalf("ranking user %d: %v", tt.userID, err)
		}
		if rank != tt.wantRank || total != tt.wantTotal {
			t.Errorf("user %d: rank=%d total=%d, want rank=%d total=%d",
				tt.userID, rank, total, tt.wantRank, tt.wantTotal)
		}
	}
}

func TestDailyGlobalStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, m.ID)
	addParticipant(t, repo, 2, m.ID)

	today := date("2026-08-10")
	yesterday := date("2026-08-09")
	if err := repo.MarkDayCompleted(ctx, 1, m.ID, today, 3000); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkDayCompleted(ctx, 2, m.ID, today, 2000); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkDayCompleted(ctx, 1, m.ID, yesterday, 9000); err != nil {
		t.Fatal(err)
	}

	stats, err := repo.DailyGlobalStats(ctx, m.ID, today)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalAmount != 5000 {
		t.Errorf("day total = %d, want 5000", stats.TotalAmount)
	}
	if stats.ParticipantsCount != 2 {
		t.Errorf("day participants = %d, want 2", stats.ParticipantsCount)
	}
}

func TestMonthCompletions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, m.ID)

	if err := repo.MarkDayCompleted(ctx, 1, m.ID, date("2026-08-05"), 1000); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkDayNotCompleted(ctx, 1, m.ID, date("2026-08-07")); err != nil {
		t.Fatal(err)
	}
	// A different month must not leak into the grid.
	if err := repo.MarkDayCompleted(ctx, 1, m.ID, date("2026-07-05"), 1000); err != nil {
		t.Fatal(err)
	}

	grid, err := repo.MonthCompletions(ctx, 1, m.ID, 2026, time.August)
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 2 {
		t.Fatalf("grid size = %d, want 2 (%v)", len(grid), grid)
	}
	if grid[5] != models.StatusCompleted {
		t.Errorf("day 5 = %q, want completed", grid[5])
	}
	if grid[7] != models.StatusNotCompleted {
		t.Errorf("day 7 = %q, want not_completed", grid[7])
	}
}

func TestParticipantsWithoutCompletion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, m.ID)
	addParticipant(t, repo, 2, m.ID)
	addParticipant(t, repo, 3, m.ID)
	day := date("2026-08-10")

	if err := repo.MarkDayCompleted(ctx, 1, m.ID, day, 1000); err != nil {
		t.Fatal(err)
	}
	// Declining still counts as having reported the day.
	if err := repo.MarkDayNotCompleted(ctx, 2, m.ID, day); err != nil {
		t.Fatal(err)
	}

	missing, err := repo.ParticipantsWithoutCompletion(ctx, m.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 || missing[0].ID != 3 {
		t.Errorf("missing = %+v, want only user 3", missing)
	}
}

func TestTotalDonationsAcrossMarathons(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := startMarathon(t, repo, 100_000)
	addParticipant(t, repo, 1, first.ID)
	if err := repo.MarkDayCompleted(ctx, 1, first.ID, date("2026-07-10"), 10_000); err != nil {
		t.Fatal(err)
	}

	second := startMarathon(t, repo, 100_000)
	if err := repo.JoinMarathon(ctx, 1, second.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkDayCompleted(ctx, 1, second.ID, date("2026-08-10"), 5000); err != nil {
		t.Fatal(err)
	}

	total, err := repo.TotalDonationsAmount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 15_000 {
		t.Errorf("total donations = %d, want 15000", total)
	}
}
