package repository

import (
	"context"
	"testing"
	"time"

	"github.com/axatsa/Sadaka-bot/internal/models"
)

func TestCurrentJumaWeek(t *testing.T) {
	// 2026-08-28 is a Friday.
	tests := []struct {
		name string
		now  string
		want string
	}{
		{"monday maps to upcoming friday", "2026-08-24", "2026-35"},
		{"thursday maps to next day", "2026-08-27", "2026-35"},
		{"friday still belongs to its own week", "2026-08-28", "2026-35"},
		{"saturday rolls to the next friday", "2026-08-29", "2026-36"},
		{"sunday rolls to the next friday", "2026-08-30", "2026-36"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(models.DateLayout, tt.now)
			if err != nil {
				t.Fatal(err)
			}
			if got := CurrentJumaWeek(now); got != tt.want {
				t.Errorf("CurrentJumaWeek(%s) = %q, want %q", tt.now, got, tt.want)
			}
		})
	}
}

func TestCurrentJumaWeekStableWithinWeek(t *testing.T) {
	// Saturday through the following Friday all share one period.
	start, _ := time.Parse(models.DateLayout, "2026-08-29")
	want := CurrentJumaWeek(start)
	for i := 1; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		if got := CurrentJumaWeek(day); got != want {
			t.Errorf("CurrentJumaWeek(%s) = %q, want %q", day.Format(models.DateLayout), got, want)
		}
	}
}

func TestAddDuaPerUserLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, 1, "", "Ali"); err != nil {
		t.Fatal(err)
	}

	week := "2026-35"
	for i := 0; i < 2; i++ {
		if err := repo.AddDua(ctx, 1, "Barchaga salomatlik tilayman", "Ali", false, week, 2, 20); err != nil {
			t.Fatalf("dua %d: %v", i+1, err)
		}
	}

	err := repo.AddDua(ctx, 1, "Yana bitta duo", "Ali", false, week, 2, 20)
	qe, ok := models.AsQuotaError(err)
	if !ok {
		t.Fatalf("expected quota error, got %v", err)
	}
	if qe.Reason != models.QuotaUser {
		t.Errorf("reason = %q, want %q", qe.Reason, models.QuotaUser)
	}

	n, err := repo.CountUserDuas(ctx, 1, week)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("user duas = %d, want 2", n)
	}
}

func TestAddDuaTotalLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	week := "2026-35"
	for i := int64(1); i <= 3; i++ {
		if err := repo.CreateUser(ctx, i, "", "User"); err != nil {
			t.Fatal(err)
		}
		if err := repo.AddDua(ctx, i, "Omonlik va baraka tilayman", "User", false, week, 2, 3); err != nil {
			t.Fatalf("dua from user %d: %v", i, err)
		}
	}

	if err := repo.CreateUser(ctx, 4, "", "Late"); err != nil {
		t.Fatal(err)
	}
	err := repo.AddDua(ctx, 4, "Kechikkan duo", "Late", false, week, 2, 3)
	qe, ok := models.AsQuotaError(err)
	if !ok {
		t.Fatalf("expected quota error, got %v", err)
	}
	if qe.Reason != models.QuotaTotal {
		t.Errorf("reason = %q, want %q", qe.Reason, models.QuotaTotal)
	}

	n, err := repo.CountTotalDuas(ctx, week)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("total duas = %d, want 3", n)
	}
}

func TestDuaQuotaResetsNextWeek(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, 1, "", "Ali"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := repo.AddDua(ctx, 1, "Shifo va ofiyat tilayman", "Ali", false, "2026-35", 2, 20); err != nil {
			t.Fatal(err)
		}
	}

	// The next period starts with a clean slate.
	if err := repo.AddDua(ctx, 1, "Yangi haftadagi duo", "Ali", false, "2026-36", 2, 20); err != nil {
		t.Fatalf("dua in new week: %v", err)
	}

	n, err := repo.CountUserDuas(ctx, 1, "2026-36")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("new week user duas = %d, want 1", n)
	}
}
