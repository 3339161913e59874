package service

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDaysElapsed(t *testing.T) {
	start := day("2026-08-01")
	end := day("2026-08-30")

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"before start", day("2026-07-31"), 0},
		{"first day counts", day("2026-08-01"), 1},
		{"mid marathon", day("2026-08-10"), 10},
		{"last day", day("2026-08-30"), 30},
		{"capped after end", day("2026-09-15"), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysElapsed(start, end, tt.today); got != tt.want {
				t.Errorf("DaysElapsed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPlanAdherencePercent(t *testing.T) {
	tests := []struct {
		name         string
		contribution int64
		plan         int64
		days         int
		want         float64
	}{
		{"under plan", 8000, 1000, 10, 80},
		{"exactly on plan", 10000, 1000, 10, 100},
		{"over plan", 15000, 1000, 10, 150},
		{"rounded to one decimal", 1000, 3000, 1, 33.3},
		{"no plan set", 8000, 0, 10, 0},
		{"no days elapsed", 8000, 1000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlanAdherencePercent(tt.contribution, tt.plan, tt.days); got != tt.want {
				t.Errorf("PlanAdherencePercent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoalContributionPercent(t *testing.T) {
	tests := []struct {
		name         string
		contribution int64
		goal         int64
		want         float64
	}{
		{"simple share", 30000, 100000, 30},
		{"rounded to two decimals", 8000, 300000, 2.67},
		{"zero goal", 30000, 0, 0},
		{"zero contribution", 0, 100000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoalContributionPercent(tt.contribution, tt.goal); got != tt.want {
				t.Errorf("GoalContributionPercent = %v, want %v", got, tt.want)
			}
		})
	}
}
