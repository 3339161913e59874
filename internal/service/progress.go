package service

import (
	"math"
	"time"
)

// Progress projection is pure and recomputed on every display; nothing here
// is ever persisted, so there is no second source of truth to drift.

// DaysElapsed counts marathon days from startDate through today inclusive,
// capped at endDate. Zero before the marathon starts.
func DaysElapsed(startDate, endDate, today time.Time) int {
	start := truncateDay(startDate)
	end := truncateDay(endDate)
	day := truncateDay(today)
	if day.After(end) {
		day = end
	}
	if day.Before(start) {
		return 0
	}
	return int(day.Sub(start).Hours()/24) + 1
}

// PlanAdherencePercent relates the contributed total to what the daily plan
// projects over the elapsed days, rounded to one decimal. Zero when the plan
// is unset or no days have elapsed.
func PlanAdherencePercent(contribution, dailyPlan int64, daysElapsed int) float64 {
	expected := dailyPlan * int64(daysElapsed)
	if expected <= 0 {
		return 0
	}
	return round1(float64(contribution) / float64(expected) * 100)
}

// GoalContributionPercent relates the contributed total to the marathon
// goal, rounded to two decimals. Zero for a non-positive goal.
func GoalContributionPercent(contribution, goalAmount int64) float64 {
	if goalAmount <= 0 {
		return 0
	}
	return round2(float64(contribution) / float64(goalAmount) * 100)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
