package handlers

import (
	"testing"
	"time"

	"github.com/axatsa/Sadaka-bot/internal/models"
)

func TestCalendarTarget(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		data      string
		wantYear  int
		wantMonth time.Month
	}{
		{"calendar_current", 2026, time.August},
		{"calendar_nav_2026_7", 2026, time.July},
		{"calendar_nav_2025_12", 2025, time.December},
		{"calendar_nav_garbage", 2026, time.August},
		{"calendar_nav_2026_13", 2026, time.August},
	}
	for _, tt := range tests {
		year, month := calendarTarget(tt.data, now)
		if year != tt.wantYear || month != tt.wantMonth {
			t.Errorf("calendarTarget(%q) = %d %v, want %d %v",
				tt.data, year, month, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestMonthKeyboardLayout(t *testing.T) {
	grid := map[int]models.CompletionStatus{
		5: models.StatusCompleted,
		7: models.StatusNotCompleted,
	}
	keyboard := monthKeyboard("ru", 2026, time.August, grid)

	rows := keyboard.InlineKeyboard
	// Nav row, weekday row, six week rows, back row.
	if len(rows) != 9 {
		t.Fatalf("row count = %d, want 9", len(rows))
	}
	if len(rows[1]) != 7 {
		t.Errorf("weekday row has %d cells", len(rows[1]))
	}

	// August 2026 starts on a Saturday, so the first week row carries five
	// blanks before day 1.
	firstWeek := rows[2]
	for i := 0; i < 5; i++ {
		if firstWeek[i].Text != " " {
			t.Errorf("cell %d = %q, want blank", i, firstWeek[i].Text)
		}
	}
	if firstWeek[5].Text != "1" {
		t.Errorf("first day cell = %q, want 1", firstWeek[5].Text)
	}

	// Days 5 and 7 fall in the second week row (Aug 3 through Aug 9).
	secondWeek := rows[3]
	if secondWeek[2].Text != "✅" {
		t.Errorf("day 5 cell = %q, want check mark", secondWeek[2].Text)
	}
	if secondWeek[4].Text != "🚫" {
		t.Errorf("day 7 cell = %q, want prohibition mark", secondWeek[4].Text)
	}

	back := rows[len(rows)-1]
	if *back[0].CallbackData != "marathon_stats" {
		t.Errorf("back button data = %q", *back[0].CallbackData)
	}
}
