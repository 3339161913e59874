package validate

import (
	"strings"
	"testing"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"5000", 5000, false},
		{"10 000", 10000, false},
		{" 10 000 ", 10000, false},
		{"10000,50", 10000, false},
		{"10000.99", 10000, false},
		{"-500", -500, false},
		{"", 0, true},
		{"abc", 0, true},
		{"10k", 0, true},
	}
	for _, tt := range tests {
		got, err := Amount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Amount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("Amount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDailyPlan(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantKey string
	}{
		{"1000", 1000, ""},
		{"999", 0, "daily_plan_too_small"},
		{"2000000000", 0, "daily_plan_too_large"},
		{"abc", 0, "invalid_number"},
	}
	for _, tt := range tests {
		got, err := DailyPlan(tt.in)
		if tt.wantKey == "" {
			if err != nil {
				t.Errorf("DailyPlan(%q) unexpected error %v", tt.in, err)
			} else if got != tt.want {
				t.Errorf("DailyPlan(%q) = %d, want %d", tt.in, got, tt.want)
			}
			continue
		}
		ve, ok := err.(*Error)
		if !ok {
			t.Errorf("DailyPlan(%q) error = %v, want *Error", tt.in, err)
			continue
		}
		if ve.Key != tt.wantKey {
			t.Errorf("DailyPlan(%q) key = %q, want %q", tt.in, ve.Key, tt.wantKey)
		}
	}
}

func TestMarathonGoal(t *testing.T) {
	if _, err := MarathonGoal("9999"); err == nil {
		t.Error("goal below minimum accepted")
	}
	got, err := MarathonGoal("500 000")
	if err != nil {
		t.Fatalf("MarathonGoal: %v", err)
	}
	if got != 500_000 {
		t.Errorf("MarathonGoal = %d, want 500000", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantKey string
	}{
		{"Ali", "Ali", ""},
		{"  Ali  ", "Ali", ""},
		{"Зайнаб", "Зайнаб", ""},
		{"A", "", "name_too_short"},
		{strings.Repeat("a", 51), "", "name_too_long"},
		{"Ali<script>", "", "name_invalid_chars"},
		{`O"Connor`, "", "name_invalid_chars"},
	}
	for _, tt := range tests {
		got, err := DisplayName(tt.in)
		if tt.wantKey == "" {
			if err != nil {
				t.Errorf("DisplayName(%q) unexpected error %v", tt.in, err)
			} else if got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			continue
		}
		ve, ok := err.(*Error)
		if !ok || ve.Key != tt.wantKey {
			t.Errorf("DisplayName(%q) error = %v, want key %q", tt.in, err, tt.wantKey)
		}
	}
}

func TestDuaText(t *testing.T) {
	if _, err := DuaText("omin"); err == nil {
		t.Error("four-character dua accepted")
	}
	if _, err := DuaText(strings.Repeat("a", 501)); err == nil {
		t.Error("over-length dua accepted")
	}
	got, err := DuaText("  Barchaga tinchlik tilayman  ")
	if err != nil {
		t.Fatalf("DuaText: %v", err)
	}
	if got != "Barchaga tinchlik tilayman" {
		t.Errorf("DuaText trimmed = %q", got)
	}
}
