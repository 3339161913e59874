package validate

import (
	"strconv"
	"strings"
)

// Error is a user-input validation failure. Key is a locales text key, so
// the front end can surface the retry prompt in the user's language.
type Error struct {
	Key string
}

func (e *Error) Error() string { return "validation failed: " + e.Key }

// Bounds mirror the product rules: amounts are in so'm, names fit a Telegram
// message header, duas fit one message.
const (
	minDailyPlan    = 1_000
	maxDailyPlan    = 1_000_000_000
	minMarathonGoal = 10_000
	maxMarathonGoal = 10_000_000_000
	minNameLen      = 2
	maxNameLen      = 50
	minDuaLen       = 5
	maxDuaLen       = 500
)

// Amount parses a user-typed amount, tolerating thousands spaces and a comma
// decimal separator ("10 000", "10000,50"). Fractions are truncated.
func Amount(text string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	if clean == "" {
		return 0, &Error{Key: "invalid_number"}
	}
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, &Error{Key: "invalid_number"}
	}
	return int64(val), nil
}

// DailyPlan validates a daily sadaka plan entry.
func DailyPlan(text string) (int64, error) {
	amount, err := Amount(text)
	if err != nil {
		return 0, err
	}
	if amount < minDailyPlan {
		return 0, &Error{Key: "daily_plan_too_small"}
	}
	if amount > maxDailyPlan {
		return 0, &Error{Key: "daily_plan_too_large"}
	}
	return amount, nil
}

// MarathonGoal validates a marathon goal entry.
func MarathonGoal(text string) (int64, error) {
	amount, err := Amount(text)
	if err != nil {
		return 0, err
	}
	if amount < minMarathonGoal {
		return 0, &Error{Key: "marathon_goal_too_small"}
	}
	if amount > maxMarathonGoal {
		return 0, &Error{Key: "marathon_goal_too_large"}
	}
	return amount, nil
}

// DisplayName validates a display name or pseudonym and returns it trimmed.
func DisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < minNameLen {
		return "", &Error{Key: "name_too_short"}
	}
	if len([]rune(name)) > maxNameLen {
		return "", &Error{Key: "name_too_long"}
	}
	if strings.ContainsAny(name, `<>&"'`) {
		return "", &Error{Key: "name_invalid_chars"}
	}
	return name, nil
}

// DuaText validates a dua submission and returns it trimmed.
func DuaText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minDuaLen {
		return "", &Error{Key: "dua_too_short"}
	}
	if len([]rune(text)) > maxDuaLen {
		return "", &Error{Key: "dua_too_long"}
	}
	return text, nil
}
