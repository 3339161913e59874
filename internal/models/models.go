package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used everywhere a day is stored or
// compared. Ledger keys, marathon boundaries and month grids all use it.
const DateLayout = "2006-01-02"

// User states as persisted in the users table.
const (
	StateNew        = "NEW"
	StateOnboarding = "ONBOARDING"
	StateInMarathon = "IN_MARATHON"
)

// User represents a bot user.
type User struct {
	ID          int64  // Telegram ID, primary key
	Username    string // @nickname, may be empty
	FirstName   string
	DisplayName string // name shown in duas; pseudonym when anonymous
	Language    string // uz_latin / uz_cyrillic / ru
	IsAnonymous bool
	DailyPlan   int64 // planned daily sadaka amount, 0 when unset
	State       string
}

// Marathon is a time-boxed shared fundraising goal. At most one marathon is
// active at any time; CurrentAmount is a cache of the summed completed ledger
// entries and is rewritten on every ledger mutation, never incremented.
type Marathon struct {
	ID            int64
	GoalAmount    int64
	CurrentAmount int64
	StartDate     time.Time
	EndDate       time.Time // inclusive
	IsActive      bool
}

// DailyCompletion is one user's attendance record for one marathon day.
// Unique per (user, marathon, day); a later write replaces the earlier one.
// Amount is meaningful only when IsCompleted is true, otherwise it is 0.
type DailyCompletion struct {
	UserID      int64
	MarathonID  int64
	Date        time.Time
	IsCompleted bool
	Amount      int64
}

// CompletionStatus is the per-day value exposed by the month grid.
type CompletionStatus string

const (
	StatusCompleted    CompletionStatus = "completed"
	StatusNotCompleted CompletionStatus = "not_completed"
)

// Dua is a short text submission counted against the weekly quota.
// Immutable once created.
type Dua struct {
	ID          int64
	UserID      int64
	Text        string
	SenderName  string
	IsAnonymous bool
	JumaWeek    string
}

// MarathonStats is the campaign-wide aggregate.
type MarathonStats struct {
	TotalCollected    int64
	ParticipantsCount int
	Percent           int // floor(current/goal*100), 0 when goal <= 0
}

// UserMarathonStats is one user's aggregate over a marathon.
// TotalDays counts every day the user took any action on, completed or not.
type UserMarathonStats struct {
	TotalContribution int64
	CompletedDays     int
	TotalDays         int
}

// DailyStats is the aggregate of completed entries for a single day.
type DailyStats struct {
	TotalAmount       int64
	ParticipantsCount int
}

// ErrNoActiveMarathon is returned when an operation needs a running marathon
// and there is none. Expected condition, not a fault.
var ErrNoActiveMarathon = errors.New("no active marathon")

// QuotaReason identifies which dua limit was hit.
type QuotaReason string

const (
	QuotaUser  QuotaReason = "user_limit"
	QuotaTotal QuotaReason = "total_limit"
)

// QuotaError reports a rejected dua submission. Expected business condition.
type QuotaError struct {
	Reason QuotaReason
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("dua quota exceeded: %s", e.Reason)
}

// AsQuotaError unwraps err into a *QuotaError if it is one.
func AsQuotaError(err error) (*QuotaError, bool) {
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
