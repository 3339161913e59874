package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/axatsa/Sadaka-bot/internal/models"
)

// Marathon lifecycle

// CreateMarathon starts a new marathon. Deactivating every existing marathon
// and inserting the new one happen in the same transaction, so at most one
// marathon is ever active. Users who already finished onboarding are enrolled
// immediately; everyone else joins when their onboarding completes.
func (r *Repository) CreateMarathon(ctx context.Context, goalAmount int64, startDate, endDate time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin create marathon")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE marathons SET is_active = 0 WHERE is_active = 1`); err != nil {
		return errors.Wrap(err, "deactivate marathons")
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO marathons (goal_amount, start_date, end_date, is_active, current_amount)
		VALUES (?, ?, ?, 1, 0)
	`, goalAmount, startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	if err != nil {
		return errors.Wrap(err, "insert marathon")
	}
	marathonID, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "marathon id")
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO marathon_participants (marathon_id, user_id)
		SELECT ?, user_id FROM users WHERE state = ?
		ON CONFLICT(marathon_id, user_id) DO NOTHING
	`, marathonID, models.StateInMarathon); err != nil {
		return errors.Wrap(err, "enroll existing users")
	}

	return errors.Wrap(tx.Commit(), "commit create marathon")
}

// ActiveMarathon returns the active marathon or nil when none is running.
func (r *Repository) ActiveMarathon(ctx context.Context) (*models.Marathon, error) {
	var (
		m          models.Marathon
		start, end string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, goal_amount, current_amount, start_date, end_date, is_active
		FROM marathons WHERE is_active = 1 LIMIT 1
	`).Scan(&m.ID, &m.GoalAmount, &m.CurrentAmount, &start, &end, &m.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get active marathon")
	}
	if m.StartDate, err = time.Parse(models.DateLayout, start); err != nil {
		return nil, errors.Wrap(err, "parse marathon start date")
	}
	if m.EndDate, err = time.Parse(models.DateLayout, end); err != nil {
		return nil, errors.Wrap(err, "parse marathon end date")
	}
	return &m, nil
}

// JoinMarathon links a user to a marathon. Joining twice is a no-op.
func (r *Repository) JoinMarathon(ctx context.Context, userID, marathonID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO marathon_participants (marathon_id, user_id)
		VALUES (?, ?)
		ON CONFLICT(marathon_id, user_id) DO NOTHING
	`, marathonID, userID)
	return errors.Wrap(err, "join marathon")
}

// Completion ledger

// MarkDayCompleted upserts the ledger entry for (user, marathon, day) as
// completed with the given amount and rewrites the marathon's cached total in
// the same transaction. Re-marking the same day replaces the amount, it never
// sums.
func (r *Repository) MarkDayCompleted(ctx context.Context, userID, marathonID int64, date time.Time, amount int64) error {
	return r.upsertCompletion(ctx, userID, marathonID, date, true, amount)
}

// MarkDayNotCompleted reverses a completion: the entry stays (the day still
// counts as acted on) but carries no amount.
func (r *Repository) MarkDayNotCompleted(ctx context.Context, userID, marathonID int64, date time.Time) error {
	return r.upsertCompletion(ctx, userID, marathonID, date, false, 0)
}

func (r *Repository) upsertCompletion(ctx context.Context, userID, marathonID int64, date time.Time, completed bool, amount int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin ledger write")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_completions (user_id, marathon_id, completion_date, is_completed, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, marathon_id, completion_date)
		DO UPDATE SET is_completed = excluded.is_completed, amount = excluded.amount
	`, userID, marathonID, date.Format(models.DateLayout), completed, amount); err != nil {
		return errors.Wrap(err, "upsert daily completion")
	}

	if err := recomputeTotal(ctx, tx, marathonID); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit ledger write")
}

// recomputeTotal rewrites the cached marathon total as the full sum of
// completed ledger amounts. Always derived, never incremented, so replays and
// edits converge to the correct value.
func recomputeTotal(ctx context.Context, tx *sql.Tx, marathonID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE marathons
		SET current_amount = (
			SELECT COALESCE(SUM(amount), 0)
			FROM daily_completions
			WHERE marathon_id = ? AND is_completed = 1
		)
		WHERE id = ?
	`, marathonID, marathonID)
	return errors.Wrap(err, "recompute marathon total")
}

// RecomputeTotal runs the aggregate recompute on its own and returns the new
// total. Ledger writes already do this in their transaction; this entry point
// exists to heal the cache after a restore or manual edit.
func (r *Repository) RecomputeTotal(ctx context.Context, marathonID int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin recompute")
	}
	defer tx.Rollback()

	if err := recomputeTotal(ctx, tx, marathonID); err != nil {
		return 0, err
	}
	var total int64
	if err := tx.QueryRowContext(ctx, `SELECT current_amount FROM marathons WHERE id = ?`, marathonID).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "read recomputed total")
	}
	return total, errors.Wrap(tx.Commit(), "commit recompute")
}

// Aggregates

// MarathonStats returns the campaign-wide aggregate. Percent is the floor of
// current/goal and 0 for a non-positive goal.
func (r *Repository) MarathonStats(ctx context.Context, marathonID int64) (models.MarathonStats, error) {
	var (
		stats models.MarathonStats
		goal  int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT goal_amount, current_amount FROM marathons WHERE id = ?
	`, marathonID).Scan(&goal, &stats.TotalCollected)
	if err == sql.ErrNoRows {
		return models.MarathonStats{}, nil
	}
	if err != nil {
		return models.MarathonStats{}, errors.Wrap(err, "get marathon")
	}

	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM marathon_participants WHERE marathon_id = ?
	`, marathonID).Scan(&stats.ParticipantsCount); err != nil {
		return models.MarathonStats{}, errors.Wrap(err, "count participants")
	}

	if goal > 0 {
		stats.Percent = int(stats.TotalCollected * 100 / goal)
	}
	return stats, nil
}

// UserMarathonStats aggregates one user's ledger rows for a marathon.
func (r *Repository) UserMarathonStats(ctx context.Context, userID, marathonID int64) (models.UserMarathonStats, error) {
	var stats models.UserMarathonStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN is_completed = 1 THEN amount ELSE 0 END), 0),
			COUNT(CASE WHEN is_completed = 1 THEN 1 END),
			COUNT(*)
		FROM daily_completions
		WHERE user_id = ? AND marathon_id = ?
	`, userID, marathonID).Scan(&stats.TotalContribution, &stats.CompletedDays, &stats.TotalDays)
	return stats, errors.Wrap(err, "user marathon stats")
}

// DailyGlobalStats sums completed entries for exactly one day.
func (r *Repository) DailyGlobalStats(ctx context.Context, marathonID int64, date time.Time) (models.DailyStats, error) {
	var stats models.DailyStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(DISTINCT user_id)
		FROM daily_completions
		WHERE marathon_id = ? AND completion_date = ? AND is_completed = 1
	`, marathonID, date.Format(models.DateLayout)).Scan(&stats.TotalAmount, &stats.ParticipantsCount)
	return stats, errors.Wrap(err, "daily global stats")
}

// TotalDonationsAmount sums completed amounts across all marathons.
func (r *Repository) TotalDonationsAmount(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM daily_completions WHERE is_completed = 1
	`).Scan(&total)
	return total, errors.Wrap(err, "total donations")
}

func (r *Repository) TotalMarathonsCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM marathons`).Scan(&n)
	return n, errors.Wrap(err, "count marathons")
}

// Ranking

// MarathonRanking returns the user's rank and contributed total. The rank is
// 1 plus the number of users whose summed completed amount strictly exceeds
// the caller's, so equal totals share a rank.
func (r *Repository) MarathonRanking(ctx context.Context, userID, marathonID int64) (int, int64, error) {
	var userTotal int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM daily_completions
		WHERE user_id = ? AND marathon_id = ? AND is_completed = 1
	`, userID, marathonID).Scan(&userTotal)
	if err != nil {
		return 0, 0, errors.Wrap(err, "user total")
	}

	var ahead int
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT SUM(amount) AS total
			FROM daily_completions
			WHERE marathon_id = ? AND is_completed = 1
			GROUP BY user_id
		) WHERE total > ?
	`, marathonID, userTotal).Scan(&ahead)
	if err != nil {
		return 0, 0, errors.Wrap(err, "count users ahead")
	}
	return ahead + 1, userTotal, nil
}

// Month grid

// MonthCompletions maps day-of-month to completion status for one user and
// month. Days without a ledger entry are absent from the map.
func (r *Repository) MonthCompletions(ctx context.Context, userID, marathonID int64, year int, month time.Month) (map[int]models.CompletionStatus, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	rows, err := r.db.QueryContext(ctx, `
		SELECT completion_date, is_completed
		FROM daily_completions
		WHERE user_id = ? AND marathon_id = ?
		AND completion_date >= ? AND completion_date <= ?
		ORDER BY completion_date
	`, userID, marathonID, first.Format(models.DateLayout), last.Format(models.DateLayout))
	if err != nil {
		return nil, errors.Wrap(err, "month completions")
	}
	defer rows.Close()

	completions := make(map[int]models.CompletionStatus)
	for rows.Next() {
		var (
			date      string
			completed bool
		)
		if err := rows.Scan(&date, &completed); err != nil {
			return nil, errors.Wrap(err, "scan completion")
		}
		parts := strings.Split(date, "-")
		if len(parts) != 3 {
			continue
		}
		day, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		if completed {
			completions[day] = models.StatusCompleted
		} else {
			completions[day] = models.StatusNotCompleted
		}
	}
	return completions, errors.Wrap(rows.Err(), "iterate completions")
}

// Notifier queries

// ActiveParticipants lists users joined to the given marathon.
func (r *Repository) ActiveParticipants(ctx context.Context, marathonID int64) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.user_id, u.username, u.first_name, u.display_name, u.language, u.is_anonymous, u.daily_plan, u.state
		FROM users u
		INNER JOIN marathon_participants mp ON u.user_id = mp.user_id
		WHERE mp.marathon_id = ?
	`, marathonID)
	if err != nil {
		return nil, errors.Wrap(err, "list participants")
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ParticipantsWithoutCompletion lists participants with no ledger entry for
// the given day, completed or not.
func (r *Repository) ParticipantsWithoutCompletion(ctx context.Context, marathonID int64, date time.Time) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT u.user_id, u.username, u.first_name, u.display_name, u.language, u.is_anonymous, u.daily_plan, u.state
		FROM users u
		INNER JOIN marathon_participants mp ON u.user_id = mp.user_id
		WHERE mp.marathon_id = ?
		AND u.user_id NOT IN (
			SELECT user_id FROM daily_completions
			WHERE marathon_id = ? AND completion_date = ?
		)
	`, marathonID, marathonID, date.Format(models.DateLayout))
	if err != nil {
		return nil, errors.Wrap(err, "list participants without completion")
	}
	defer rows.Close()
	return scanUsers(rows)
}
