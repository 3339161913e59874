package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/axatsa/Sadaka-bot/internal/models"
)

// CurrentJumaWeek derives the weekly quota period for the given moment: the
// ISO year and week of the next occurring Friday, Friday itself included.
// Monday counts as weekday 0, so the offset to Friday is (4 - weekday) mod 7.
// The value is stable for every call within the same week and advances on
// Saturday.
func CurrentJumaWeek(now time.Time) string {
	weekday := (int(now.Weekday()) + 6) % 7 // Monday = 0
	offset := ((4 - weekday) % 7 + 7) % 7
	friday := now.AddDate(0, 0, offset)
	year, week := friday.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// CountUserDuas counts one user's duas within the given juma week.
func (r *Repository) CountUserDuas(ctx context.Context, userID int64, jumaWeek string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM duas WHERE user_id = ? AND juma_week = ?
	`, userID, jumaWeek).Scan(&n)
	return n, errors.Wrap(err, "count user duas")
}

// CountTotalDuas counts all duas within the given juma week.
func (r *Repository) CountTotalDuas(ctx context.Context, jumaWeek string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM duas WHERE juma_week = ?
	`, jumaWeek).Scan(&n)
	return n, errors.Wrap(err, "count total duas")
}

// AddDua appends a dua for the given juma week. Both quota limits are
// re-checked inside the insert transaction: the front end runs the same
// checks before prompting for text, but two submissions racing past that
// check must not both slip under the cap. With the counts and the insert in
// one transaction exactly totalLimit rows ever commit per period.
func (r *Repository) AddDua(ctx context.Context, userID int64, text, senderName string, anonymous bool, jumaWeek string, perUserLimit, totalLimit int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin add dua")
	}
	defer tx.Rollback()

	var userCount int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM duas WHERE user_id = ? AND juma_week = ?
	`, userID, jumaWeek).Scan(&userCount); err != nil {
		return errors.Wrap(err, "recount user duas")
	}
	if userCount >= perUserLimit {
		return &models.QuotaError{Reason: models.QuotaUser}
	}

	var totalCount int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM duas WHERE juma_week = ?
	`, jumaWeek).Scan(&totalCount); err != nil {
		return errors.Wrap(err, "recount total duas")
	}
	if totalCount >= totalLimit {
		return &models.QuotaError{Reason: models.QuotaTotal}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO duas (user_id, text, sender_name, is_anonymous, juma_week)
		VALUES (?, ?, ?, ?, ?)
	`, userID, text, senderName, anonymous, jumaWeek); err != nil {
		return errors.Wrap(err, "insert dua")
	}
	return errors.Wrap(tx.Commit(), "commit add dua")
}

// TotalDuasCount counts every dua ever submitted, for the admin overview.
func (r *Repository) TotalDuasCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM duas`).Scan(&n)
	return n, errors.Wrap(err, "count duas")
}
