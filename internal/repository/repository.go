package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/axatsa/Sadaka-bot/internal/models"
)

// Repository is the single data-access layer over the sqlite store. All
// mutating operations that touch the ledger run inside one transaction
// together with the marathon total recompute, so readers never observe the
// ledger and the cached total out of sync.
type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open opens the sqlite database at path. The pool is capped at a single
// connection: sqlite allows one writer at a time, and funneling every
// handler through one connection serializes transactions at the store level
// instead of surfacing SQLITE_BUSY to callers.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// InitSchema creates all tables. Uniqueness invariants (one ledger entry per
// user/marathon/day, one participation per user/marathon) are enforced here
// by the store, not by application checks.
func (r *Repository) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			username TEXT DEFAULT '',
			first_name TEXT DEFAULT '',
			display_name TEXT DEFAULT '',
			language TEXT DEFAULT 'uz_latin',
			is_anonymous INTEGER DEFAULT 0,
			daily_plan INTEGER DEFAULT 0,
			state TEXT DEFAULT 'NEW',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS marathons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			goal_amount INTEGER NOT NULL,
			current_amount INTEGER DEFAULT 0,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			is_active INTEGER DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS marathon_participants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			marathon_id INTEGER NOT NULL REFERENCES marathons(id),
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(marathon_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			marathon_id INTEGER NOT NULL REFERENCES marathons(id),
			completion_date TEXT NOT NULL,
			is_completed INTEGER DEFAULT 0,
			amount INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, marathon_id, completion_date)
		)`,
		`CREATE TABLE IF NOT EXISTS duas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			text TEXT NOT NULL,
			sender_name TEXT NOT NULL,
			is_anonymous INTEGER DEFAULT 0,
			juma_week TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}

// User methods

// GetUser returns the user or nil when unknown.
func (r *Repository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, first_name, display_name, language, is_anonymous, daily_plan, state
		FROM users WHERE user_id = ?
	`, userID).Scan(&user.ID, &user.Username, &user.FirstName, &user.DisplayName,
		&user.Language, &user.IsAnonymous, &user.DailyPlan, &user.State)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

// CreateUser registers a user on first contact. Re-registering is a no-op.
func (r *Repository) CreateUser(ctx context.Context, userID int64, username, firstName string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, username, first_name)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, username, firstName)
	return errors.Wrap(err, "create user")
}

func (r *Repository) UpdateUserLanguage(ctx context.Context, userID int64, language string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET language = ? WHERE user_id = ?`, language, userID)
	return errors.Wrap(err, "update user language")
}

func (r *Repository) UpdateUserState(ctx context.Context, userID int64, state string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET state = ? WHERE user_id = ?`, state, userID)
	return errors.Wrap(err, "update user state")
}

func (r *Repository) UpdateUserDailyPlan(ctx context.Context, userID int64, dailyPlan int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET daily_plan = ? WHERE user_id = ?`, dailyPlan, userID)
	return errors.Wrap(err, "update user daily plan")
}

func (r *Repository) UpdateUserDisplayName(ctx context.Context, userID int64, displayName string, anonymous bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET display_name = ?, is_anonymous = ? WHERE user_id = ?
	`, displayName, anonymous, userID)
	return errors.Wrap(err, "update user display name")
}

// AllUsers lists every known user, for broadcasts and reminders.
func (r *Repository) AllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, username, first_name, display_name, language, is_anonymous, daily_plan, state
		FROM users
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *Repository) TotalUsersCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, errors.Wrap(err, "count users")
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.FirstName, &user.DisplayName,
			&user.Language, &user.IsAnonymous, &user.DailyPlan, &user.State); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, user)
	}
	return users, errors.Wrap(rows.Err(), "iterate users")
}
