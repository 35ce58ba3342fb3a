package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for user registry operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetAPIUsername returns the provisioning-API username recorded for a
	// Telegram user ID. Returns "" when the user is unknown or has not
	// completed registration.
	GetAPIUsername(ctx context.Context, userID int64) (string, error)

	// GetUserByID retrieves a user record by its surrogate row id.
	// Returns nil, nil if not found.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// UpsertUser inserts or updates the record for a Telegram user ID.
	// A nil field leaves the stored value untouched; a non-nil field
	// overwrites it. The merge runs as a single statement, so concurrent
	// upserts for the same user cannot interleave.
	UpsertUser(ctx context.Context, userID int64, username, firstName, lastName *string) error

	// ListUsers retrieves all user records ordered by row id ascending.
	ListUsers(ctx context.Context) ([]User, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetAPIUsername returns the provisioning-API username for a Telegram user ID.
func (s *sqlxStore) GetAPIUsername(ctx context.Context, userID int64) (string, error) {
	if userID == 0 {
		return "", fmt.Errorf("user_id cannot be zero")
	}

	var username sql.NullString
	err := s.db.GetContext(ctx, &username, `SELECT username FROM users WHERE user_id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No registry record for user", "user_id", userID)
		return "", nil

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting API username", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to get API username for user %d: %w", userID, err)
	}

	if !username.Valid {
		return "", nil
	}
	return username.String, nil
}

// GetUserByID retrieves a user record by its surrogate row id. Returns nil, nil if not found.
func (s *sqlxStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("id cannot be zero")
	}

	var user User
	query := `SELECT id, user_id, username, first_name, last_name FROM users WHERE id = ?`
	err := s.db.GetContext(ctx, &user, query, id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user record found", "id", id)
		return nil, nil

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user by id", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user record %d: %w", id, err)
	}

	return &user, nil
}

// UpsertUser inserts or updates the record for a Telegram user ID.
// COALESCE against the excluded row gives preserve-on-nil semantics per
// field in a single atomic statement.
func (s *sqlxStore) UpsertUser(ctx context.Context, userID int64, username, firstName, lastName *string) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	query := `
        INSERT INTO users (user_id, username, first_name, last_name)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            username = COALESCE(excluded.username, username),
            first_name = COALESCE(excluded.first_name, first_name),
            last_name = COALESCE(excluded.last_name, last_name);
    `

	_, err := s.db.ExecContext(ctx, query,
		userID, nullable(username), nullable(firstName), nullable(lastName))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", userID, "error", err)
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "User upserted successfully", "user_id", userID)
	return nil
}

// nullable maps a *string to a driver value, treating nil and empty strings
// as NULL so they never clobber a stored value.
func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// ListUsers retrieves all user records ordered by row id ascending.
func (s *sqlxStore) ListUsers(ctx context.Context) ([]User, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var users []User
	query := `SELECT id, user_id, username, first_name, last_name FROM users ORDER BY id ASC`

	err := s.db.SelectContext(ctx, &users, query)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched all users successfully", "count", len(users))
	return users, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
