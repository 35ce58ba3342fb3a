package database

import (
	"database/sql"
	"strings"
)

// User represents one registered chat identity. UserID is the Telegram user
// identifier and the natural key for all lookups; ID is the surrogate row id
// assigned on first insert. Username is the handle under which the user is
// registered with the provisioning API and stays NULL until registration
// completes.
type User struct {
	ID     int64 `db:"id"`
	UserID int64 `db:"user_id"`

	Username  sql.NullString `db:"username"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
}

// DisplayName merges the first and last name into a single display string.
// Returns an empty string when neither is set.
func (u *User) DisplayName() string {
	parts := make([]string, 0, 2)
	if u.FirstName.Valid && u.FirstName.String != "" {
		parts = append(parts, u.FirstName.String)
	}
	if u.LastName.Valid && u.LastName.String != "" {
		parts = append(parts, u.LastName.String)
	}
	return strings.Join(parts, " ")
}
