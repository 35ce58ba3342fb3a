package database_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dkomnin/vpnbot/internal/database"
)

// seedLegacyDB creates a database file with a legacy-shape users table and
// some pre-existing rows, then closes it.
func seedLegacyDB(t *testing.T, schema string, inserts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	for _, stmt := range inserts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed legacy row: %v", err)
		}
	}
	return path
}

func TestNewDBMigratesTableWithoutDisplayNames(t *testing.T) {
	t.Parallel()

	path := seedLegacyDB(t,
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER UNIQUE NOT NULL,
			username TEXT
		)`,
		`INSERT INTO users (user_id, username) VALUES (11, 'anna')`,
		`INSERT INTO users (user_id, username) VALUES (12, NULL)`,
	)

	db, err := database.NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer database.CloseDB(db)

	var users []database.User
	if err := db.Select(&users, `SELECT id, user_id, username, first_name, last_name FROM users ORDER BY id`); err != nil {
		t.Fatalf("select after migration: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("got %d rows, want 2 preserved", len(users))
	}
	if users[0].UserID != 11 || users[0].Username.String != "anna" {
		t.Errorf("row 0 corrupted: %+v", users[0])
	}
	if users[0].FirstName.Valid || users[0].LastName.Valid {
		t.Errorf("new display-name columns should be NULL, got %+v", users[0])
	}
	if users[1].UserID != 12 || users[1].Username.Valid {
		t.Errorf("row 1 corrupted: %+v", users[1])
	}
}

func TestNewDBMigratesTableWithoutSurrogateID(t *testing.T) {
	t.Parallel()

	path := seedLegacyDB(t,
		`CREATE TABLE users (
			user_id INTEGER UNIQUE NOT NULL,
			username TEXT,
			first_name TEXT,
			last_name TEXT
		)`,
		`INSERT INTO users (user_id, username, first_name, last_name) VALUES (21, 'ben', 'Ben', NULL)`,
		`INSERT INTO users (user_id, username, first_name, last_name) VALUES (22, NULL, NULL, 'Stone')`,
	)

	db, err := database.NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer database.CloseDB(db)

	var users []database.User
	if err := db.Select(&users, `SELECT id, user_id, username, first_name, last_name FROM users ORDER BY id`); err != nil {
		t.Fatalf("select after migration: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("got %d rows, want 2 preserved", len(users))
	}
	if users[0].ID == 0 || users[1].ID == 0 {
		t.Errorf("surrogate ids not assigned: %+v", users)
	}
	if users[0].UserID != 21 || users[0].Username.String != "ben" || users[0].FirstName.String != "Ben" {
		t.Errorf("row 0 corrupted: %+v", users[0])
	}
	if users[1].UserID != 22 || users[1].LastName.String != "Stone" {
		t.Errorf("row 1 corrupted: %+v", users[1])
	}
}

func TestNewDBIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fresh.db")

	for i := 0; i < 3; i++ {
		db, err := database.NewDB(path)
		if err != nil {
			t.Fatalf("NewDB run %d: %v", i, err)
		}
		database.CloseDB(db)
	}

	db, err := database.NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer database.CloseDB(db)

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("users table missing after repeated init: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh database has %d rows, want 0", count)
	}
}
