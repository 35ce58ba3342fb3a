package handlers

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/dkomnin/vpnbot/internal/database"
	"github.com/dkomnin/vpnbot/internal/provision"
)

func TestTruncateMessage(t *testing.T) {
	t.Parallel()

	t.Run("short message untouched", func(t *testing.T) {
		t.Parallel()

		if got := truncateMessage("hello"); got != "hello" {
			t.Errorf("got %q, want unchanged", got)
		}
	})

	t.Run("exactly at bound untouched", func(t *testing.T) {
		t.Parallel()

		s := strings.Repeat("x", maxMessageLen)
		if got := truncateMessage(s); got != s {
			t.Error("message at the bound should be unchanged")
		}
	})

	t.Run("long message cut with marker", func(t *testing.T) {
		t.Parallel()

		got := truncateMessage(strings.Repeat("x", maxMessageLen*3))
		if len(got) > maxMessageLen {
			t.Errorf("truncated length %d exceeds bound %d", len(got), maxMessageLen)
		}
		if !strings.HasSuffix(got, truncationMarker) {
			t.Errorf("truncated message missing marker: %q", got[len(got)-30:])
		}
	})

	t.Run("cut lands on rune boundary", func(t *testing.T) {
		t.Parallel()

		got := truncateMessage(strings.Repeat("я", maxMessageLen))
		if len(got) > maxMessageLen {
			t.Errorf("truncated length %d exceeds bound %d", len(got), maxMessageLen)
		}
		trimmed := strings.TrimSuffix(got, truncationMarker)
		if strings.ToValidUTF8(trimmed, "") != trimmed {
			t.Error("truncation split a rune")
		}
	})
}

func TestRenderProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		profile     provision.Profile
		raw         string
		wantParts   []string
		absentParts []string
	}{
		{
			name:      "both fields",
			profile:   provision.Profile{DirectKey: "1.2.3.4", DetailedLink: "http://x"},
			raw:       `{"ipv4":"1.2.3.4","normal_sub":"http://x"}`,
			wantParts: []string{"<b>alice</b>", "<code>1.2.3.4</code>", "http://x"},
			absentParts: []string{
				`{"ipv4"`, // raw body only shown when both fields are absent
			},
		},
		{
			name:        "only direct key",
			profile:     provision.Profile{DirectKey: "1.2.3.4"},
			raw:         `{"ipv4":"1.2.3.4"}`,
			wantParts:   []string{"<code>1.2.3.4</code>"},
			absentParts: []string{"Full details"},
		},
		{
			name:      "neither field shows raw body",
			profile:   provision.Profile{},
			raw:       "plain text panel answer",
			wantParts: []string{"<b>alice</b>", "plain text panel answer"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := renderProfile("alice", tc.profile, tc.raw)
			for _, part := range tc.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("rendered profile missing %q:\n%s", part, got)
				}
			}
			for _, part := range tc.absentParts {
				if strings.Contains(got, part) {
					t.Errorf("rendered profile should not contain %q:\n%s", part, got)
				}
			}
		})
	}
}

func TestRenderUserListSortsAndBullets(t *testing.T) {
	t.Parallel()

	got := renderUserList([]string{"charlie", "alice", "bob"})

	wantOrder := []string{"• alice", "• bob", "• charlie"}
	lastIdx := -1
	for _, entry := range wantOrder {
		idx := strings.Index(got, entry)
		if idx < 0 {
			t.Fatalf("rendered list missing %q:\n%s", entry, got)
		}
		if idx < lastIdx {
			t.Errorf("entries not in lexicographic order:\n%s", got)
		}
		lastIdx = idx
	}
}

func TestRenderUserListTruncates(t *testing.T) {
	t.Parallel()

	usernames := make([]string, 500)
	for i := range usernames {
		usernames[i] = strings.Repeat("u", 50)
	}

	got := renderUserList(usernames)
	if len(got) > maxMessageLen {
		t.Errorf("rendered length %d exceeds bound %d", len(got), maxMessageLen)
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Error("oversized list should end with truncation marker")
	}
}

func TestRenderRegistryDump(t *testing.T) {
	t.Parallel()

	users := []database.User{
		{
			ID:        1,
			UserID:    100,
			Username:  sql.NullString{String: "alice", Valid: true},
			FirstName: sql.NullString{String: "Alice", Valid: true},
			LastName:  sql.NullString{String: "Smith", Valid: true},
		},
		{
			ID:     2,
			UserID: 200,
		},
	}

	got := renderRegistryDump(users)

	if !strings.Contains(got, "<code>1</code> — <code>100</code> — alice — Alice Smith") {
		t.Errorf("complete record rendered wrong:\n%s", got)
	}
	if !strings.Contains(got, "<code>2</code> — <code>200</code> — — — —") {
		t.Errorf("unset fields should render placeholders:\n%s", got)
	}
}

func TestRenderRegistryDumpTruncates(t *testing.T) {
	t.Parallel()

	users := make([]database.User, 400)
	for i := range users {
		users[i] = database.User{
			ID:        int64(i + 1),
			UserID:    int64(1_000_000 + i),
			FirstName: sql.NullString{String: strings.Repeat("n", 40), Valid: true},
		}
	}

	got := renderRegistryDump(users)
	if len(got) > maxMessageLen {
		t.Errorf("rendered length %d exceeds bound %d", len(got), maxMessageLen)
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Error("oversized dump should end with truncation marker")
	}
}
