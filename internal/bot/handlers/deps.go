package handlers

import (
	"log/slog"

	"github.com/dkomnin/vpnbot/internal/config"
	"github.com/dkomnin/vpnbot/internal/database"
	"github.com/dkomnin/vpnbot/internal/provision"
	"github.com/dkomnin/vpnbot/internal/session"
)

// HandlerDeps provides dependencies for Telegram command handlers.
// AdminIDs is the read-only allow-list of chat identities permitted to use
// the admin reports.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Provision provision.Client
	Sessions  *session.Store
	AdminIDs  map[int64]struct{}
}

// NewAdminSet builds the allow-list set from a slice of user IDs.
func NewAdminSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (d HandlerDeps) isAdmin(userID int64) bool {
	_, ok := d.AdminIDs[userID]
	return ok
}
