package handlers

import (
	"context"
	"sort"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dkomnin/vpnbot/internal/provision"
)

// NewUsersHandler returns a handler for the admin Users report: the user
// list as the provisioning panel sees it.
func NewUsersHandler(deps HandlerDeps) bot.HandlerFunc {
	return usersHandler{deps}.Handle
}

type usersHandler struct {
	deps HandlerDeps
}

func (h usersHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "users")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Users handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested panel user list", "chat_id", chatID, "user_id", update.Message.From.ID)

	body, err := h.deps.Provision.ListUsers(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Panel user list fetch failed", "error", err)
		return
	}

	usernames := provision.ExtractUsernames(body)
	if len(usernames) == 0 {
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.UsersEmpty,
		})
		return
	}

	sendReply(ctx, h.deps, b, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      renderUserList(usernames),
		ParseMode: models.ParseModeHTML,
	})
}

// renderUserList formats the panel usernames as a sorted bulleted list.
func renderUserList(usernames []string) string {
	sorted := make([]string, len(usernames))
	copy(sorted, usernames)
	sort.Strings(sorted)

	lines := make([]string, 0, len(sorted)+1)
	lines = append(lines, "📋 <b>Users:</b>\n")
	for _, u := range sorted {
		lines = append(lines, "• "+u)
	}
	return truncateMessage(strings.Join(lines, "\n"))
}
