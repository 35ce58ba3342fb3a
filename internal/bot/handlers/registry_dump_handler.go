package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dkomnin/vpnbot/internal/database"
)

// unsetPlaceholder stands in for fields the registry has no value for.
const unsetPlaceholder = "—"

// NewRegistryDumpHandler returns a handler for the admin Database report:
// the local registry contents.
func NewRegistryDumpHandler(deps HandlerDeps) bot.HandlerFunc {
	return registryDumpHandler{deps}.Handle
}

type registryDumpHandler struct {
	deps HandlerDeps
}

func (h registryDumpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "registry_dump")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Registry dump handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested registry dump", "chat_id", chatID, "user_id", update.Message.From.ID)

	users, err := h.deps.Store.ListUsers(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list registry records", "error", err)
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.GeneralError,
		})
		return
	}

	if len(users) == 0 {
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.RegistryEmpty,
		})
		return
	}

	sendReply(ctx, h.deps, b, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      renderRegistryDump(users),
		ParseMode: models.ParseModeHTML,
	})
}

// renderRegistryDump formats registry records one per line:
// row id, Telegram user id, API username, display name.
func renderRegistryDump(users []database.User) string {
	lines := make([]string, 0, len(users)+1)
	lines = append(lines, "📋 <b>Users (DB):</b>\nFormat: id — user_id — API username — name\n")

	for i := range users {
		u := &users[i]

		apiUsername := unsetPlaceholder
		if u.Username.Valid && u.Username.String != "" {
			apiUsername = u.Username.String
		}

		name := u.DisplayName()
		if name == "" {
			name = unsetPlaceholder
		}

		lines = append(lines, fmt.Sprintf("<code>%d</code> — <code>%d</code> — %s — %s",
			u.ID, u.UserID, apiUsername, name))
	}
	return truncateMessage(strings.Join(lines, "\n"))
}
