package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dkomnin/vpnbot/internal/provision"
)

// NewProfileHandler returns a handler for the Profile keyboard button.
func NewProfileHandler(deps HandlerDeps) bot.HandlerFunc {
	return profileHandler{deps}.Handle
}

// profileHandler fetches and renders the caller's connection profile.
type profileHandler struct {
	deps HandlerDeps
}

func (h profileHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "profile")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Profile handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling profile request", "chat_id", chatID, "user_id", userID)

	touchUser(ctx, h.deps, update.Message.From)

	username, err := h.deps.Store.GetAPIUsername(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up API username", "user_id", userID, "error", err)
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.GeneralError,
		})
		return
	}

	if username == "" {
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.NotRegistered,
		})
		return
	}

	body, err := h.deps.Provision.FetchProfile(ctx, username)
	if err != nil {
		log.ErrorContext(ctx, "Profile fetch failed", "user_id", userID, "api_username", username, "error", err)
		return
	}

	profile := provision.ParseProfile(body)
	sendReply(ctx, h.deps, b, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      renderProfile(username, profile, body),
		ParseMode: models.ParseModeHTML,
	})
}

// renderProfile formats a profile reply. When the panel response yields
// neither field, the raw body is shown instead so the user always gets
// something back.
func renderProfile(username string, p provision.Profile, raw string) string {
	lines := []string{fmt.Sprintf("👤 <b>%s</b>:", username)}
	if p.DirectKey != "" {
		lines = append(lines, fmt.Sprintf("\n📱 Direct key:\n<code>%s</code>", p.DirectKey))
	}
	if p.DetailedLink != "" {
		lines = append(lines, "\n🔗 Full details here:\n"+p.DetailedLink)
	}
	if p.DirectKey == "" && p.DetailedLink == "" {
		lines = append(lines, "\n"+raw)
	}
	return truncateMessage(strings.Join(lines, "\n"))
}
