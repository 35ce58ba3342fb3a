package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dkomnin/vpnbot/internal/session"
)

// NewRegisterHandler returns a handler for the Register keyboard button.
func NewRegisterHandler(deps HandlerDeps) bot.HandlerFunc {
	return registerHandler{deps}.Handle
}

// registerHandler starts the registration dialogue. Already-registered
// users are turned away without touching the registry, the session, or
// the panel.
type registerHandler struct {
	deps HandlerDeps
}

func (h registerHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "register")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Register handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling registration trigger", "chat_id", chatID, "user_id", userID)

	username, err := h.deps.Store.GetAPIUsername(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up registration state", "user_id", userID, "error", err)
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.GeneralError,
		})
		return
	}

	if username != "" {
		log.InfoContext(ctx, "User is already registered", "user_id", userID, "api_username", username)
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.AlreadyRegistered,
		})
		return
	}

	touchUser(ctx, h.deps, update.Message.From)
	h.deps.Sessions.Set(userID, session.AwaitingUsername)
	sendReply(ctx, h.deps, b, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   h.deps.Config.Messages.ChooseUsername,
	})
}

// NewUsernameHandler returns the bot's default text handler. It only acts
// on users currently in the AwaitingUsername state; everything else is
// ignored.
func NewUsernameHandler(deps HandlerDeps) bot.HandlerFunc {
	return usernameHandler{deps}.Handle
}

// usernameHandler completes the registration dialogue: it records the
// chosen username locally, then creates the panel account and surfaces the
// panel's response verbatim. The local write deliberately does not depend
// on the remote call's outcome.
type usernameHandler struct {
	deps HandlerDeps
}

func (h usernameHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "username")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if h.deps.Sessions.Get(userID) != session.AwaitingUsername {
		return
	}

	username := strings.TrimSpace(update.Message.Text)
	if username == "" {
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.ChooseUsername,
		})
		return
	}

	log.InfoContext(ctx, "Registering user", "user_id", userID, "api_username", username)

	from := update.Message.From
	err := h.deps.Store.UpsertUser(ctx, userID, &username, optional(from.FirstName), optional(from.LastName))
	if err != nil {
		log.ErrorContext(ctx, "Failed to persist registration", "user_id", userID, "error", err)
		h.deps.Sessions.Clear(userID)
		sendReply(ctx, h.deps, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.GeneralError,
		})
		return
	}

	response, err := h.deps.Provision.CreateAccount(ctx, username)
	if err != nil {
		log.ErrorContext(ctx, "Account creation call failed", "user_id", userID, "api_username", username, "error", err)
		response = err.Error()
	}

	h.deps.Sessions.Clear(userID)
	sendReply(ctx, h.deps, b, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        truncateMessage(fmt.Sprintf(h.deps.Config.Messages.RegistrationDone, response)),
		ReplyMarkup: replyKeyboard(h.deps.isAdmin(userID)),
	})
}
