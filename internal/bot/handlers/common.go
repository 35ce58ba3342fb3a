// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// maxMessageLen bounds rendered report output so replies stay well inside
// Telegram's message size limit.
const maxMessageLen = 4000

const truncationMarker = "\n… (truncated)"

// truncateMessage cuts s so the result, marker included, never exceeds
// maxMessageLen bytes. The cut lands on a rune boundary.
func truncateMessage(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen - len(truncationMarker)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}

// touchUser refreshes the caller's registry record: first contact creates
// the row with no API username, later contacts only refresh the display
// metadata. Failures are logged and swallowed so a registry hiccup never
// blocks the triggering flow.
func touchUser(ctx context.Context, deps HandlerDeps, from *models.User) {
	if from == nil {
		return
	}
	err := deps.Store.UpsertUser(ctx, from.ID, nil, optional(from.FirstName), optional(from.LastName))
	if err != nil {
		deps.Logger.WarnContext(ctx, "Failed to refresh user record", "user_id", from.ID, "error", err)
	}
}

// optional maps an empty string to nil so it never overwrites a stored value.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// replyKeyboard builds the persistent reply keyboard. Admins get the two
// report buttons in addition to the user actions.
func replyKeyboard(admin bool) *models.ReplyKeyboardMarkup {
	rows := [][]models.KeyboardButton{
		{{Text: ButtonRegister}},
		{{Text: ButtonProfile}},
	}
	if admin {
		rows = append(rows, []models.KeyboardButton{{Text: ButtonUsers}, {Text: ButtonDatabase}})
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}

// sendReply sends a plain text reply, logging delivery failures.
func sendReply(ctx context.Context, deps HandlerDeps, b *bot.Bot, params *bot.SendMessageParams) {
	_, err := b.SendMessage(ctx, params)
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply", "chat_id", params.ChatID, "error", err)
	}
}
