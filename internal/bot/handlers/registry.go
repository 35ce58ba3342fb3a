package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// Reply keyboard button labels. The button handlers match these exactly.
const (
	ButtonRegister = "Register"
	ButtonProfile  = "Profile"
	ButtonUsers    = "Users"
	ButtonDatabase = "Database"
)

// RegisteredHandler represents a handler with its match pattern and middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot commands and
// keyboard button handlers. The free-text username handler is not listed
// here; it is installed as the bot's default handler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers[ButtonRegister] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     ButtonRegister,
		Handler:     NewRegisterHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers[ButtonProfile] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     ButtonProfile,
		Handler:     NewProfileHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}

	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	handlers[ButtonUsers] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     ButtonUsers,
		Handler:     NewUsersHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
		Middleware:  adminMiddleware,
	}
	handlers[ButtonDatabase] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     ButtonDatabase,
		Handler:     NewRegistryDumpHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
		Middleware:  adminMiddleware,
	}

	return handlers
}
