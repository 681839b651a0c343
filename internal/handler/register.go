package handler

import (
	"github.com/go-telegram/bot"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addshape", bot.MatchTypePrefix, h.handleAddShape)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/shapes", bot.MatchTypePrefix, h.handleShapes)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/apikey", bot.MatchTypePrefix, h.handleAPIKey)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clear", bot.MatchTypePrefix, h.handleClear)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypePrefix, h.handleCancel)

	// Shape list callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "shape_sel_", bot.MatchTypePrefix, h.handleShapeSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "shape_rm_", bot.MatchTypePrefix, h.handleShapeRemove)
}
