package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat/internal/middleware"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Hi, *%s*!\n\n"+
			"I connect you to your shapes — AI characters from shapes.inc.\n\n"+
			"📋 *Commands:*\n"+
			"/apikey <key> — Save your Shapes API key\n"+
			"/addshape <url> — Register a shape by its profile URL\n"+
			"/shapes — Pick which shape to talk to\n"+
			"/clear — Forget the current conversation\n"+
			"/cancel — Discard a staged photo\n\n"+
			"Once a shape is selected, just send a message to start chatting. "+
			"You can also attach a photo — the shape will see it.",
		user.FirstName,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      welcomeText,
		ParseMode: models.ParseModeMarkdownV1,
	})
}
