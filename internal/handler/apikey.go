package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat/internal/middleware"
)

func (h *Handler) handleAPIKey(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	parts := strings.SplitN(update.Message.Text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🔑 Usage: /apikey <your Shapes API key>\n\nGet one at https://shapes.inc/developer",
		})
		return
	}

	key := strings.TrimSpace(parts[1])
	if err := h.users.SetAPIKey(ctx, user.ID, key); err != nil {
		slog.Error("set api key", "user_id", user.ID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not save the key. Try again.",
		})
		return
	}

	// The message contains the secret; remove it from the chat history.
	b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: update.Message.ID,
	})

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ API key saved. I deleted your message to keep it out of the chat.",
	})
}
