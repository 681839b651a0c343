package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat/internal/middleware"
)

func (h *Handler) handleClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if user.SelectedShapeID == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No shape selected — nothing to clear.",
		})
		return
	}

	h.sessions.Drop(user.ID, *user.SelectedShapeID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🧹 Conversation cleared. The shape starts with a blank slate.",
	})
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	session, ok := h.activeSession(ctx, b, chatID, user)
	if !ok {
		return
	}

	if !session.Compose.Pending() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Nothing is attached.",
		})
		return
	}

	session.Compose.Clear()
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🚫 Attachment discarded.",
	})
}
