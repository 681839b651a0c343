package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat/internal/domain"
	"shapechat/internal/middleware"
)

func (h *Handler) handleAddShape(ctx context.Context, b *bot.Bot, update *models.Update) {
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
			Text:   "Usage: /addshape <shape URL>\n\nExample: /addshape https://shapes.inc/tenshi",
		})
		return
	}

	shape, err := h.shapes.Register(ctx, user, strings.TrimSpace(parts[1]))
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   addShapeErrorText(err),
		})
		if !errors.Is(err, domain.ErrInvalidShapeURL) &&
			!errors.Is(err, domain.ErrShapeExists) &&
			!errors.Is(err, domain.ErrShapeLimit) {
			slog.Error("register shape", "user_id", user.ID, "error", err)
		}
		return
	}

	text := fmt.Sprintf("✅ Registered *%s*.", shape.Name)
	if user.SelectedShapeID != nil && *user.SelectedShapeID == shape.ID {
		text += "\n\nIt is now your active shape — just send a message to chat."
	} else {
		text += "\n\nUse /shapes to switch to it."
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func addShapeErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidShapeURL):
		return "❌ That doesn't look like a shape URL. Try something like https://shapes.inc/tenshi"
	case errors.Is(err, domain.ErrShapeExists):
		return "❌ You already registered this shape."
	case errors.Is(err, domain.ErrShapeLimit):
		return "❌ Shape limit reached. Remove one with /shapes first."
	default:
		return "❌ Could not register the shape. Try again later."
	}
}
