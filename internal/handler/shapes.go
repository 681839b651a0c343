package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"shapechat/internal/domain"
	"shapechat/internal/middleware"
	tg "shapechat/internal/telegram"
)

func (h *Handler) handleShapes(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	shapes, err := h.shapes.List(ctx, user.ID)
	if err != nil {
		slog.Error("list shapes", "user_id", user.ID, "error", err)
		return
	}

	if len(shapes) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "You have no shapes yet. Register one with /addshape <url>.",
		})
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, shape := range shapes {
		selected := ""
		if user.SelectedShapeID != nil && *user.SelectedShapeID == shape.ID {
			selected = " ✅"
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(fmt.Sprintf("💬 %s%s", shape.Name, selected), "shape_sel_"+shape.ID.String()),
			tg.InlineButton("❌", "shape_rm_"+shape.ID.String()),
		))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "*Your shapes:*",
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleShapeSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	shapeID, chatID, user, ok := h.shapeCallback(ctx, b, update, "shape_sel_")
	if !ok {
		return
	}

	owned, err := h.shapes.List(ctx, user.ID)
	if err != nil {
		slog.Error("list shapes", "user_id", user.ID, "error", err)
		return
	}
	var name string
	for _, s := range owned {
		if s.ID == shapeID {
			name = s.Name
		}
	}
	if name == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Shape not found."})
		return
	}

	if err := h.users.SelectShape(ctx, user.ID, shapeID); err != nil {
		slog.Error("select shape", "user_id", user.ID, "error", err)
		return
	}
	user.SelectedShapeID = &shapeID

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("✅ Now talking to *%s*. Your conversation with it is kept separately.", name),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) handleShapeRemove(ctx context.Context, b *bot.Bot, update *models.Update) {
	shapeID, chatID, user, ok := h.shapeCallback(ctx, b, update, "shape_rm_")
	if !ok {
		return
	}

	if err := h.shapes.Remove(ctx, user, shapeID); err != nil {
		if errors.Is(err, domain.ErrShapeNotFound) {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Shape not found."})
		} else {
			slog.Error("remove shape", "user_id", user.ID, "error", err)
		}
		return
	}

	// Drop the in-memory conversation with the removed shape.
	h.sessions.Drop(user.ID, shapeID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🗑 Shape removed.",
	})
}

// shapeCallback acknowledges the callback query and parses the shape ID
// out of its data.
func (h *Handler) shapeCallback(ctx context.Context, b *bot.Bot, update *models.Update, prefix string) (uuid.UUID, int64, *domain.User, bool) {
	if update.CallbackQuery == nil {
		return uuid.Nil, 0, nil, false
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery.Message.Message == nil {
		return uuid.Nil, 0, nil, false
	}
	chatID := update.CallbackQuery.Message.Message.Chat.ID

	shapeID, err := uuid.Parse(strings.TrimPrefix(update.CallbackQuery.Data, prefix))
	if err != nil {
		return uuid.Nil, 0, nil, false
	}
	return shapeID, chatID, user, true
}
