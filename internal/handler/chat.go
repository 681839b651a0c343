package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat/internal/chat"
	"shapechat/internal/classify"
	"shapechat/internal/config"
	"shapechat/internal/domain"
	"shapechat/internal/middleware"
	tg "shapechat/internal/telegram"
)

// HandleChatMessage processes a plain private text message as a chat
// turn with the selected shape.
func (h *Handler) HandleChatMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	h.runTurn(ctx, b, msg.Chat.ID, user, msg.Text)
}

// HandleMedia stages an incoming photo or image document as the pending
// attachment. A caption sends the message immediately; otherwise the
// image waits for the next text.
func (h *Handler) HandleMedia(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := msg.Chat.ID

	session, ok := h.activeSession(ctx, b, chatID, user)
	if !ok {
		return
	}

	fileID := ""
	if len(msg.Photo) > 0 {
		// Highest resolution variant is last
		fileID = msg.Photo[len(msg.Photo)-1].FileID
	} else if msg.Document != nil {
		fileID = msg.Document.FileID
	}
	if fileID == "" {
		return
	}

	data, name, err := tg.DownloadFile(ctx, b, fileID, config.MaxAttachmentBytes)
	if err != nil {
		if errors.Is(err, tg.ErrFileTooLarge) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   fmt.Sprintf("❌ File too large — the limit is %d MB.", config.MaxAttachmentBytes>>20),
			})
			return
		}
		slog.Error("download attachment", "user_id", user.ID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't download the file.",
		})
		return
	}

	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Only images can be attached.",
		})
		return
	}

	handle, err := h.media.Acquire(name, data)
	if err != nil {
		slog.Error("spool attachment", "user_id", user.ID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't store the file.",
		})
		return
	}

	session.Compose.Attach(&domain.PendingAttachment{FileName: name, Preview: handle})

	if msg.Caption != "" {
		h.runTurn(ctx, b, chatID, user, msg.Caption)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("📎 *%s* attached. Send a message to include it, or /cancel to discard.", name),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

// runTurn performs one full send: resolve the session, run the pipeline,
// render the shape's reply back into the chat.
func (h *Handler) runTurn(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string) {
	session, ok := h.activeSession(ctx, b, chatID, user)
	if !ok {
		return
	}

	if !user.HasAPIKey() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🔑 Set your Shapes API key first: /apikey <key>",
		})
		return
	}

	if session.Pipeline.Busy() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Wait for the shape to reply first.",
		})
		return
	}

	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	// No deadline here: the transport client owns the request timeout,
	// and failure notices must go out even after it fires.
	err := session.Pipeline.Send(ctx, chat.SendInput{
		APIKey: user.APIKey,
		Shape:  session.Shape,
		Text:   text,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Send some text or attach an image first.",
			})
		case errors.Is(err, domain.ErrBusy):
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "⏳ Wait for the shape to reply first.",
			})
		}
		// Other failures already surfaced through the session notifier.
		return
	}

	last, ok := session.Store.Last()
	if !ok || last.Sender != domain.SenderAgent {
		return
	}
	h.renderReply(ctx, b, chatID, last)
}

// renderReply delivers an agent message, promoting recognized media
// links to native Telegram photo or audio messages.
func (h *Handler) renderReply(ctx context.Context, b *bot.Bot, chatID int64, msg domain.Message) {
	c := classify.ForMessage(msg)

	switch c.Kind {
	case classify.KindImage:
		if err := tg.SendPhotoURL(ctx, b, chatID, c.URL, c.Remainder); err == nil {
			return
		}
		// Telegram refused the URL; fall back to plain text
	case classify.KindAudio:
		if err := tg.SendAudioURL(ctx, b, chatID, c.URL, c.Remainder); err == nil {
			return
		}
	}

	if err := tg.SendLongMessage(ctx, b, chatID, msg.Content); err != nil {
		slog.Error("send reply", "chat_id", chatID, "error", err)
	}
}

// activeSession resolves the user's selected shape into a live chat
// session, reporting the usual setup problems to the user.
func (h *Handler) activeSession(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) (*chat.Session, bool) {
	shape, err := h.shapes.Selected(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrNoShapeSelected) || errors.Is(err, domain.ErrShapeNotFound) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Pick a shape first: /shapes (or register one with /addshape).",
			})
		} else {
			slog.Error("resolve selected shape", "user_id", user.ID, "error", err)
		}
		return nil, false
	}

	notifier := chat.NotifierFunc(func(ctx context.Context, text string) {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "⚠️ " + text})
	})
	return h.sessions.Get(user.ID, *shape, notifier), true
}
