package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat/internal/config"
)

// SendLongMessage sends a potentially long message, splitting it into parts
// if needed. Falls back to plain text if Markdown parsing fails.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) error {
	text = FixMarkdown(text)
	parts := SplitMessage(text, config.MaxTelegramMessageLen)

	for _, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}

		_, err := b.SendMessage(ctx, params)
		if err != nil {
			// Fallback to plain text
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			_, err = b.SendMessage(ctx, params)
			if err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}

	return nil
}

// SendPhotoURL sends a remotely hosted photo by URL, letting Telegram fetch it.
func SendPhotoURL(ctx context.Context, b *bot.Bot, chatID int64, photoURL, caption string) error {
	_, err := b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileString{Data: photoURL},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// SendAudioURL sends a remotely hosted audio file by URL.
func SendAudioURL(ctx context.Context, b *bot.Bot, chatID int64, audioURL, caption string) error {
	_, err := b.SendAudio(ctx, &bot.SendAudioParams{
		ChatID:  chatID,
		Audio:   &models.InputFileString{Data: audioURL},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	return nil
}

// StartTyping sends "typing..." action every 4 seconds until the returned
// cancel function is called.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()
		// Send immediately
		b.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.SendChatAction(ctx, &bot.SendChatActionParams{
					ChatID: chatID,
					Action: models.ChatActionTyping,
				})
			}
		}
	}()
	return cancel
}
