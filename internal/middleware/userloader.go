package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat/internal/domain"
	"shapechat/internal/service"
)

type ctxKey string

const userKey ctxKey = "user"

// GetUser extracts the loaded user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(userKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// UserLoader returns middleware that loads the sender into context.
// The bot only works in private chats; everything else passes through
// without a user.
func UserLoader(users *service.UserService) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User

			if update.Message != nil && update.Message.Chat.Type == models.ChatTypePrivate {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			user, err := users.FindOrCreate(ctx, from.ID, from.FirstName, from.Username)
			if err != nil {
				slog.Error("load user", "user_id", from.ID, "error", err)
				next(ctx, b, update)
				return
			}

			next(context.WithValue(ctx, userKey, user), b, update)
		}
	}
}
