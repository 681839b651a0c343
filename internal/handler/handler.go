package handler

import (
	"github.com/go-telegram/bot"

	"shapechat/internal/chat"
	"shapechat/internal/media"
	"shapechat/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot      *bot.Bot
	users    *service.UserService
	shapes   *service.ShapeService
	sessions *chat.Registry
	media    *media.Manager
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot      *bot.Bot
	Users    *service.UserService
	Shapes   *service.ShapeService
	Sessions *chat.Registry
	Media    *media.Manager
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:      deps.Bot,
		users:    deps.Users,
		shapes:   deps.Shapes,
		sessions: deps.Sessions,
		media:    deps.Media,
	}
}
