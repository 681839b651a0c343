package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shapechat"
	"shapechat/internal/chat"
	"shapechat/internal/config"
	"shapechat/internal/handler"
	"shapechat/internal/media"
	"shapechat/internal/middleware"
	"shapechat/internal/repository"
	"shapechat/internal/service"
	"shapechat/internal/shapes"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(shapechat.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Spool directory for staged attachments
	mediaManager, err := media.NewManager(cfg.SpoolDir)
	if err != nil {
		slog.Error("failed to init media spool", "error", err)
		os.Exit(1)
	}
	defer mediaManager.Close()

	// Initialize repositories and services
	usersRepo := repository.NewUsers(pool)
	shapesRepo := repository.NewShapes(pool)
	userService := service.NewUserService(usersRepo)
	shapeService := service.NewShapeService(shapesRepo, usersRepo, shapes.NewProfileFetcher())

	client := shapes.NewClient(cfg.ShapesAPIURL)
	sessions := chat.NewRegistry(client)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.UserLoader(userService),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			// Photos and image documents arrive without message text
			if len(update.Message.Photo) > 0 || update.Message.Document != nil {
				h.HandleMedia(ctx, b, update)
			}
		}),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true})
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:      b,
		Users:    userService,
		Shapes:   shapeService,
		Sessions: sessions,
		Media:    mediaManager,
	})

	// Register all handlers
	h.Register()

	// Route non-command private text to the chat pipeline
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
			return
		}
		h.HandleChatMessage(ctx, b, update)
	})

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
}
