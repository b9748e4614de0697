package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nano-banana-prompt/internal/config"
	"nano-banana-prompt/internal/credentials"
	"nano-banana-prompt/internal/gemini"
	"nano-banana-prompt/internal/handlers"
	"nano-banana-prompt/internal/httpclient"
	"nano-banana-prompt/internal/mediagroup"
	"nano-banana-prompt/internal/session"
	"nano-banana-prompt/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBot()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		Logger:     logger,
	})

	tg, err := telegram.New(telegram.Options{
		Token:         cfg.TelegramToken,
		HTTPClient:    httpClient,
		Logger:        logger,
		Debug:         cfg.Debug,
		SendPerSecond: cfg.TelegramSendRPS,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	keys := credentials.NewStore(cfg.APIKeyFile, cfg.GeminiAPIKey)
	if !keys.Ready() {
		logger.Warn("gemini api key not configured; send /key in the chat")
	}

	gem := gemini.New(gemini.Options{
		Keys:       keys,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		ImageSize:  cfg.GeminiImageSize,
		Logger:     logger,
	})

	sessions := session.NewStore(session.StoreOptions{
		TTL: cfg.SessionTTL,
		NewController: func(owner int64) *session.Controller {
			return session.New(session.Options{
				Generator: gem,
				Keys:      keys,
				Logger:    logger.With("owner", owner),
			})
		},
	})

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Sessions: sessions,
		Keys:     keys,
		OwnerID:  cfg.TelegramOwnerID,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onGroupFlush := func(group mediagroup.Group) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func() {
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			handler.HandleMediaGroup(reqCtx, group)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush:  onGroupFlush,
	})
	handler.SetMediaGroupAggregator(aggregator)

	go func() {
		ticker := time.NewTicker(cfg.SessionTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := handler.PruneMenus(cfg.SessionTTL); n > 0 {
					logger.Debug("pruned idle menus", "count", n, "sessions", sessions.Len())
				}
			}
		}
	}()

	logger.Info("bot started", "username", tg.Username(), "owner_id", cfg.TelegramOwnerID, "key", keys.Masked())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "pending_albums", aggregator.Pending())
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "update_id", update.UpdateID, "err", err)
				}
			}(update)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
