package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram_booking_assistant/internal/booking"
	"telegram_booking_assistant/internal/bot/dispatcher"
	"telegram_booking_assistant/internal/bot/service"
	"telegram_booking_assistant/internal/config"
	"telegram_booking_assistant/internal/dialogue"
	"telegram_booking_assistant/internal/extract"
	"telegram_booking_assistant/internal/llm"
	"telegram_booking_assistant/internal/server"
	"telegram_booking_assistant/internal/session"
	"telegram_booking_assistant/internal/storage"
	"telegram_booking_assistant/internal/storage/jsonfile"
	"telegram_booking_assistant/internal/storage/models"
	"telegram_booking_assistant/internal/storage/sqlite"
	"telegram_booking_assistant/pkg/logger"

	tgbot "github.com/go-telegram/bot"

	"telegram_booking_assistant/internal/middleware"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting scheduling assistant bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(logger.LevelInfo)
	appLogger.Info("Configuration loaded successfully")

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize schedule store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing schedule store: %v", err)
		}
	}()

	appLogger.Info("Schedule store initialized",
		logger.String("driver", cfg.Storage.Driver),
	)

	llmClient := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})

	sessions := session.NewStore(cfg.Session.MaxTurns, cfg.Session.TTL)
	sessions.StartSweeper(5 * time.Minute)
	defer sessions.Stop()

	engine := dialogue.New(
		llmClient,
		sessions,
		store,
		extract.New(llmClient),
		booking.New(store),
		appLogger,
	)

	telegramBot, err := tgbot.New(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	appLogger.Info("Telegram bot created successfully")

	botService := service.NewService(telegramBot, engine, appLogger)
	limiter := middleware.NewTelegramRateLimiter(30, 10, appLogger)
	defer limiter.Close()

	updateDispatcher := dispatcher.NewDispatcher(botService, limiter, appLogger)

	if err := setupWebhook(telegramBot, cfg.Telegram.WebhookURL); err != nil {
		log.Fatalf("Failed to setup webhook: %v", err)
	}

	appLogger.Info("Webhook configured successfully")

	healthChecker := server.NewHealthChecker(store, sessions, "1.0.0")
	srv := server.New(cfg, appLogger, healthChecker, updateDispatcher, telegramBot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("Shutdown signal received, starting graceful shutdown...")
		cancel()
	}()

	appLogger.Info("Starting HTTP server on port " + cfg.Server.Port)
	if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	appLogger.Info("Server stopped gracefully")
}

// openStore selects the schedule store driver. A fresh SQLite database is
// seeded from the schedule file when one is present.
func openStore(cfg *config.Config) (storage.ScheduleStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Storage.DBPath)
		if err != nil {
			return nil, err
		}
		if ws, err := loadScheduleFile(cfg.Storage.SchedulePath); err == nil {
			if err := store.ImportIfEmpty(context.Background(), ws); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil
	default:
		return jsonfile.New(cfg.Storage.SchedulePath)
	}
}

// loadScheduleFile reads a schedule.json document for seeding
func loadScheduleFile(path string) (models.WeeklySchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc models.ScheduleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc.WeeklySchedule, nil
}

// setupWebhook registers the webhook with Telegram
func setupWebhook(bot *tgbot.Bot, webhookURL string) error {
	ctx := context.Background()

	if _, err := bot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
		log.Printf("Warning: failed to delete existing webhook: %v", err)
	}

	params := &tgbot.SetWebhookParams{
		URL: webhookURL,
	}

	if _, err := bot.SetWebhook(ctx, params); err != nil {
		return err
	}

	log.Printf("Webhook set to %s", webhookURL)
	return nil
}
