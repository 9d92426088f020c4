package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jasonoc/plato/internal/bot"
	"github.com/jasonoc/plato/internal/bot/state"
	"github.com/jasonoc/plato/internal/calendar"
	"github.com/jasonoc/plato/internal/config"
	"github.com/jasonoc/plato/internal/database"
	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitWithConfig(logger.Config(cfg.Logger)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Starting Plato...")

	for _, problem := range cfg.Validate() {
		logger.Warn("Config issue", "problem", problem)
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Database connection established and migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aiService, err := services.NewAIService(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Error("Failed to initialize AI service", "error", err)
		os.Exit(1)
	}
	defer aiService.Close()

	// Calendar sync is optional: without Google credentials the planner still
	// stages and tracks schedules locally.
	var cal services.CalendarClient
	if cfg.Google.ClientID != "" && cfg.Google.ClientSecret != "" && cfg.Google.RefreshToken != "" {
		client, err := calendar.NewClient(ctx, cfg.Google)
		if err != nil {
			logger.Error("Failed to initialize Google Calendar, sync disabled", "error", err)
		} else {
			cal = client
			logger.Info("Google Calendar sync enabled", "calendar", cfg.Google.CalendarID)
		}
	} else {
		logger.Warn("Google credentials not set, calendar sync disabled")
	}

	svc := bot.Services{
		AI:            aiService,
		Conversations: services.NewConversationService(db),
		Schedule:      services.NewScheduleService(db, cal),
		Training:      services.NewTrainingService(db),
		Finance:       services.NewFinanceService(db),
		Projects:      services.NewProjectService(db),
		Tasks:         services.NewTaskService(db),
	}
	logger.Info("Services initialized successfully")

	var states bot.StateStore
	if cfg.Redis.Host != "" {
		redisStates, err := state.NewRedisManager(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			logger.Error("Redis unavailable, using in-memory state", "error", err)
		} else {
			states = redisStates
			logger.Info("Redis state manager connected")
		}
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, cfg.AllowedUserID, svc, states)
	if err != nil {
		logger.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	nudges, err := telegramBot.StartNudges(ctx)
	if err != nil {
		logger.Error("Failed to start nudge scheduler", "error", err)
		os.Exit(1)
	}
	defer nudges.Stop()

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		logger.Info("Shutdown signal received")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := telegramBot.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("Bot stopped with error", "error", err)
		}
	}()

	logger.Info("Plato is running. Press Ctrl+C to stop.")
	wg.Wait()
}
