package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamly/internal/api"
	"github.com/hugh/teamly/internal/auth"
	"github.com/hugh/teamly/internal/database"
	"github.com/hugh/teamly/internal/mailer"
	"github.com/hugh/teamly/internal/tasks"
	"github.com/hugh/teamly/internal/team"
	"github.com/hugh/teamly/pkg/config"
	"github.com/hugh/teamly/pkg/queue"
	"github.com/hugh/teamly/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting teamly server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Redis; the server runs without it, falling back to
	// inline email delivery.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, email delivery will be inline", "error", err)
		redisClient = nil
	}

	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
	}

	// Initialize services
	jwtService := auth.NewJWTService(auth.JWTOptions{
		Secret:        cfg.JWT.Secret,
		Algorithm:     cfg.JWT.Algorithm,
		AccessTTL:     cfg.JWT.AccessExpiry(),
		RefreshTTL:    cfg.JWT.RefreshExpiry(),
		InvitationTTL: cfg.JWT.InvitationExpiry(),
	})
	authService := auth.NewService(db, jwtService, logger)

	var invitationMailer mailer.Mailer = mailer.NewSMTPMailer(cfg.SMTP, logger)
	if asynqClient != nil {
		invitationMailer = tasks.NewQueueMailer(asynqClient, logger)
	}

	teamService := team.NewService(db, jwtService, invitationMailer, logger, cfg.Frontend.BaseURL)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:               db,
		Redis:            redisClient,
		Logger:           logger,
		AuthService:      authService,
		TeamService:      teamService,
		AccessExpirySecs: cfg.JWT.AccessExpiryMins * 60,
		RateLimitReqs:    cfg.RateLimit.Requests,
		RateLimitSecs:    cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}

	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
