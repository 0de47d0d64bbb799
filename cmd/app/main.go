package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	apiHttp "github.com/everkeep/backend/internal/api/http"
	"github.com/everkeep/backend/internal/cache"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/db"
	"github.com/everkeep/backend/internal/queue/asynqserver"
	"github.com/everkeep/backend/internal/queue/client"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/internal/server"
	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/internal/service/assistant"
	"github.com/everkeep/backend/internal/storage"
	"github.com/everkeep/backend/internal/worker"
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/email/smtp"
	"github.com/everkeep/backend/pkg/hash"
	"github.com/everkeep/backend/pkg/logger"
	"github.com/everkeep/backend/pkg/otp"
	"github.com/everkeep/backend/pkg/pdf"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	appLogger := logger.SetupLogger(cfg.Env)

	appLogger.Info("starting backend api", zap.String("env", cfg.Env))
	appLogger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		appLogger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			appLogger.Error("error when closing mysql", zap.Error(err))
		}
	}()
	appLogger.Info("mysql connection done")

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		appLogger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("error when closing redis", zap.Error(err))
		}
	}()
	appLogger.Info("redis connection done")

	hasher := hash.NewSHA256Hasher(cfg.Auth.PasswordSalt)

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		appLogger.Error("smtp sender creation failed", zap.Error(err))
		return
	}

	tokenManager, err := auth.NewManager(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.AccessTokenTTL, cfg.Auth.JWT.RefreshTokenTTL)
	if err != nil {
		appLogger.Error("auth manager creation err", zap.Error(err))
		return
	}

	checkInTokens, err := auth.NewCheckInTokenManager(cfg.Auth.JWT.SigningKey, cfg.CheckIn.TokenTTL)
	if err != nil {
		appLogger.Error("check-in token manager creation err", zap.Error(err))
		return
	}

	otpGenerator := otp.NewGOTPGenerator()

	storageClient, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		appLogger.Error("storage client creation err", zap.Error(err))
		return
	}

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		appLogger.Error("pdf generator creation err", zap.Error(err))
		return
	}

	// Queue client, shared by services and workers
	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer asynqClient.Close()
	restoreClient := client.SetClient(asynqClient)
	defer restoreClient()

	// Services, Repos, Workers & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:        cfg,
		Hasher:        hasher,
		TokenManager:  tokenManager,
		CheckInTokens: checkInTokens,
		OtpGenerator:  otpGenerator,
		Repos:         repos,
		ReplayGuard:   cache.NewReplayGuard(redisClient),
		Storage:       storageClient,
		PDFGenerator:  pdfGenerator,
	})
	workers := worker.NewWorkers(worker.Deps{
		Repos:         repos,
		CheckInTokens: checkInTokens,
		RunLock:       cache.NewRunLock(redisClient),
		EmailProvider: emailSender,
		Config:        cfg,
		Enqueue:       client.Enqueue,
	})

	var assistantClient *assistant.Client
	if cfg.Assistant.Enabled {
		assistantClient = assistant.NewClient(cfg.Assistant.BaseURL, cfg.Assistant.APIKey, cfg.Assistant.Model)
	}

	handlers := apiHttp.NewHandlers(services, workers, tokenManager, cfg, assistantClient)

	// Queue server runs email delivery and the periodic sweep
	queueServer, queueMux := asynqserver.New(cfg.Cache, workers)
	go func() {
		if err := queueServer.Run(queueMux); err != nil {
			appLogger.Error("queue server stopped", zap.Error(err))
		}
	}()

	periodicScheduler, err := asynqserver.NewPeriodicScheduler(cfg.Cache, cfg.CheckIn)
	if err != nil {
		appLogger.Error("periodic scheduler creation err", zap.Error(err))
		return
	}
	go func() {
		if err := periodicScheduler.Run(); err != nil {
			appLogger.Error("periodic scheduler stopped", zap.Error(err))
		}
	}()

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	appLogger.Info("server started")

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	periodicScheduler.Shutdown()
	queueServer.Shutdown()

	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("failed to stop server", zap.Error(err))
	}

	appLogger.Info("app stopped")
}
