package apiHttp

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/everkeep/backend/docs"
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/limiter"
	"github.com/everkeep/backend/pkg/logger"
	"github.com/everkeep/backend/pkg/validator"

	internalV1 "github.com/everkeep/backend/internal/api/http/internal/v1"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/internal/service/assistant"
	"github.com/everkeep/backend/internal/worker"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services        *service.Services
	workers         *worker.Workers
	tokenManager    auth.TokenManager
	config          *config.Config
	assistantClient *assistant.Client
}

func NewHandlers(
	services *service.Services,
	workers *worker.Workers,
	tokenManager auth.TokenManager,
	cfg *config.Config,
	assistantClient *assistant.Client,
) *Handler {
	return &Handler{
		services:        services,
		workers:         workers,
		tokenManager:    tokenManager,
		config:          cfg,
		assistantClient: assistantClient,
	}
}

func (h *Handler) Init(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	validator.RegisterGinValidator()

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.Limit(cfg.Limiter.RPS, cfg.Limiter.Burst, cfg.Limiter.TTL),
		corsMiddleware(cfg.HttpServer.AllowedOrigins),
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	if cfg.HttpServer.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.NewHandler(), ginSwagger.InstanceName("internal")))
	}

	h.initAPI(router)

	return router
}

func (h *Handler) initAPI(router *gin.Engine) {
	internalHandlersV1 := internalV1.NewHandler(h.services, h.workers, h.tokenManager, h.config, h.assistantClient)
	api := router.Group("/api")
	internalHandlersV1.Init(api)
}
