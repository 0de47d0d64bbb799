package v1

import (
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/internal/service/assistant"
	"github.com/everkeep/backend/internal/worker"
	"github.com/everkeep/backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

// @title EverKeep API
// @version 1.0
// @description Digital will and liveness check-in backend

// @BasePath /api/v1

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

type Handler struct {
	services        *service.Services
	workers         *worker.Workers
	tokenManager    auth.TokenManager
	config          *config.Config
	assistantClient *assistant.Client
}

func NewHandler(
	services *service.Services,
	workers *worker.Workers,
	tokenManager auth.TokenManager,
	config *config.Config,
	assistantClient *assistant.Client,
) *Handler {
	return &Handler{
		services:        services,
		workers:         workers,
		tokenManager:    tokenManager,
		config:          config,
		assistantClient: assistantClient,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initUsersRoutes(v1)
	h.initContactsRoutes(v1)
	h.initWillsRoutes(v1)
	h.initCheckInRoutes(v1)
	h.initDeathVerificationRoutes(v1)
	h.initAssistantRoutes(v1)
}
