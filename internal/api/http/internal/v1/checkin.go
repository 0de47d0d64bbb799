package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/logger"
)

func (h *Handler) initCheckInRoutes(api *gin.RouterGroup) {
	checkIn := api.Group("/check-in")

	// Confirmation links are followed from email, no session required.
	checkIn.GET("/confirm", h.checkInConfirm)
	checkIn.GET("/:type/confirm", h.checkInConfirmContact)

	checkIn.GET("/history", h.userIdentityMiddleware, h.checkInHistory)

	if h.config.Env != "production" {
		checkIn.POST("/trigger", h.checkInTrigger)
	}
}

type checkInConfirmResponse struct {
	Status string `json:"status"`
	Notice string `json:"notice,omitempty"`
}

// @Summary Confirm weekly check-in
// @Tags CheckIn
// @Description Record the user's alive/deceased answer from the emailed link
// @Produce  json
// @Param userId query string true "user id"
// @Param alive query boolean true "alive answer"
// @Param token query string true "signed check-in token"
// @Success 200 {object} checkInConfirmResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Router /check-in/confirm [get]
func (h *Handler) checkInConfirm(c *gin.Context) {
	h.confirmCheckIn(c, "")
}

// @Summary Confirm check-in for a contact
// @Tags CheckIn
// @Description Beneficiary or executor answer from the emailed link
// @Produce  json
// @Param type path string true "responder type" Enums(beneficiary, executor)
// @Param userId query string true "user id"
// @Param alive query boolean true "alive answer"
// @Param token query string true "signed check-in token"
// @Success 200 {object} checkInConfirmResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Router /check-in/{type}/confirm [get]
func (h *Handler) checkInConfirmContact(c *gin.Context) {
	responderType := c.Param("type")
	if responderType != auth.CheckInRoleBeneficiary && responderType != auth.CheckInRoleExecutor {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	h.confirmCheckIn(c, responderType)
}

func (h *Handler) confirmCheckIn(c *gin.Context, expectRole string) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		errorResponse(c, CheckInTokenInvalidCode)
		return
	}

	alive, err := strconv.ParseBool(c.Query("alive"))
	if err != nil {
		errorResponse(c, CheckInTokenInvalidCode)
		return
	}

	token := c.Query("token")
	if token == "" {
		errorResponse(c, CheckInTokenInvalidCode)
		return
	}

	result, err := h.services.CheckIns.Confirm(c.Request.Context(), service.ConfirmCheckInInput{
		UserID:     userID,
		Alive:      alive,
		Token:      token,
		ExpectRole: expectRole,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCheckInTokenExpired):
			errorResponseWithStatus(c, http.StatusUnauthorized, CheckInTokenExpiredCode)
		case errors.Is(err, auth.ErrCheckInTokenInvalid):
			errorResponseWithStatus(c, http.StatusUnauthorized, CheckInTokenInvalidCode)
		case errors.Is(err, service.ErrCheckInTokenMismatch):
			errorResponse(c, CheckInTokenMismatchCode)
		case errors.Is(err, service.ErrUserNotFound):
			errorResponseWithStatus(c, http.StatusNotFound, UserNotFoundCode)
		default:
			logger.Error("confirm check-in failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	resp := checkInConfirmResponse{Status: "recorded"}
	switch {
	case result.Replayed:
		resp.Status = "already recorded"
	case result.WillsPending:
		resp.Notice = "death verification started"
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Check-in history
// @Tags CheckIn
// @Description Recorded attestations for the authenticated user
// @Produce  json
// @Success 200 {array} domain.CheckInResponse
// @Failure 401
// @Failure 500
// @Security UserAuth
// @Router /check-in/history [get]
func (h *Handler) checkInHistory(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	history, err := h.services.CheckIns.History(c.Request.Context(), userID)
	if err != nil {
		logger.Error("check-in history failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, history)
}

// @Summary Trigger check-in sweep
// @Tags CheckIn
// @Description Run one scheduler sweep immediately; absent in production
// @Produce  json
// @Success 200
// @Failure 500
// @Router /check-in/trigger [post]
func (h *Handler) checkInTrigger(c *gin.Context) {
	if err := h.workers.CheckInScheduler.Run(c.Request.Context()); err != nil {
		logger.Error("manual sweep failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}
