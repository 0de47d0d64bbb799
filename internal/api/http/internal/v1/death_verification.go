package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/pkg/logger"
)

func (h *Handler) initDeathVerificationRoutes(api *gin.RouterGroup) {
	verification := api.Group("/death-verification")

	// Verifiers paste the mailed code, there is no session to carry.
	verification.POST("/confirm", h.deathVerificationConfirm)
}

type deathVerificationConfirmRequest struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	ContactID string `json:"contact_id" binding:"required,uuid"`
	Code      string `json:"code" binding:"required,min=4,max=10"`
}

type deathVerificationConfirmResponse struct {
	Confirmed bool `json:"confirmed"`
	Released  bool `json:"released"`
}

// @Summary Confirm death report
// @Tags DeathVerification
// @Description One verifier's code; once the quorum is reached the wills are released
// @Accept  json
// @Produce  json
// @Param input body deathVerificationConfirmRequest true "verifier code"
// @Success 200 {object} deathVerificationConfirmResponse
// @Failure 400 {object} ErrorStruct
// @Failure 500
// @Router /death-verification/confirm [post]
func (h *Handler) deathVerificationConfirm(c *gin.Context) {
	var req deathVerificationConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	userID := uuid.MustParse(req.UserID)
	contactID := uuid.MustParse(req.ContactID)

	released, err := h.services.DeathVerifications.Confirm(c.Request.Context(), userID, contactID, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrOTPInvalid) {
			errorResponse(c, OTPInvalidCode)
			return
		}
		logger.Error("death verification confirm failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, deathVerificationConfirmResponse{
		Confirmed: true,
		Released:  released,
	})
}
