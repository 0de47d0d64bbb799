package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/pkg/logger"
)

func (h *Handler) initContactsRoutes(api *gin.RouterGroup) {
	contacts := api.Group("/contacts")

	contacts.POST("", h.userIdentityMiddleware, h.contactAdd)
	contacts.GET("", h.userIdentityMiddleware, h.contactList)

	// Invitation links are followed from email, no session required.
	contacts.GET("/invitations/accept", h.contactAccept)
	contacts.GET("/invitations/decline", h.contactDecline)
}

type addContactRequest struct {
	Role            string `json:"role" binding:"required,oneof=beneficiary executor"`
	FullName        string `json:"full_name" binding:"required,min=2,max=255"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Relationship    string `json:"relationship" binding:"max=255"`
	IsDeathVerifier bool   `json:"is_death_verifier"`
}

// @Summary Add contact
// @Tags Contacts
// @Description Register a beneficiary or executor and mail them an invitation
// @Accept  json
// @Produce  json
// @Param input body addContactRequest true "contact info"
// @Success 201 {object} domain.Contact
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 500
// @Security UserAuth
// @Router /contacts [post]
func (h *Handler) contactAdd(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req addContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	contact, err := h.services.Contacts.Add(c.Request.Context(), userID, service.AddContactInput{
		Role:            domain.ContactRole(req.Role),
		FullName:        req.FullName,
		Email:           req.Email,
		Relationship:    req.Relationship,
		IsDeathVerifier: req.IsDeathVerifier,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyVerifiers):
			errorResponse(c, VerifierLimitReachedCode)
		case errors.Is(err, service.ErrUserNotFound):
			errorResponseWithStatus(c, http.StatusNotFound, UserNotFoundCode)
		default:
			logger.Error("add contact failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// @Summary List contacts
// @Tags Contacts
// @Description All contacts of the authenticated user
// @Accept  json
// @Produce  json
// @Success 200 {array} domain.Contact
// @Failure 401
// @Failure 500
// @Security UserAuth
// @Router /contacts [get]
func (h *Handler) contactList(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	contacts, err := h.services.Contacts.GetAllByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("list contacts failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// @Summary Accept invitation
// @Tags Contacts
// @Description Confirm the invitation from the emailed link
// @Accept  json
// @Produce  json
// @Param token query string true "invitation token"
// @Success 200
// @Failure 400 {object} ErrorStruct
// @Failure 500
// @Router /contacts/invitations/accept [get]
func (h *Handler) contactAccept(c *gin.Context) {
	h.resolveInvitation(c, h.services.Contacts.Accept)
}

// @Summary Decline invitation
// @Tags Contacts
// @Description Decline the invitation from the emailed link
// @Accept  json
// @Produce  json
// @Param token query string true "invitation token"
// @Success 200
// @Failure 400 {object} ErrorStruct
// @Failure 500
// @Router /contacts/invitations/decline [get]
func (h *Handler) contactDecline(c *gin.Context) {
	h.resolveInvitation(c, h.services.Contacts.Decline)
}

func (h *Handler) resolveInvitation(c *gin.Context, resolve func(ctx context.Context, token string) error) {
	token := c.Query("token")
	if token == "" {
		errorResponse(c, InvitationInvalidCode)
		return
	}

	if err := resolve(c.Request.Context(), token); err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationInvalid), errors.Is(err, service.ErrContactNotFound):
			errorResponse(c, InvitationInvalidCode)
		default:
			logger.Error("resolve invitation failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)
}
