package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/pkg/logger"
)

const refreshTokenCookie = "refresh_token"

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")

	users.POST("/sign-up", h.userSignUp)
	users.POST("/verify-email", h.userVerifyEmail)
	users.POST("/sign-in", h.userSignIn)
	users.POST("/refresh", h.userRefresh)
	users.GET("/me", h.userIdentityMiddleware, h.userMe)
}

type userSignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
}

// @Summary User sign up
// @Tags Users
// @Description Register a new account; a verification code is mailed
// @Accept  json
// @Produce  json
// @Param input body userSignUpRequest true "account info"
// @Success 201
// @Failure 400 {object} ErrorStruct
// @Failure 500
// @Router /users/sign-up [post]
func (h *Handler) userSignUp(c *gin.Context) {
	var req userSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	err := h.services.Users.SignUp(c.Request.Context(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExist) {
			errorResponse(c, UserAlreadyExistsCode)
			return
		}
		logger.Error("sign up failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusCreated)
}

type userVerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,min=4,max=10"`
}

// @Summary Verify email
// @Tags Users
// @Description Confirm the mailed verification code
// @Accept  json
// @Produce  json
// @Param input body userVerifyEmailRequest true "email and code"
// @Success 200
// @Failure 400 {object} ErrorStruct
// @Failure 500
// @Router /users/verify-email [post]
func (h *Handler) userVerifyEmail(c *gin.Context) {
	var req userVerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	err := h.services.Users.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			errorResponse(c, UserNotFoundCode)
		case errors.Is(err, service.ErrVerificationCode):
			errorResponse(c, VerificationCodeInvalidCode)
		default:
			logger.Error("verify email failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)
}

type userSignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userAuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken uuid.UUID `json:"refresh_token"`
}

// @Summary User sign in
// @Tags Users
// @Description Exchange credentials for an access token pair
// @Accept  json
// @Produce  json
// @Param input body userSignInRequest true "credentials"
// @Success 200 {object} userAuthResponse
// @Failure 400 {object} ErrorStruct
// @Failure 500
// @Router /users/sign-in [post]
func (h *Handler) userSignIn(c *gin.Context) {
	var req userSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	tokens, err := h.services.Users.SignIn(c.Request.Context(), service.SignInInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		UserIP:    c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIncorrectCredentials):
			errorResponse(c, IncorrectCredentialsCode)
		case errors.Is(err, service.ErrEmailNotVerified):
			errorResponse(c, EmailNotVerifiedCode)
		default:
			logger.Error("sign in failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	h.setRefreshCookie(c, tokens)

	c.JSON(http.StatusOK, userAuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// @Summary Refresh session
// @Tags Users
// @Description Rotate the refresh token from the cookie
// @Accept  json
// @Produce  json
// @Success 200 {object} userAuthResponse
// @Failure 400 {object} ErrorStruct
// @Failure 500
// @Router /users/refresh [post]
func (h *Handler) userRefresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil {
		errorResponse(c, RefreshTokenExpiredCode)
		return
	}

	tokens, err := h.services.Users.Refresh(c.Request.Context(), refreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) {
			errorResponse(c, RefreshTokenExpiredCode)
			return
		}
		logger.Error("refresh failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.setRefreshCookie(c, tokens)

	c.JSON(http.StatusOK, userAuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

type userMeResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	EmailVerified  bool      `json:"email_verified"`
	LastCheckIn    *string   `json:"last_check_in,omitempty"`
	NextCheckInDue *string   `json:"next_check_in_due,omitempty"`
}

// @Summary Current user
// @Tags Users
// @Description Profile of the authenticated user
// @Accept  json
// @Produce  json
// @Success 200 {object} userMeResponse
// @Failure 401
// @Failure 500
// @Security UserAuth
// @Router /users/me [get]
func (h *Handler) userMe(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.services.Users.GetOneByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			errorResponseWithStatus(c, http.StatusNotFound, UserNotFoundCode)
			return
		}
		logger.Error("get user failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	resp := userMeResponse{
		ID:            user.ID,
		Email:         user.Email,
		FullName:      user.FullName,
		EmailVerified: user.EmailVerified,
	}
	if user.LastCheckIn != nil {
		v := user.LastCheckIn.Format(time.RFC3339)
		resp.LastCheckIn = &v
	}
	if user.NextCheckInDue != nil {
		v := user.NextCheckInDue.Format(time.RFC3339)
		resp.NextCheckInDue = &v
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) setRefreshCookie(c *gin.Context, tokens *service.Tokens) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		refreshTokenCookie,
		tokens.RefreshToken.String(),
		int(tokens.RefreshTTL.Seconds()),
		"/api/v1/users",
		"",
		false,
		true,
	)
}
