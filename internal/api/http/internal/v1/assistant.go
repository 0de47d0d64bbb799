package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/service/assistant"
	"github.com/everkeep/backend/pkg/logger"
)

func (h *Handler) initAssistantRoutes(api *gin.RouterGroup) {
	routes := api.Group("/assistant", h.userIdentityMiddleware)

	routes.POST("/chat", h.assistantChat)
}

type assistantMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required,max=8192"`
}

type assistantChatRequest struct {
	Messages []assistantMessage `json:"messages" binding:"required,min=1,max=50,dive"`
}

type assistantChatResponse struct {
	Message assistant.Message `json:"message"`
}

// @Summary Assistant chat
// @Tags Assistant
// @Description Forward the conversation to the configured model
// @Accept  json
// @Produce  json
// @Param input body assistantChatRequest true "conversation"
// @Success 200 {object} assistantChatResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 503 {object} ErrorStruct
// @Security UserAuth
// @Router /assistant/chat [post]
func (h *Handler) assistantChat(c *gin.Context) {
	if h.assistantClient == nil {
		errorResponseWithStatus(c, http.StatusServiceUnavailable, AssistantUnavailableCode)
		return
	}

	var req assistantChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	messages := make([]assistant.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = assistant.Message{Role: m.Role, Content: m.Content}
	}

	resp, err := h.assistantClient.Chat(c.Request.Context(), messages)
	if err != nil {
		logger.Error("assistant chat failed", zap.Error(err))
		errorResponseWithStatus(c, http.StatusServiceUnavailable, AssistantUnavailableCode)
		return
	}

	if len(resp.Choices) == 0 {
		errorResponseWithStatus(c, http.StatusServiceUnavailable, AssistantUnavailableCode)
		return
	}

	c.JSON(http.StatusOK, assistantChatResponse{Message: resp.Choices[0].Message})
}
