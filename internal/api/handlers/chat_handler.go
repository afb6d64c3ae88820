package handlers

import (
	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/service"
	"invoice-assistant/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Ask about your invoices
// @Description Answers the conversation using the caller's invoices as context. Upstream failures come back as the response text.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Conversation so far"
// @Security Bearer
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /chatbot/ [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req dto.ChatRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	answer := h.chatService.Respond(c.Context(), req.Messages, user)
	return c.JSON(dto.ChatResponse{Response: answer})
}
