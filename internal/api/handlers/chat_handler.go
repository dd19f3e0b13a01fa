package handlers

import (
	"finledger/internal/dto"
	"finledger/internal/service"

	"github.com/Role1776/gigago"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chat   *service.ChatService
	logger *zap.Logger
}

func NewChatHandler(chat *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

func (h *ChatHandler) Message(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Message == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Message is required")
	}

	history := make([]gigago.Message, 0, len(req.History))
	for _, m := range req.History {
		role := gigago.RoleUser
		if m.Role == "assistant" {
			role = "assistant"
		}
		history = append(history, gigago.Message{Role: role, Content: m.Content})
	}

	reply, err := h.chat.Respond(c.Context(), userID, history, req.Message)
	if err != nil {
		h.logger.Error("Chat response failed", zap.Error(err))
		return errorJSON(c, fiber.StatusBadGateway, "Assistant is unavailable")
	}

	return c.JSON(dto.ChatResponse{Reply: reply})
}

// ConfirmTransaction records a transaction proposed in chat after the user
// accepts it. It runs through the normal writer, so duplicate and
// large-amount protections still apply.
func (h *ChatHandler) ConfirmTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ConfirmChatTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid account ID")
	}

	intent, err := buildIntent(req.Amount, req.Type, req.Category, req.Description, req.Date, req.ConfirmLarge)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	intent.AccountID = accountID

	tx, err := h.chat.ConfirmTransaction(c.Context(), userID, intent)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}
