package handlers

import (
	"finledger/internal/dto"
	"finledger/internal/models"
	"finledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accounts *service.AccountService
	logger   *zap.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

func (h *AccountHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	initial, err := parseOptionalDecimal(req.InitialBalance)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid initial balance")
	}
	goal, err := parseOptionalDecimal(req.GoalAmount)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid goal amount")
	}

	account, err := h.accounts.Create(c.Context(), userID, service.CreateAccountInput{
		Type:           models.AccountType(req.Type),
		Title:          req.Title,
		InitialBalance: initial,
		GoalAmount:     goal,
	})
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewAccountResponse(account))
}

func (h *AccountHandler) Get(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid account ID")
	}

	account, err := h.accounts.Get(c.Context(), userID, accountID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.JSON(dto.NewAccountResponse(account))
}

func (h *AccountHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	accounts, err := h.accounts.List(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.JSON(dto.NewAccountResponses(accounts))
}

func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid account ID")
	}

	if err := h.accounts.Delete(c.Context(), userID, accountID); err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseOptionalDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
