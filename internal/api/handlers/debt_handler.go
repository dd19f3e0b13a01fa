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

type DebtHandler struct {
	debts  *service.DebtService
	logger *zap.Logger
}

func NewDebtHandler(debts *service.DebtService, logger *zap.Logger) *DebtHandler {
	return &DebtHandler{
		debts:  debts,
		logger: logger,
	}
}

func (h *DebtHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateDebtRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid amount")
	}
	date, err := parseDateField(req.Date)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid date")
	}
	dueDate, err := parseDateField(req.DueDate)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid due date")
	}

	debt, err := h.debts.Create(c.Context(), userID, service.CreateDebtInput{
		FriendName: req.FriendName,
		Amount:     amount,
		Type:       models.DebtType(req.Type),
		Date:       date,
		DueDate:    dueDate,
	})
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewDebtResponse(debt))
}

func (h *DebtHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	debts, err := h.debts.List(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.JSON(dto.NewDebtResponses(debts))
}

// Settle marks the debt paid and records the offsetting ledger transaction
// on the chosen account.
func (h *DebtHandler) Settle(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	debtID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid debt ID")
	}

	var req dto.SettleDebtRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid account ID")
	}

	tx, err := h.debts.Settle(c.Context(), userID, debtID, accountID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}
