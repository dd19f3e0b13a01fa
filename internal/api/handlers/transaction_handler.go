package handlers

import (
	"time"

	"finledger/internal/dto"
	"finledger/internal/models"
	"finledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewTransactionHandler(ledger *service.LedgerService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledger: ledger,
		logger: logger,
	}
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateTransactionRequest
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
	intent.Source = models.SourceManual
	intent.ClientTimestamp = parseClientTimestamp(req.ClientTimestamp)

	tx, err := h.ledger.Create(c.Context(), userID, intent)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	txID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid transaction ID")
	}

	var req dto.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	intent, err := buildIntent(req.Amount, req.Type, req.Category, req.Description, req.Date, req.ConfirmLarge)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	tx, err := h.ledger.Update(c.Context(), userID, txID, intent)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	txID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid transaction ID")
	}

	if err := h.ledger.Delete(c.Context(), userID, txID); err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if accountIDStr := c.Query("account_id"); accountIDStr != "" {
		accountID, err := uuid.Parse(accountIDStr)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid account ID")
		}
		txs, err := h.ledger.ListByAccount(c.Context(), userID, accountID)
		if err != nil {
			return respondServiceError(c, h.logger, err)
		}
		return c.JSON(dto.NewTransactionResponses(txs))
	}

	txs, err := h.ledger.ListByUser(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}
	return c.JSON(dto.NewTransactionResponses(txs))
}

func buildIntent(amount, txType, category, description, date string, confirmLarge bool) (service.WriteIntent, error) {
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return service.WriteIntent{}, &service.ValidationError{Field: "amount", Reason: "must be a decimal number"}
	}

	when, err := parseDateField(date)
	if err != nil {
		return service.WriteIntent{}, &service.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD or RFC3339"}
	}

	return service.WriteIntent{
		Amount:         parsed,
		Type:           models.TransactionType(txType),
		Category:       category,
		Description:    description,
		Date:           when,
		ConfirmedLarge: confirmLarge,
	}, nil
}

func parseClientTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Now()
}
