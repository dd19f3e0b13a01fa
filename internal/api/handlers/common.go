package handlers

import (
	"errors"
	"time"

	"finledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// respondServiceError maps service-layer failures onto HTTP responses. The
// duplicate guard and the large-amount gate get distinguishable bodies so
// clients can drive their confirmation dialogs off them.
func respondServiceError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return errorJSON(c, fiber.StatusBadRequest, validationErr.Error())
	}

	var dupErr *service.DuplicateError
	if errors.As(err, &dupErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":       dupErr.Error(),
			"duplicate":   true,
			"existing_id": dupErr.ExistingID,
		})
	}

	if errors.Is(err, service.ErrConfirmationRequired) {
		return c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
			"error":                 "Confirmation required for large amount",
			"confirmation_required": true,
		})
	}

	var retryErr *service.RetryExhaustedError
	if errors.As(err, &retryErr) {
		logger.Error("Write retries exhausted", zap.Error(err))
		return errorJSON(c, fiber.StatusServiceUnavailable, "Temporary storage failure, please try again")
	}

	var extErr *service.ExternalServiceError
	if errors.As(err, &extErr) {
		logger.Error("External service failure", zap.String("kind", string(extErr.Kind)), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     "Extraction service failure",
			"kind":      string(extErr.Kind),
			"retryable": extErr.Retryable,
		})
	}

	switch {
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrDebtNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccountLimit),
		errors.Is(err, service.ErrAccountTypeTaken),
		errors.Is(err, service.ErrDuplicateTitle),
		errors.Is(err, service.ErrDebtAlreadySettled),
		errors.Is(err, service.ErrUserExists):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNoValidTransactions):
		return errorJSON(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	logger.Error("Unhandled service error", zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

// parseDateField accepts the date formats the clients send, defaulting to
// now when the field is empty.
func parseDateField(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
