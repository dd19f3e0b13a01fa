package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DebtService tracks money owed to or by the user. Settling a debt runs the
// same writer pipeline as a normal transaction so the account adjustment and
// the debt flip stay consistent.
type DebtService struct {
	store  DebtStore
	ledger *LedgerService
	logger *zap.Logger
}

func NewDebtService(store DebtStore, ledger *LedgerService, logger *zap.Logger) *DebtService {
	return &DebtService{
		store:  store,
		ledger: ledger,
		logger: logger,
	}
}

type CreateDebtInput struct {
	FriendName string
	Amount     decimal.Decimal
	Type       models.DebtType
	Date       time.Time
	DueDate    time.Time
}

func (s *DebtService) Create(ctx context.Context, userID uuid.UUID, in CreateDebtInput) (*models.Debt, error) {
	if strings.TrimSpace(in.FriendName) == "" {
		return nil, &ValidationError{Field: "friendName", Reason: "is required"}
	}
	if !in.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !in.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: "must be Debt or Credit"}
	}

	now := time.Now()
	debt := &models.Debt{
		ID:         uuid.New(),
		UserID:     userID,
		FriendName: strings.TrimSpace(in.FriendName),
		Amount:     in.Amount,
		Type:       in.Type,
		Date:       in.Date,
		DueDate:    in.DueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, debt); err != nil {
		return nil, err
	}
	return debt, nil
}

func (s *DebtService) List(ctx context.Context, userID uuid.UUID) ([]models.Debt, error) {
	return s.store.ListByUser(ctx, userID)
}

// Settle marks the debt paid and records the settlement as a transaction on
// the given account: paying off a debt is an expense, collecting a credit is
// income.
func (s *DebtService) Settle(ctx context.Context, userID, debtID, accountID uuid.UUID) (*models.Transaction, error) {
	debt, err := s.store.GetByID(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, ErrDebtNotFound
	}
	if debt.Paid {
		return nil, ErrDebtAlreadySettled
	}

	txType := models.TypeExpenses
	if debt.Type == models.DebtTypeCredit {
		txType = models.TypeIncome
	}

	tx, err := s.ledger.Create(ctx, userID, WriteIntent{
		AccountID:       accountID,
		Amount:          debt.Amount,
		Type:            txType,
		Description:     fmt.Sprintf("Settled %s with %s", strings.ToLower(string(debt.Type)), debt.FriendName),
		Date:            time.Now(),
		ClientTimestamp: time.Now(),
		Source:          models.SourceManual,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkPaid(ctx, userID, debtID, time.Now()); err != nil {
		// The settlement transaction landed but the flag did not; report
		// the inconsistency rather than hiding it.
		s.logger.Error("Debt settled but mark-paid failed",
			zap.String("debt_id", debtID.String()),
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
		return tx, err
	}

	return tx, nil
}
