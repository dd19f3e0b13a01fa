package service

import (
	"context"
	"strings"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService manages the user's accounts: at most three, one per type,
// with case-insensitively unique titles.
type AccountService struct {
	store      AccountStore
	categories *CategoryService
	insights   InsightsInvalidator
	logger     *zap.Logger
}

func NewAccountService(store AccountStore, categories *CategoryService, insights InsightsInvalidator, logger *zap.Logger) *AccountService {
	return &AccountService{
		store:      store,
		categories: categories,
		insights:   insights,
		logger:     logger,
	}
}

// CreateInput describes a requested account.
type CreateAccountInput struct {
	Type           models.AccountType
	Title          string
	InitialBalance decimal.Decimal
	GoalAmount     decimal.Decimal
}

func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, in CreateAccountInput) (*models.Account, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}
	if !in.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: "must be balance, income_tracker, or savings_goal"}
	}

	existing, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= models.MaxAccountsPerUser {
		return nil, ErrAccountLimit
	}
	for _, acc := range existing {
		if acc.Type == in.Type {
			return nil, ErrAccountTypeTaken
		}
		if strings.EqualFold(acc.Title, title) {
			return nil, ErrDuplicateTitle
		}
	}

	now := time.Now()
	account := &models.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           in.Type,
		Title:          title,
		CurrentBalance: in.InitialBalance,
		GoalAmount:     in.GoalAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Type == models.AccountTypeSavingsGoal {
		account.CurrentAmount = in.InitialBalance
	}

	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created",
		zap.String("account_id", account.ID.String()),
		zap.String("type", string(account.Type)),
	)
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, userID, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.store.GetByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	return s.store.ListByUser(ctx, userID)
}

// Delete removes the account together with every transaction referencing it,
// then sweeps the categories those transactions pointed at.
func (s *AccountService) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	account, err := s.store.GetByID(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	orphanedLabels, err := s.store.DeleteCascade(ctx, userID, accountID)
	if err != nil {
		return err
	}

	if len(orphanedLabels) > 0 {
		s.categories.CleanupEmptyCategories(ctx, userID, orphanedLabels...)
	}
	if s.insights != nil {
		s.insights.Invalidate(userID)
	}

	s.logger.Info("Account deleted with cascade",
		zap.String("account_id", accountID.String()),
		zap.Int("orphaned_categories", len(orphanedLabels)),
	)
	return nil
}
