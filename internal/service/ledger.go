package service

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"

	"finledger/internal/models"
	"finledger/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// largeAmountDigits is the integer-part digit count from which a write
// requires explicit confirmation before it may proceed.
const largeAmountDigits = 7

// WriteIntent describes one requested transaction write.
type WriteIntent struct {
	AccountID       uuid.UUID
	Amount          decimal.Decimal
	Type            models.TransactionType
	Category        string
	Description     string
	Date            time.Time
	ClientTimestamp time.Time
	Source          models.TransactionSource
	// ConfirmedLarge must be set by the caller after the user confirms a
	// large-amount intent.
	ConfirmedLarge bool
}

// LedgerService is the transaction writer. Every create, edit, and delete
// applies the transaction row change and the owning account's balance
// adjustment in one atomic store operation, guarded against duplicate
// submission and retried on transient store failures.
type LedgerService struct {
	store      LedgerStore
	accounts   AccountStore
	categories *CategoryService
	insights   InsightsInvalidator
	cfg        config.LedgerConfig
	logger     *zap.Logger
}

func NewLedgerService(
	store LedgerStore,
	accounts AccountStore,
	categories *CategoryService,
	insights InsightsInvalidator,
	cfg config.LedgerConfig,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		store:      store,
		accounts:   accounts,
		categories: categories,
		insights:   insights,
		cfg:        cfg,
		logger:     logger,
	}
}

// Create validates the intent, runs the large-amount gate and the duplicate
// guard, resolves the category for expenses, and persists the transaction
// together with the account adjustment.
func (s *LedgerService) Create(ctx context.Context, userID uuid.UUID, intent WriteIntent) (*models.Transaction, error) {
	if err := s.validate(ctx, userID, intent); err != nil {
		return nil, err
	}

	// Policy gate before any persistence check.
	if requiresConfirmation(intent.Amount) && !intent.ConfirmedLarge {
		return nil, ErrConfirmationRequired
	}

	if dup, err := s.findDuplicate(ctx, userID, intent); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, dup
	}

	category := intent.Category
	if intent.Type == models.TypeExpenses {
		resolved, err := s.categories.Resolve(ctx, userID, intent.Category)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			category = resolved.Name
		} else if strings.TrimSpace(category) == "" {
			category = models.Uncategorized
		}
	} else {
		category = ""
	}

	now := time.Now()
	clientTS := intent.ClientTimestamp
	if clientTS.IsZero() {
		clientTS = now
	}
	source := intent.Source
	if source == "" {
		source = models.SourceManual
	}

	tx := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       intent.AccountID,
		UserID:          userID,
		Amount:          intent.Amount,
		Type:            intent.Type,
		Category:        category,
		Description:     strings.TrimSpace(intent.Description),
		Date:            intent.Date,
		ClientTimestamp: clientTS,
		AddedVia:        source,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	adj := adjustmentFor(intent.AccountID, intent.Type, intent.Amount)

	err := s.persistWithRetry(ctx, userID, &intent, func() error {
		return s.store.CreateTransaction(ctx, tx, adj)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateInsights(userID)
	return tx, nil
}

// Update edits a transaction. The balance effect is computed as one net
// delta: the stored transaction's effect is reversed and the new effect
// applied, both inside a single store operation, so the account is never
// observable half-adjusted.
func (s *LedgerService) Update(ctx context.Context, userID, txID uuid.UUID, intent WriteIntent) (*models.Transaction, error) {
	original, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, ErrTransactionNotFound
	}

	if intent.AccountID == uuid.Nil {
		intent.AccountID = original.AccountID
	} else if intent.AccountID != original.AccountID {
		return nil, &ValidationError{Field: "accountId", Reason: "a transaction cannot be moved to another account"}
	}
	if err := s.validate(ctx, userID, intent); err != nil {
		return nil, err
	}
	if requiresConfirmation(intent.Amount) && !intent.ConfirmedLarge {
		return nil, ErrConfirmationRequired
	}

	category := intent.Category
	if intent.Type == models.TypeExpenses {
		resolved, err := s.categories.Resolve(ctx, userID, intent.Category)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			category = resolved.Name
		} else if strings.TrimSpace(category) == "" {
			category = models.Uncategorized
		}
	} else {
		category = ""
	}

	updated := *original
	updated.Amount = intent.Amount
	updated.Type = intent.Type
	updated.Category = category
	updated.Description = strings.TrimSpace(intent.Description)
	if !intent.Date.IsZero() {
		updated.Date = intent.Date
	}
	updated.UpdatedAt = time.Now()

	// Net adjustment: reverse the original effect, apply the new one.
	reversal := inverseAdjustment(original)
	applied := adjustmentFor(original.AccountID, intent.Type, intent.Amount)
	adj := BalanceAdjustment{
		AccountID:    original.AccountID,
		BalanceDelta: reversal.BalanceDelta.Add(applied.BalanceDelta),
		IncomeDelta:  reversal.IncomeDelta.Add(applied.IncomeDelta),
		ExpenseDelta: reversal.ExpenseDelta.Add(applied.ExpenseDelta),
	}

	err = s.persistWithRetry(ctx, userID, nil, func() error {
		return s.store.UpdateTransaction(ctx, &updated, adj)
	})
	if err != nil {
		return nil, err
	}

	s.categories.CleanupEmptyCategories(ctx, userID, original.Category, updated.Category)
	s.invalidateInsights(userID)
	return &updated, nil
}

// Delete reverses the transaction's effect on the account, removes the row,
// and sweeps the category it referenced.
func (s *LedgerService) Delete(ctx context.Context, userID, txID uuid.UUID) error {
	original, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrTransactionNotFound
	}

	adj := inverseAdjustment(original)
	err = s.persistWithRetry(ctx, userID, nil, func() error {
		return s.store.DeleteTransaction(ctx, userID, txID, adj)
	})
	if err != nil {
		return err
	}

	if original.Type == models.TypeExpenses {
		s.categories.CleanupEmptyCategories(ctx, userID, original.Category)
	}
	s.invalidateInsights(userID)
	return nil
}

// ListByAccount returns the account's transactions.
func (s *LedgerService) ListByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]models.Transaction, error) {
	return s.store.ListByAccount(ctx, userID, accountID)
}

// ListByUser returns all of the user's transactions.
func (s *LedgerService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *LedgerService) validate(ctx context.Context, userID uuid.UUID, intent WriteIntent) error {
	if !intent.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !intent.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "must be Income or Expenses"}
	}
	if intent.AccountID == uuid.Nil {
		return &ValidationError{Field: "accountId", Reason: "is required"}
	}

	account, err := s.accounts.GetByID(ctx, userID, intent.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	return nil
}

// findDuplicate runs the duplicate guard: a transaction matching the intent
// on (amount, description, type, account) within the detection window
// suppresses the write.
func (s *LedgerService) findDuplicate(ctx context.Context, userID uuid.UUID, intent WriteIntent) (*DuplicateError, error) {
	matches, err := s.store.FindRecentMatches(ctx, DuplicateProbe{
		UserID:      userID,
		AccountID:   intent.AccountID,
		Amount:      intent.Amount,
		Description: strings.TrimSpace(intent.Description),
		Type:        intent.Type,
		Since:       time.Now().Add(-s.cfg.DuplicateWindow),
	})
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		s.logger.Info("Duplicate guard suppressed write",
			zap.String("account_id", intent.AccountID.String()),
			zap.String("existing_id", matches[0].ID.String()),
		)
		return &DuplicateError{ExistingID: matches[0].ID.String()}, nil
	}
	return nil, nil
}

// persistWithRetry runs op, retrying transient store failures with
// exponential backoff and jitter. When an intent is given, the duplicate
// guard is re-checked before every retry: a transient failure can mean the
// previous attempt actually landed.
func (s *LedgerService) persistWithRetry(ctx context.Context, userID uuid.UUID, intent *WriteIntent, op func() error) error {
	delay := s.cfg.RetryBaseDelay
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			if intent != nil {
				dup, err := s.findDuplicate(ctx, userID, *intent)
				if err == nil && dup != nil {
					return dup
				}
			}
			jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
			select {
			case <-time.After(delay + jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}

		s.logger.Warn("Transient store failure, will retry",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}

	return &RetryExhaustedError{Attempts: s.cfg.MaxRetries, Last: lastErr}
}

func (s *LedgerService) invalidateInsights(userID uuid.UUID) {
	if s.insights != nil {
		s.insights.Invalidate(userID)
	}
}

// adjustmentFor maps a transaction type and amount to the account deltas:
// income raises the balance and total income, expenses lower the balance and
// raise total expenses.
func adjustmentFor(accountID uuid.UUID, txType models.TransactionType, amount decimal.Decimal) BalanceAdjustment {
	adj := BalanceAdjustment{AccountID: accountID}
	if txType == models.TypeIncome {
		adj.BalanceDelta = amount
		adj.IncomeDelta = amount
	} else {
		adj.BalanceDelta = amount.Neg()
		adj.ExpenseDelta = amount
	}
	return adj
}

// inverseAdjustment reverses a stored transaction's effect.
func inverseAdjustment(tx *models.Transaction) BalanceAdjustment {
	adj := adjustmentFor(tx.AccountID, tx.Type, tx.Amount)
	return BalanceAdjustment{
		AccountID:    adj.AccountID,
		BalanceDelta: adj.BalanceDelta.Neg(),
		IncomeDelta:  adj.IncomeDelta.Neg(),
		ExpenseDelta: adj.ExpenseDelta.Neg(),
	}
}

// requiresConfirmation reports whether the integer part of the amount has
// enough digits to demand explicit user confirmation.
func requiresConfirmation(amount decimal.Decimal) bool {
	digits := len(amount.Abs().Truncate(0).String())
	return digits >= largeAmountDigits
}

// isTransient classifies store errors worth retrying: serialization and
// deadlock conflicts, resource exhaustion, connection-level failures, and
// network timeouts. Validation and constraint errors are not retried.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "57P03":
			return true
		}
		if strings.HasPrefix(pgErr.Code, "53") || strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
