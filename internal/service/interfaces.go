package service

import (
	"context"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceAdjustment captures the account-side effect of one logical write.
// The store applies it together with the transaction row change in a single
// database transaction; income/expense totals are clamped at zero.
type BalanceAdjustment struct {
	AccountID    uuid.UUID
	BalanceDelta decimal.Decimal
	IncomeDelta  decimal.Decimal
	ExpenseDelta decimal.Decimal
}

// DuplicateProbe describes the match key used by the duplicate guard.
type DuplicateProbe struct {
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	Type        models.TransactionType
	Since       time.Time
}

// LedgerStore persists transactions atomically with their account
// adjustment.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction, adj BalanceAdjustment) error
	UpdateTransaction(ctx context.Context, tx *models.Transaction, adj BalanceAdjustment) error
	DeleteTransaction(ctx context.Context, userID, txID uuid.UUID, adj BalanceAdjustment) error
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error)
	ListByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]models.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	FindRecentMatches(ctx context.Context, probe DuplicateProbe) ([]models.Transaction, error)
}

// AccountStore persists accounts.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, userID, accountID uuid.UUID) (*models.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
	// DeleteCascade removes the account and every transaction referencing
	// it, returning the distinct expense category labels that lost
	// references.
	DeleteCascade(ctx context.Context, userID, accountID uuid.UUID) ([]string, error)
}

// CategoryStore persists canonical categories.
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	Touch(ctx context.Context, categoryID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, categoryID uuid.UUID) error
	CountExpenseRefs(ctx context.Context, userID uuid.UUID, name string) (int64, error)
}

// DebtStore persists debts.
type DebtStore interface {
	Create(ctx context.Context, debt *models.Debt) error
	GetByID(ctx context.Context, userID, debtID uuid.UUID) (*models.Debt, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Debt, error)
	MarkPaid(ctx context.Context, userID, debtID uuid.UUID, at time.Time) error
}

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// DocumentStore persists uploaded document records.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Document, error)
}

// RawItem is one line item as returned by the external extraction service,
// before any validation.
type RawItem struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Category    string `json:"category"`
}

// Extractor turns a document into raw line items.
type Extractor interface {
	ExtractTransactions(ctx context.Context, filePath string, isStatement bool) ([]RawItem, error)
}

// CategoryInferrer guesses a category label for a free-text description.
type CategoryInferrer interface {
	InferCategory(ctx context.Context, description string) (string, error)
}

// InsightsInvalidator drops cached derived-insights data for a user so
// subsequent reads recompute. Failures are non-fatal.
type InsightsInvalidator interface {
	Invalidate(userID uuid.UUID)
}
