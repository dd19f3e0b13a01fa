package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType carries the sign of a transaction; Amount is always stored
// as a positive magnitude.
type TransactionType string

const (
	TypeIncome   TransactionType = "Income"
	TypeExpenses TransactionType = "Expenses"
)

// TransactionSource records which entry path created a transaction.
type TransactionSource string

const (
	SourceManual          TransactionSource = "manual"
	SourceAIChat          TransactionSource = "ai-chat"
	SourceDocumentExtract TransactionSource = "document-extract"
)

type Transaction struct {
	ID              uuid.UUID         `db:"id"`
	AccountID       uuid.UUID         `db:"account_id"`
	UserID          uuid.UUID         `db:"user_id"`
	Amount          decimal.Decimal   `db:"amount"`
	Type            TransactionType   `db:"type"`
	Category        string            `db:"category"`
	Description     string            `db:"description"`
	Date            time.Time         `db:"date"`
	ClientTimestamp time.Time         `db:"client_timestamp"`
	AddedVia        TransactionSource `db:"added_via"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`
}

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpenses
}

// Signed returns the amount with the sign implied by the transaction type.
func (tx *Transaction) Signed() decimal.Decimal {
	if tx.Type == TypeExpenses {
		return tx.Amount.Neg()
	}
	return tx.Amount
}
