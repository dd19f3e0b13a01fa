package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtType string

const (
	DebtTypeDebt   DebtType = "Debt"   // money the user owes
	DebtTypeCredit DebtType = "Credit" // money owed to the user
)

type Debt struct {
	ID         uuid.UUID       `db:"id"`
	UserID     uuid.UUID       `db:"user_id"`
	FriendName string          `db:"friend_name"`
	Amount     decimal.Decimal `db:"amount"`
	Type       DebtType        `db:"type"`
	Date       time.Time       `db:"date"`
	DueDate    time.Time       `db:"due_date"`
	Paid       bool            `db:"paid"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (t DebtType) Valid() bool {
	return t == DebtTypeDebt || t == DebtTypeCredit
}
