package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBalance       AccountType = "balance"
	AccountTypeIncomeTracker AccountType = "income_tracker"
	AccountTypeSavingsGoal   AccountType = "savings_goal"
)

// MaxAccountsPerUser caps the accounts a single user may hold, one per type.
const MaxAccountsPerUser = 3

type Account struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	Type           AccountType     `db:"type"`
	Title          string          `db:"title"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	TotalIncome    decimal.Decimal `db:"total_income"`
	TotalExpenses  decimal.Decimal `db:"total_expenses"`
	GoalAmount     decimal.Decimal `db:"goal_amount"`
	CurrentAmount  decimal.Decimal `db:"current_amount"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBalance, AccountTypeIncomeTracker, AccountTypeSavingsGoal:
		return true
	}
	return false
}
