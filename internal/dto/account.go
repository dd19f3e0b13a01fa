package dto

import (
	"time"

	"finledger/internal/models"
)

type CreateAccountRequest struct {
	Type           string `json:"type" validate:"required,oneof=balance income_tracker savings_goal"`
	Title          string `json:"title" validate:"required,max=100"`
	InitialBalance string `json:"initial_balance"`
	GoalAmount     string `json:"goal_amount"`
}

type AccountResponse struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	CurrentBalance string `json:"current_balance"`
	TotalIncome    string `json:"total_income"`
	TotalExpenses  string `json:"total_expenses"`
	GoalAmount     string `json:"goal_amount,omitempty"`
	CurrentAmount  string `json:"current_amount,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func NewAccountResponse(account *models.Account) AccountResponse {
	resp := AccountResponse{
		ID:             account.ID.String(),
		Type:           string(account.Type),
		Title:          account.Title,
		CurrentBalance: account.CurrentBalance.String(),
		TotalIncome:    account.TotalIncome.String(),
		TotalExpenses:  account.TotalExpenses.String(),
		CreatedAt:      account.CreatedAt.Format(time.RFC3339),
	}
	if account.Type == models.AccountTypeSavingsGoal {
		resp.GoalAmount = account.GoalAmount.String()
		resp.CurrentAmount = account.CurrentAmount.String()
	}
	return resp
}

func NewAccountResponses(accounts []models.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, NewAccountResponse(&accounts[i]))
	}
	return out
}
