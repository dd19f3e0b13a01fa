package dto

import (
	"time"

	"finledger/internal/models"
)

type CreateDebtRequest struct {
	FriendName string `json:"friend_name" validate:"required,max=100"`
	Amount     string `json:"amount" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=Debt Credit"`
	Date       string `json:"date"`
	DueDate    string `json:"due_date" validate:"required"`
}

type SettleDebtRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

type DebtResponse struct {
	ID         string `json:"id"`
	FriendName string `json:"friend_name"`
	Amount     string `json:"amount"`
	Type       string `json:"type"`
	Date       string `json:"date"`
	DueDate    string `json:"due_date"`
	Paid       bool   `json:"paid"`
	CreatedAt  string `json:"created_at"`
}

type SettleDebtResponse struct {
	Debt        DebtResponse        `json:"debt"`
	Transaction TransactionResponse `json:"transaction"`
}

func NewDebtResponse(debt *models.Debt) DebtResponse {
	return DebtResponse{
		ID:         debt.ID.String(),
		FriendName: debt.FriendName,
		Amount:     debt.Amount.String(),
		Type:       string(debt.Type),
		Date:       debt.Date.Format("2006-01-02"),
		DueDate:    debt.DueDate.Format("2006-01-02"),
		Paid:       debt.Paid,
		CreatedAt:  debt.CreatedAt.Format(time.RFC3339),
	}
}

func NewDebtResponses(debts []models.Debt) []DebtResponse {
	out := make([]DebtResponse, 0, len(debts))
	for i := range debts {
		out = append(out, NewDebtResponse(&debts[i]))
	}
	return out
}
