package dto

import (
	"time"

	"finledger/internal/models"
)

type CreateTransactionRequest struct {
	AccountID       string `json:"account_id" validate:"required,uuid"`
	Amount          string `json:"amount" validate:"required"`
	Type            string `json:"type" validate:"required,oneof=Income Expenses"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Date            string `json:"date"`
	ClientTimestamp string `json:"client_timestamp"`
	// ConfirmLarge acknowledges a previous confirmation_required response
	// for the same payload.
	ConfirmLarge bool `json:"confirm_large"`
}

type UpdateTransactionRequest struct {
	Amount       string `json:"amount" validate:"required"`
	Type         string `json:"type" validate:"required,oneof=Income Expenses"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	ConfirmLarge bool   `json:"confirm_large"`
}

type TransactionResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Date        string `json:"date"`
	AddedVia    string `json:"added_via"`
	CreatedAt   string `json:"created_at"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		AccountID:   tx.AccountID.String(),
		Amount:      tx.Amount.String(),
		Type:        string(tx.Type),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.Format("2006-01-02"),
		AddedVia:    string(tx.AddedVia),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

func NewTransactionResponses(txs []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, NewTransactionResponse(&txs[i]))
	}
	return out
}
