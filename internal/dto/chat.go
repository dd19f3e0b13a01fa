package dto

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// ConfirmChatTransactionRequest records a transaction the assistant proposed
// and the user accepted.
type ConfirmChatTransactionRequest struct {
	AccountID    string `json:"account_id" validate:"required,uuid"`
	Amount       string `json:"amount" validate:"required"`
	Type         string `json:"type" validate:"required,oneof=Income Expenses"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	ConfirmLarge bool   `json:"confirm_large"`
}
