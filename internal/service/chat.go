package service

import (
	"context"

	"finledger/internal/models"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatModel generates assistant replies grounded in the user's ledger.
type ChatModel interface {
	GenerateChatResponse(ctx context.Context, chatCtx ChatContext, message string) (string, error)
}

// ChatService answers questions about the user's finances and records
// chat-confirmed transactions through the normal writer pipeline.
type ChatService struct {
	model    ChatModel
	ledger   *LedgerService
	accounts AccountStore
	insights *InsightsService
	logger   *zap.Logger
}

func NewChatService(model ChatModel, ledger *LedgerService, accounts AccountStore, insights *InsightsService, logger *zap.Logger) *ChatService {
	return &ChatService{
		model:    model,
		ledger:   ledger,
		accounts: accounts,
		insights: insights,
		logger:   logger,
	}
}

// Respond builds the grounding context and asks the model for a reply.
func (s *ChatService) Respond(ctx context.Context, userID uuid.UUID, history []gigago.Message, message string) (string, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	transactions, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	summary, err := s.insights.Summary(ctx, userID)
	if err != nil {
		s.logger.Warn("Chat proceeding without insights summary", zap.Error(err))
		summary = nil
	}

	return s.model.GenerateChatResponse(ctx, ChatContext{
		History:      history,
		Summary:      summary,
		Transactions: transactions,
		Accounts:     accounts,
	}, message)
}

// ConfirmTransaction writes a transaction the user approved in chat. It goes
// through the full writer pipeline, so the duplicate guard and large-amount
// gate apply.
func (s *ChatService) ConfirmTransaction(ctx context.Context, userID uuid.UUID, intent WriteIntent) (*models.Transaction, error) {
	intent.Source = models.SourceAIChat
	return s.ledger.Create(ctx, userID, intent)
}
