package service

import (
	"context"
	"encoding/json"

	"finledger/internal/models"
	"finledger/pkg/cache"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InsightsSummary is the derived aggregate view over a user's transactions.
// It is always reconstructable from the transaction set; the cache is only
// an optimization.
type InsightsSummary struct {
	TotalIncome   decimal.Decimal            `json:"totalIncome"`
	TotalExpenses decimal.Decimal            `json:"totalExpenses"`
	Net           decimal.Decimal            `json:"net"`
	ByCategory    map[string]decimal.Decimal `json:"byCategory"`
	Count         int                        `json:"count"`
}

// InsightsService computes per-user spending summaries with a
// non-authoritative cache in front.
type InsightsService struct {
	store  LedgerStore
	cache  cache.Cache
	logger *zap.Logger
}

func NewInsightsService(store LedgerStore, c cache.Cache, logger *zap.Logger) *InsightsService {
	return &InsightsService{
		store:  store,
		cache:  c,
		logger: logger,
	}
}

func insightsKey(userID uuid.UUID) string {
	return "insights:" + userID.String()
}

// Summary returns the cached summary when present, recomputing otherwise.
func (s *InsightsService) Summary(ctx context.Context, userID uuid.UUID) (*InsightsSummary, error) {
	if cached, ok := s.cache.Get(insightsKey(userID)); ok {
		var summary InsightsSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
		// Corrupt cache entry; drop it and recompute.
		s.cache.Remove(insightsKey(userID))
	}

	transactions, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &InsightsSummary{
		ByCategory: make(map[string]decimal.Decimal),
		Count:      len(transactions),
	}
	for _, tx := range transactions {
		switch tx.Type {
		case models.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		case models.TypeExpenses:
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
			label := tx.Category
			if label == "" {
				label = models.Uncategorized
			}
			summary.ByCategory[label] = summary.ByCategory[label].Add(tx.Amount)
		}
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpenses)

	if encoded, err := json.Marshal(summary); err == nil {
		s.cache.Set(insightsKey(userID), string(encoded))
	}
	return summary, nil
}

// Invalidate drops the cached summary so the next read recomputes. It
// implements InsightsInvalidator and never fails the caller.
func (s *InsightsService) Invalidate(userID uuid.UUID) {
	s.cache.Remove(insightsKey(userID))
}
