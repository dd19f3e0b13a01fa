package service

import (
	"context"
	"testing"
	"time"

	"finledger/internal/models"
	"finledger/pkg/cache"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func seedTx(store *memStore, userID uuid.UUID, amount int64, txType models.TransactionType, category string) {
	tx := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       uuid.New(),
		UserID:          userID,
		Amount:          decimal.NewFromInt(amount),
		Type:            txType,
		Category:        category,
		Date:            time.Now(),
		ClientTimestamp: time.Now(),
		CreatedAt:       time.Now(),
	}
	store.txs[tx.ID] = tx
}

func TestInsightsSummary(t *testing.T) {
	store := newMemStore()
	userID := uuid.New()
	svc := NewInsightsService(store, cache.NewMemory(), zap.NewNop())

	seedTx(store, userID, 1000, models.TypeIncome, "")
	seedTx(store, userID, 300, models.TypeExpenses, "Groceries")
	seedTx(store, userID, 200, models.TypeExpenses, "Groceries")
	seedTx(store, userID, 50, models.TypeExpenses, "")
	seedTx(store, uuid.New(), 999, models.TypeExpenses, "Dining") // other user

	summary, err := svc.Summary(context.Background(), userID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !summary.TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("income = %s, want 1000", summary.TotalIncome)
	}
	if !summary.TotalExpenses.Equal(decimal.NewFromInt(550)) {
		t.Errorf("expenses = %s, want 550", summary.TotalExpenses)
	}
	if !summary.Net.Equal(decimal.NewFromInt(450)) {
		t.Errorf("net = %s, want 450", summary.Net)
	}
	if !summary.ByCategory["Groceries"].Equal(decimal.NewFromInt(500)) {
		t.Errorf("Groceries = %s, want 500", summary.ByCategory["Groceries"])
	}
	if !summary.ByCategory[models.Uncategorized].Equal(decimal.NewFromInt(50)) {
		t.Errorf("Uncategorized = %s, want 50", summary.ByCategory[models.Uncategorized])
	}
	if summary.Count != 4 {
		t.Errorf("count = %d, want 4", summary.Count)
	}
}

func TestInsightsCacheAndInvalidate(t *testing.T) {
	store := newMemStore()
	userID := uuid.New()
	svc := NewInsightsService(store, cache.NewMemory(), zap.NewNop())
	ctx := context.Background()

	seedTx(store, userID, 100, models.TypeIncome, "")
	first, err := svc.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	// New data is invisible until the cache is invalidated.
	seedTx(store, userID, 50, models.TypeExpenses, "Dining")
	cached, err := svc.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("cached Summary: %v", err)
	}
	if cached.Count != first.Count {
		t.Errorf("cached count = %d, want stale %d", cached.Count, first.Count)
	}

	svc.Invalidate(userID)
	fresh, err := svc.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("fresh Summary: %v", err)
	}
	if fresh.Count != 2 {
		t.Errorf("fresh count = %d, want 2", fresh.Count)
	}
}

func TestInsightsCorruptCacheRecomputes(t *testing.T) {
	store := newMemStore()
	userID := uuid.New()
	mem := cache.NewMemory()
	svc := NewInsightsService(store, mem, zap.NewNop())

	seedTx(store, userID, 100, models.TypeIncome, "")
	mem.Set(insightsKey(userID), "{not json")

	summary, err := svc.Summary(context.Background(), userID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Count != 1 {
		t.Errorf("count = %d, want recomputed 1", summary.Count)
	}
}
