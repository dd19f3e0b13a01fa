package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	items []RawItem
	err   error
}

func (f *fakeExtractor) ExtractTransactions(ctx context.Context, filePath string, isStatement bool) ([]RawItem, error) {
	return f.items, f.err
}

type fakeInferrer struct {
	label string
	err   error
	calls int
}

func (f *fakeInferrer) InferCategory(ctx context.Context, description string) (string, error) {
	f.calls++
	return f.label, f.err
}

func newTestImporter(t *testing.T, extractor Extractor, inferrer CategoryInferrer) (*ImportService, *memStore, *models.Account, uuid.UUID) {
	t.Helper()
	ledger, store, account, userID := newTestLedger(t)
	return NewImportService(ledger, extractor, inferrer, zap.NewNop()), store, account, userID
}

func TestImportBatchPartialTolerance(t *testing.T) {
	imp, store, account, userID := newTestImporter(t, nil, nil)

	items := []RawItem{
		{Date: "2024-03-01", Description: "grocery store", Amount: "45.20", Category: "Groceries"},
		{Date: "2024-03-02", Description: "bus ticket", Amount: "2.75", Category: "Transport"},
		{Date: "2024-03-03", Description: "mystery line", Amount: "N/A"},
		{Date: "2024-03-04", Description: "pharmacy", Amount: "$12.99", Category: "Pharmacy"},
		{Date: "2024-03-05", Description: "cinema", Amount: "16.00", Category: "Entertainment"},
	}

	result, err := imp.ImportBatch(context.Background(), userID, account.ID, items, false)
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if result.SavedCount != 4 {
		t.Errorf("SavedCount = %d, want 4", result.SavedCount)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if !result.Results[2].Skipped {
		t.Error("invalid-amount item not marked skipped")
	}
	if len(store.txs) != 4 {
		t.Errorf("got %d stored transactions, want 4", len(store.txs))
	}
}

func TestImportBatchAllInvalid(t *testing.T) {
	imp, _, account, userID := newTestImporter(t, nil, nil)

	items := []RawItem{
		{Amount: "N/A"},
		{Amount: ""},
		{Amount: "0.00"},
	}

	result, err := imp.ImportBatch(context.Background(), userID, account.ID, items, false)
	if !errors.Is(err, ErrNoValidTransactions) {
		t.Fatalf("got %v, want ErrNoValidTransactions", err)
	}
	if result == nil || result.Total != 3 {
		t.Errorf("result should still carry per-item outcomes")
	}
}

func TestImportStatementSignsDecideType(t *testing.T) {
	imp, store, account, userID := newTestImporter(t, nil, nil)

	items := []RawItem{
		{Date: "2024-03-01", Description: "salary", Amount: "2500.00"},
		{Date: "2024-03-02", Description: "rent", Amount: "-1200.00", Category: "Rent"},
		{Date: "2024-03-03", Description: "card payment", Amount: "$-12.00"},
		{Date: "2024-03-04", Description: "service fee", Amount: "(8.00)"},
	}

	result, err := imp.ImportBatch(context.Background(), userID, account.ID, items, true)
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if result.SavedCount != 4 {
		t.Fatalf("SavedCount = %d, want 4", result.SavedCount)
	}

	byDesc := make(map[string]*models.Transaction)
	for _, tx := range store.txs {
		byDesc[tx.Description] = tx
	}
	if byDesc["salary"].Type != models.TypeIncome {
		t.Error("positive statement amount should become Income")
	}
	for _, desc := range []string{"rent", "card payment", "service fee"} {
		if byDesc[desc].Type != models.TypeExpenses {
			t.Errorf("%s: negative statement amount should become Expenses", desc)
		}
		if byDesc[desc].Amount.IsNegative() {
			t.Errorf("%s: stored amount should be the magnitude, not the signed value", desc)
		}
	}
}

func TestImportReceiptIsAlwaysExpenses(t *testing.T) {
	imp, store, account, userID := newTestImporter(t, nil, nil)

	items := []RawItem{{Date: "2024-03-01", Description: "refund?", Amount: "30.00"}}
	if _, err := imp.ImportBatch(context.Background(), userID, account.ID, items, false); err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	for _, tx := range store.txs {
		if tx.Type != models.TypeExpenses {
			t.Errorf("receipt item stored as %s, want Expenses", tx.Type)
		}
	}
}

func TestImportInfersMissingCategory(t *testing.T) {
	inferrer := &fakeInferrer{label: "Groceries"}
	imp, store, account, userID := newTestImporter(t, nil, inferrer)

	items := []RawItem{{Date: "2024-03-01", Description: "supermarket", Amount: "20.00"}}
	if _, err := imp.ImportBatch(context.Background(), userID, account.ID, items, false); err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if inferrer.calls != 1 {
		t.Errorf("inferrer called %d times, want 1", inferrer.calls)
	}
	for _, tx := range store.txs {
		if tx.Category != "Groceries" {
			t.Errorf("category = %q, want inferred Groceries", tx.Category)
		}
	}
}

func TestImportInferenceFailureFallsBack(t *testing.T) {
	inferrer := &fakeInferrer{err: errors.New("model offline")}
	imp, store, account, userID := newTestImporter(t, nil, inferrer)

	items := []RawItem{{Date: "2024-03-01", Description: "supermarket", Amount: "20.00"}}
	if _, err := imp.ImportBatch(context.Background(), userID, account.ID, items, false); err != nil {
		t.Fatalf("inference failure must not fail the item: %v", err)
	}
	for _, tx := range store.txs {
		if tx.Category != models.Uncategorized {
			t.Errorf("category = %q, want Uncategorized", tx.Category)
		}
	}
}

func TestImportBadDateFallsBackToToday(t *testing.T) {
	imp, store, account, userID := newTestImporter(t, nil, nil)

	items := []RawItem{{Date: "sometime last week", Description: "coffee", Amount: "4.50"}}
	if _, err := imp.ImportBatch(context.Background(), userID, account.ID, items, false); err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	for _, tx := range store.txs {
		if time.Since(tx.Date) > time.Minute {
			t.Errorf("date = %s, want today fallback", tx.Date)
		}
	}
}

func TestImportDocumentClassifiesExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("request failed with status 429: too many requests")}
	imp, _, account, userID := newTestImporter(t, extractor, nil)

	_, err := imp.ImportDocument(context.Background(), userID, account.ID, "receipt.jpg", false)
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("got %v, want ExternalServiceError", err)
	}
	if svcErr.Kind != KindRateLimit {
		t.Errorf("Kind = %s, want rate_limit", svcErr.Kind)
	}
	if !IsRetryable(err) {
		t.Error("rate limit failure should be retryable")
	}
}

func TestImportDocumentRunsBatch(t *testing.T) {
	extractor := &fakeExtractor{items: []RawItem{
		{Date: "2024-03-01", Description: "grocery store", Amount: "45.20", Category: "Groceries"},
	}}
	imp, store, account, userID := newTestImporter(t, extractor, nil)

	result, err := imp.ImportDocument(context.Background(), userID, account.ID, "receipt.jpg", false)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if result.SavedCount != 1 || len(store.txs) != 1 {
		t.Errorf("SavedCount = %d, stored = %d, want 1 and 1", result.SavedCount, len(store.txs))
	}
}
