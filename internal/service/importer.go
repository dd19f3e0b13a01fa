package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemResult is the outcome of one batch item.
type ItemResult struct {
	Index         int
	TransactionID uuid.UUID
	Skipped       bool
	Err           error
}

// BatchResult aggregates per-item outcomes. A partially failed batch is a
// normal result, never a full failure.
type BatchResult struct {
	SavedCount int
	Total      int
	Results    []ItemResult
}

// ImportService turns AI-extracted line items into validated transactions,
// pushing each surviving item through the duplicate guard and transaction
// writer independently.
type ImportService struct {
	ledger    *LedgerService
	extractor Extractor
	inferrer  CategoryInferrer
	logger    *zap.Logger
}

func NewImportService(ledger *LedgerService, extractor Extractor, inferrer CategoryInferrer, logger *zap.Logger) *ImportService {
	return &ImportService{
		ledger:    ledger,
		extractor: extractor,
		inferrer:  inferrer,
		logger:    logger,
	}
}

// ImportDocument extracts line items from an uploaded document and imports
// them. Extraction failures are classified before being returned.
func (s *ImportService) ImportDocument(ctx context.Context, userID, accountID uuid.UUID, filePath string, isStatement bool) (*BatchResult, error) {
	items, err := s.extractor.ExtractTransactions(ctx, filePath, isStatement)
	if err != nil {
		classified := ClassifyExtractionError(err)
		s.logger.Error("Extraction service call failed",
			zap.String("kind", string(classified.Kind)),
			zap.Bool("retryable", classified.Retryable),
			zap.Error(err),
		)
		return nil, classified
	}
	return s.ImportBatch(ctx, userID, accountID, items, isStatement)
}

// ImportBatch validates and writes each raw item. Items with an invalid or
// zero amount are silently dropped; one item's write failure does not abort
// the rest.
func (s *ImportService) ImportBatch(ctx context.Context, userID, accountID uuid.UUID, rawItems []RawItem, isStatement bool) (*BatchResult, error) {
	result := &BatchResult{Total: len(rawItems)}

	for i, raw := range rawItems {
		itemResult := ItemResult{Index: i}

		amount, ok := ParseAmount(raw.Amount)
		if !ok {
			// Noisy extraction output regularly produces unparsable
			// amounts; dropping the item is not an error.
			itemResult.Skipped = true
			result.Results = append(result.Results, itemResult)
			s.logger.Debug("Dropped extracted item with invalid amount",
				zap.Int("index", i),
				zap.String("amount", raw.Amount),
			)
			continue
		}

		date, parsed := ParseDate(raw.Date)
		if !parsed {
			date = time.Now()
			s.logger.Warn("Extracted date unrecognized, falling back to today",
				zap.Int("index", i),
				zap.String("raw_date", raw.Date),
			)
		}

		// Statements carry signed amounts: money in is positive, money
		// out negative. Receipts are always expenses.
		txType := models.TypeExpenses
		if isStatement && amount.IsPositive() {
			txType = models.TypeIncome
		}

		category := ""
		if txType == models.TypeExpenses {
			category = strings.TrimSpace(raw.Category)
			if category == "" || strings.EqualFold(category, models.Uncategorized) {
				category = s.inferCategory(ctx, raw.Description)
			}
		}

		intent := WriteIntent{
			AccountID:       accountID,
			Amount:          amount.Abs(),
			Type:            txType,
			Category:        category,
			Description:     strings.TrimSpace(raw.Description),
			Date:            date,
			ClientTimestamp: time.Now(),
			Source:          models.SourceDocumentExtract,
		}

		tx, err := s.ledger.Create(ctx, userID, intent)
		if err != nil {
			itemResult.Err = err
			result.Results = append(result.Results, itemResult)
			s.logger.Warn("Batch item failed",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		itemResult.TransactionID = tx.ID
		result.SavedCount++
		result.Results = append(result.Results, itemResult)
	}

	if result.SavedCount == 0 && allSkipped(result.Results) {
		return result, ErrNoValidTransactions
	}

	s.logger.Info("Batch import finished",
		zap.Int("saved", result.SavedCount),
		zap.Int("total", result.Total),
		zap.Bool("statement", isStatement),
	)
	return result, nil
}

// inferCategory asks the external inference call for a best-guess label.
// Failure or an empty answer leaves the item Uncategorized; the item is
// still saved.
func (s *ImportService) inferCategory(ctx context.Context, description string) string {
	if s.inferrer == nil || strings.TrimSpace(description) == "" {
		return models.Uncategorized
	}
	label, err := s.inferrer.InferCategory(ctx, description)
	if err != nil {
		s.logger.Warn("Category inference failed", zap.Error(err))
		return models.Uncategorized
	}
	if strings.TrimSpace(label) == "" {
		return models.Uncategorized
	}
	return label
}

func allSkipped(results []ItemResult) bool {
	for _, r := range results {
		if !r.Skipped {
			return false
		}
	}
	return true
}

// IsRetryable reports whether the caller may offer a retry action for an
// extraction failure.
func IsRetryable(err error) bool {
	var svcErr *ExternalServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return false
}
