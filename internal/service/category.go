package service

import (
	"context"
	"strings"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService resolves free-text labels to canonical categories and runs
// the best-effort cleanup sweep over categories left without references.
type CategoryService struct {
	store  CategoryStore
	logger *zap.Logger
}

func NewCategoryService(store CategoryStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger,
	}
}

// Resolve maps a label to an existing or newly created category. It returns
// (nil, nil) when the label is empty, Uncategorized, or absent from the
// predefined catalog; callers treat that as "no reusable category" and the
// transaction is still valid.
func (s *CategoryService) Resolve(ctx context.Context, userID uuid.UUID, label string) (*models.Category, error) {
	norm := strings.TrimSpace(label)
	if norm == "" || strings.EqualFold(norm, models.Uncategorized) {
		return nil, nil
	}

	existing, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(strings.TrimSpace(existing[i].Name), norm) {
			if err := s.store.Touch(ctx, existing[i].ID, time.Now()); err != nil {
				s.logger.Warn("Failed to bump category last_updated",
					zap.String("category", existing[i].Name),
					zap.Error(err),
				)
			}
			return &existing[i], nil
		}
	}

	pc, ok := lookupPredefined(norm)
	if !ok {
		return nil, nil
	}

	now := time.Now()
	category := &models.Category{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            pc.Label,
		IconName:        pc.IconName,
		BackgroundColor: DefaultCategoryColor,
		CreatedAt:       now,
		LastUpdated:     now,
	}
	if err := s.store.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created",
		zap.String("name", category.Name),
		zap.String("user_id", userID.String()),
	)
	return category, nil
}

// CleanupEmptyCategories deletes every category of the user that no expense
// transaction references anymore. When candidates are given, only those
// labels are inspected. The sweep is best-effort: failures are logged and
// never propagated to the operation that triggered it.
func (s *CategoryService) CleanupEmptyCategories(ctx context.Context, userID uuid.UUID, candidates ...string) {
	categories, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Category cleanup skipped", zap.Error(&CleanupError{Err: err}))
		return
	}

	for _, category := range categories {
		if len(candidates) > 0 && !containsFold(candidates, category.Name) {
			continue
		}

		refs, err := s.store.CountExpenseRefs(ctx, userID, category.Name)
		if err != nil {
			s.logger.Warn("Category cleanup check failed",
				zap.String("category", category.Name),
				zap.Error(&CleanupError{Err: err}),
			)
			continue
		}
		if refs > 0 {
			continue
		}

		if err := s.store.Delete(ctx, category.ID); err != nil {
			s.logger.Warn("Category cleanup delete failed",
				zap.String("category", category.Name),
				zap.Error(&CleanupError{Err: err}),
			)
			continue
		}
		s.logger.Info("Removed empty category", zap.String("category", category.Name))
	}
}

// List returns the user's canonical categories, most recently used first.
func (s *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	return s.store.ListByUser(ctx, userID)
}

func containsFold(labels []string, name string) bool {
	for _, l := range labels {
		if strings.EqualFold(strings.TrimSpace(l), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// CanonicalLegacyName folds the historical document-store field variants
// (name, label, Category, categoryName) into the single canonical name.
// It exists for the one-time migration pass; new code writes only Name.
func CanonicalLegacyName(attrs map[string]string) string {
	for _, key := range []string{"name", "label", "Category", "categoryName"} {
		if v := strings.TrimSpace(attrs[key]); v != "" {
			return v
		}
	}
	return ""
}
