package repository

import (
	"context"
	"time"

	"finledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var categoryColumns = []string{
	"id", "user_id", "name", "icon_name", "background_color",
	"created_at", "last_updated",
}

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	insert := squirrel.Insert("categories").
		Columns(categoryColumns...).
		Values(category.ID, category.UserID, category.Name, category.IconName,
			category.BackgroundColor, category.CreatedAt, category.LastUpdated).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("last_updated DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(
			&category.ID, &category.UserID, &category.Name, &category.IconName,
			&category.BackgroundColor, &category.CreatedAt, &category.LastUpdated,
		); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (r *CategoryRepository) Touch(ctx context.Context, categoryID uuid.UUID, at time.Time) error {
	update := squirrel.Update("categories").
		Set("last_updated", at).
		Where(squirrel.Eq{"id": categoryID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := update.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID uuid.UUID) error {
	del := squirrel.Delete("categories").
		Where(squirrel.Eq{"id": categoryID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := del.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// CountExpenseRefs counts expense transactions still carrying the given
// category label, matched case-insensitively.
func (r *CategoryRepository) CountExpenseRefs(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID, "type": models.TypeExpenses}).
		Where(squirrel.Expr("LOWER(category) = LOWER(?)", name)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
