package repository

import (
	"context"
	"errors"
	"time"

	"finledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var debtColumns = []string{
	"id", "user_id", "friend_name", "amount", "type", "date", "due_date",
	"paid", "created_at", "updated_at",
}

type DebtRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDebtRepository(db *pgxpool.Pool, logger *zap.Logger) *DebtRepository {
	return &DebtRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DebtRepository) Create(ctx context.Context, debt *models.Debt) error {
	insert := squirrel.Insert("debts").
		Columns(debtColumns...).
		Values(debt.ID, debt.UserID, debt.FriendName, debt.Amount, debt.Type,
			debt.Date, debt.DueDate, debt.Paid, debt.CreatedAt, debt.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DebtRepository) GetByID(ctx context.Context, userID, debtID uuid.UUID) (*models.Debt, error) {
	query := squirrel.Select(debtColumns...).
		From("debts").
		Where(squirrel.Eq{"id": debtID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var debt models.Debt
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&debt.ID, &debt.UserID, &debt.FriendName, &debt.Amount, &debt.Type,
		&debt.Date, &debt.DueDate, &debt.Paid, &debt.CreatedAt, &debt.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &debt, nil
}

func (r *DebtRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Debt, error) {
	query := squirrel.Select(debtColumns...).
		From("debts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("due_date ASC").
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

	var debts []models.Debt
	for rows.Next() {
		var debt models.Debt
		if err := rows.Scan(
			&debt.ID, &debt.UserID, &debt.FriendName, &debt.Amount, &debt.Type,
			&debt.Date, &debt.DueDate, &debt.Paid, &debt.CreatedAt, &debt.UpdatedAt,
		); err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}

	return debts, rows.Err()
}

func (r *DebtRepository) MarkPaid(ctx context.Context, userID, debtID uuid.UUID, at time.Time) error {
	update := squirrel.Update("debts").
		Set("paid", true).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": debtID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := update.ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
