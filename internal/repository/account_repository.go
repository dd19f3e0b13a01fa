package repository

import (
	"context"
	"errors"

	"finledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var accountColumns = []string{
	"id", "user_id", "type", "title", "current_balance", "total_income",
	"total_expenses", "goal_amount", "current_amount", "created_at", "updated_at",
}

type AccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	insert := squirrel.Insert("accounts").
		Columns(accountColumns...).
		Values(account.ID, account.UserID, account.Type, account.Title,
			account.CurrentBalance, account.TotalIncome, account.TotalExpenses,
			account.GoalAmount, account.CurrentAmount,
			account.CreatedAt, account.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AccountRepository) GetByID(ctx context.Context, userID, accountID uuid.UUID) (*models.Account, error) {
	query := squirrel.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"id": accountID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var account models.Account
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&account.ID, &account.UserID, &account.Type, &account.Title,
		&account.CurrentBalance, &account.TotalIncome, &account.TotalExpenses,
		&account.GoalAmount, &account.CurrentAmount,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *AccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	query := squirrel.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
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

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.Type, &account.Title,
			&account.CurrentBalance, &account.TotalIncome, &account.TotalExpenses,
			&account.GoalAmount, &account.CurrentAmount,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// DeleteCascade removes the account and all of its transactions in one
// database transaction, returning the distinct expense category labels that
// were referenced by the removed rows so the caller can sweep empty
// categories.
func (r *AccountRepository) DeleteCascade(ctx context.Context, userID, accountID uuid.UUID) ([]string, error) {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx)

	labelsQuery := squirrel.Select("DISTINCT category").
		From("transactions").
		Where(squirrel.Eq{
			"user_id":    userID,
			"account_id": accountID,
			"type":       models.TypeExpenses,
		}).
		Where(squirrel.NotEq{"category": ""}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := labelsQuery.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := dbTx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			rows.Close()
			return nil, err
		}
		labels = append(labels, label)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	delTx := squirrel.Delete("transactions").
		Where(squirrel.Eq{"user_id": userID, "account_id": accountID}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err = delTx.ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := dbTx.Exec(ctx, sql, args...); err != nil {
		return nil, err
	}

	delAcc := squirrel.Delete("accounts").
		Where(squirrel.Eq{"id": accountID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err = delAcc.ToSql()
	if err != nil {
		return nil, err
	}
	tag, err := dbTx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}
	return labels, nil
}
