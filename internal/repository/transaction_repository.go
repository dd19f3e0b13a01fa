package repository

import (
	"context"
	"errors"
	"time"

	"finledger/internal/models"
	"finledger/internal/service"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "account_id", "user_id", "amount", "type", "category",
	"description", "date", "client_timestamp", "added_via",
	"created_at", "updated_at",
}

// TransactionRepository persists transactions. Every write applies the
// account adjustment in the same database transaction as the row change, so
// a crash can never leave the balance half-applied.
type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx *models.Transaction, adj service.BalanceAdjustment) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	insert := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(tx.ID, tx.AccountID, tx.UserID, tx.Amount, tx.Type, tx.Category,
			tx.Description, tx.Date, tx.ClientTimestamp, tx.AddedVia,
			tx.CreatedAt, tx.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	if _, err := dbTx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if err := applyAdjustment(ctx, dbTx, adj); err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

func (r *TransactionRepository) UpdateTransaction(ctx context.Context, tx *models.Transaction, adj service.BalanceAdjustment) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	update := squirrel.Update("transactions").
		Set("amount", tx.Amount).
		Set("type", tx.Type).
		Set("category", tx.Category).
		Set("description", tx.Description).
		Set("date", tx.Date).
		Set("updated_at", tx.UpdatedAt).
		Where(squirrel.Eq{"id": tx.ID, "user_id": tx.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := update.ToSql()
	if err != nil {
		return err
	}
	tag, err := dbTx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := applyAdjustment(ctx, dbTx, adj); err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID, adj service.BalanceAdjustment) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	del := squirrel.Delete("transactions").
		Where(squirrel.Eq{"id": txID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := del.ToSql()
	if err != nil {
		return err
	}
	tag, err := dbTx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := applyAdjustment(ctx, dbTx, adj); err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": txID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&tx.ID, &tx.AccountID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Category,
		&tx.Description, &tx.Date, &tx.ClientTimestamp, &tx.AddedVia,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID, "account_id": accountID}).
		OrderBy("date DESC, created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryList(ctx, query)
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC, created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryList(ctx, query)
}

// FindRecentMatches is the duplicate guard's probe: same amount,
// description, type, and account inside the detection window, matched by
// either the client timestamp or the server creation time.
func (r *TransactionRepository) FindRecentMatches(ctx context.Context, probe service.DuplicateProbe) ([]models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{
			"user_id":     probe.UserID,
			"account_id":  probe.AccountID,
			"amount":      probe.Amount,
			"description": probe.Description,
			"type":        probe.Type,
		}).
		Where(squirrel.Or{
			squirrel.GtOrEq{"client_timestamp": probe.Since},
			squirrel.GtOrEq{"created_at": probe.Since},
		}).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryList(ctx, query)
}

func (r *TransactionRepository) queryList(ctx context.Context, query squirrel.SelectBuilder) ([]models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.AccountID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Category,
			&tx.Description, &tx.Date, &tx.ClientTimestamp, &tx.AddedVia,
			&tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// applyAdjustment moves the account's derived fields by the given deltas.
// Income and expense totals clamp at zero; the savings current amount tracks
// the balance delta.
func applyAdjustment(ctx context.Context, dbTx pgx.Tx, adj service.BalanceAdjustment) error {
	update := squirrel.Update("accounts").
		Set("current_balance", squirrel.Expr("current_balance + ?", adj.BalanceDelta)).
		Set("total_income", squirrel.Expr("GREATEST(total_income + ?, 0)", adj.IncomeDelta)).
		Set("total_expenses", squirrel.Expr("GREATEST(total_expenses + ?, 0)", adj.ExpenseDelta)).
		Set("current_amount", squirrel.Expr("current_amount + ?", adj.BalanceDelta)).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": adj.AccountID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := update.ToSql()
	if err != nil {
		return err
	}
	tag, err := dbTx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
