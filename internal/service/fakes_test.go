package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"finledger/internal/models"
	"finledger/pkg/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// memStore is an in-memory stand-in for the Postgres repositories. It
// applies balance adjustments with the same zero clamp on the totals, and
// can be primed with per-call failures to exercise the retry policy.
type memStore struct {
	accounts   map[uuid.UUID]*models.Account
	txs        map[uuid.UUID]*models.Transaction
	categories map[uuid.UUID]*models.Category
	debts      map[uuid.UUID]*models.Debt

	// createErrs is consumed one error per CreateTransaction call; nil
	// entries mean success.
	createErrs []error
	// persistOnErr records the row even when the call reports failure,
	// simulating a commit whose acknowledgement was lost.
	persistOnErr bool

	createCalls int
	updateCalls int
}

func newMemStore() *memStore {
	return &memStore{
		accounts:   make(map[uuid.UUID]*models.Account),
		txs:        make(map[uuid.UUID]*models.Transaction),
		categories: make(map[uuid.UUID]*models.Category),
		debts:      make(map[uuid.UUID]*models.Debt),
	}
}

func (m *memStore) addAccount(userID uuid.UUID, accType models.AccountType, balance decimal.Decimal) *models.Account {
	account := &models.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           accType,
		Title:          "Main " + string(accType),
		CurrentBalance: balance,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.accounts[account.ID] = account
	return account
}

func (m *memStore) applyAdjustment(adj BalanceAdjustment) {
	account, ok := m.accounts[adj.AccountID]
	if !ok {
		return
	}
	account.CurrentBalance = account.CurrentBalance.Add(adj.BalanceDelta)
	account.TotalIncome = clampZero(account.TotalIncome.Add(adj.IncomeDelta))
	account.TotalExpenses = clampZero(account.TotalExpenses.Add(adj.ExpenseDelta))
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LedgerStore

func (m *memStore) CreateTransaction(ctx context.Context, tx *models.Transaction, adj BalanceAdjustment) error {
	m.createCalls++
	var err error
	if len(m.createErrs) > 0 {
		err = m.createErrs[0]
		m.createErrs = m.createErrs[1:]
	}
	if err != nil && !m.persistOnErr {
		return err
	}

	cp := *tx
	m.txs[tx.ID] = &cp
	m.applyAdjustment(adj)
	return err
}

func (m *memStore) UpdateTransaction(ctx context.Context, tx *models.Transaction, adj BalanceAdjustment) error {
	m.updateCalls++
	if _, ok := m.txs[tx.ID]; !ok {
		return ErrTransactionNotFound
	}
	cp := *tx
	m.txs[tx.ID] = &cp
	m.applyAdjustment(adj)
	return nil
}

func (m *memStore) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID, adj BalanceAdjustment) error {
	tx, ok := m.txs[txID]
	if !ok || tx.UserID != userID {
		return ErrTransactionNotFound
	}
	delete(m.txs, txID)
	m.applyAdjustment(adj)
	return nil
}

func (m *memStore) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	tx, ok := m.txs[txID]
	if !ok || tx.UserID != userID {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (m *memStore) ListByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range m.txs {
		if tx.UserID == userID && tx.AccountID == accountID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range m.txs {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (m *memStore) FindRecentMatches(ctx context.Context, probe DuplicateProbe) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range m.txs {
		if tx.UserID != probe.UserID || tx.AccountID != probe.AccountID {
			continue
		}
		if tx.Type != probe.Type || tx.Description != probe.Description {
			continue
		}
		if !tx.Amount.Equal(probe.Amount) {
			continue
		}
		if tx.ClientTimestamp.Before(probe.Since) && tx.CreatedAt.Before(probe.Since) {
			continue
		}
		out = append(out, *tx)
	}
	return out, nil
}

// accountStore adapts memStore to the AccountStore interface. It is a
// separate type because LedgerStore and AccountStore both declare
// ListByUser with different return types.
type accountStore struct {
	m *memStore
}

func (a accountStore) Create(ctx context.Context, account *models.Account) error {
	cp := *account
	a.m.accounts[account.ID] = &cp
	return nil
}

func (a accountStore) GetByID(ctx context.Context, userID, accountID uuid.UUID) (*models.Account, error) {
	account, ok := a.m.accounts[accountID]
	if !ok || account.UserID != userID {
		return nil, nil
	}
	cp := *account
	return &cp, nil
}

func (a accountStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	var out []models.Account
	for _, account := range a.m.accounts {
		if account.UserID == userID {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (a accountStore) DeleteCascade(ctx context.Context, userID, accountID uuid.UUID) ([]string, error) {
	account, ok := a.m.accounts[accountID]
	if !ok || account.UserID != userID {
		return nil, ErrAccountNotFound
	}

	seen := make(map[string]bool)
	var labels []string
	for id, tx := range a.m.txs {
		if tx.UserID != userID || tx.AccountID != accountID {
			continue
		}
		if tx.Type == models.TypeExpenses && tx.Category != "" && !seen[tx.Category] {
			seen[tx.Category] = true
			labels = append(labels, tx.Category)
		}
		delete(a.m.txs, id)
	}
	delete(a.m.accounts, accountID)
	return labels, nil
}

// categoryStore adapts memStore to the CategoryStore interface. It is a
// separate type because AccountStore and CategoryStore both declare Create
// and ListByUser.
type categoryStore struct {
	m *memStore
}

func (c categoryStore) Create(ctx context.Context, category *models.Category) error {
	cp := *category
	c.m.categories[category.ID] = &cp
	return nil
}

func (c categoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, category := range c.m.categories {
		if category.UserID == userID {
			out = append(out, *category)
		}
	}
	return out, nil
}

func (c categoryStore) Touch(ctx context.Context, categoryID uuid.UUID, at time.Time) error {
	if category, ok := c.m.categories[categoryID]; ok {
		category.LastUpdated = at
	}
	return nil
}

func (c categoryStore) Delete(ctx context.Context, categoryID uuid.UUID) error {
	delete(c.m.categories, categoryID)
	return nil
}

func (c categoryStore) CountExpenseRefs(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	var count int64
	for _, tx := range c.m.txs {
		if tx.UserID == userID && tx.Type == models.TypeExpenses && strings.EqualFold(tx.Category, name) {
			count++
		}
	}
	return count, nil
}

// debtStore adapts memStore to the DebtStore interface.
type debtStore struct {
	m *memStore
}

func (d debtStore) Create(ctx context.Context, debt *models.Debt) error {
	cp := *debt
	d.m.debts[debt.ID] = &cp
	return nil
}

func (d debtStore) GetByID(ctx context.Context, userID, debtID uuid.UUID) (*models.Debt, error) {
	debt, ok := d.m.debts[debtID]
	if !ok || debt.UserID != userID {
		return nil, nil
	}
	cp := *debt
	return &cp, nil
}

func (d debtStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Debt, error) {
	var out []models.Debt
	for _, debt := range d.m.debts {
		if debt.UserID == userID {
			out = append(out, *debt)
		}
	}
	return out, nil
}

func (d debtStore) MarkPaid(ctx context.Context, userID, debtID uuid.UUID, at time.Time) error {
	debt, ok := d.m.debts[debtID]
	if !ok || debt.UserID != userID {
		return ErrDebtNotFound
	}
	debt.Paid = true
	debt.UpdatedAt = at
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(userID uuid.UUID) { f.calls++ }

func testLedgerConfig() config.LedgerConfig {
	return config.LedgerConfig{
		DuplicateWindow: 5 * time.Minute,
		MaxRetries:      3,
		RetryBaseDelay:  time.Millisecond,
	}
}

// newTestLedger wires a ledger service over memStore with one balance
// account pre-created.
func newTestLedger(t *testing.T) (*LedgerService, *memStore, *models.Account, uuid.UUID) {
	t.Helper()
	store := newMemStore()
	userID := uuid.New()
	account := store.addAccount(userID, models.AccountTypeBalance, decimal.NewFromInt(500))

	logger := zap.NewNop()
	categories := NewCategoryService(categoryStore{store}, logger)
	ledger := NewLedgerService(store, accountStore{store}, categories, &fakeInvalidator{}, testLedgerConfig(), logger)
	return ledger, store, account, userID
}
