package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestAccounts(t *testing.T) (*AccountService, *memStore, uuid.UUID) {
	t.Helper()
	store := newMemStore()
	logger := zap.NewNop()
	categories := NewCategoryService(categoryStore{store}, logger)
	return NewAccountService(accountStore{store}, categories, &fakeInvalidator{}, logger), store, uuid.New()
}

func TestAccountCreate(t *testing.T) {
	svc, _, userID := newTestAccounts(t)
	ctx := context.Background()

	account, err := svc.Create(ctx, userID, CreateAccountInput{
		Type:           models.AccountTypeBalance,
		Title:          "  Everyday  ",
		InitialBalance: decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if account.Title != "Everyday" {
		t.Errorf("title = %q, want trimmed", account.Title)
	}
	if !account.CurrentBalance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("balance = %s, want 250", account.CurrentBalance)
	}
}

func TestAccountCreateSavingsGoalTracksInitial(t *testing.T) {
	svc, _, userID := newTestAccounts(t)

	account, err := svc.Create(context.Background(), userID, CreateAccountInput{
		Type:           models.AccountTypeSavingsGoal,
		Title:          "Vacation",
		InitialBalance: decimal.NewFromInt(100),
		GoalAmount:     decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !account.CurrentAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("current amount = %s, want 100", account.CurrentAmount)
	}
	if !account.GoalAmount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("goal = %s, want 2000", account.GoalAmount)
	}
}

func TestAccountCreateConstraints(t *testing.T) {
	svc, _, userID := newTestAccounts(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, userID, CreateAccountInput{Type: models.AccountTypeBalance, Title: "Main"}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	t.Run("same type", func(t *testing.T) {
		_, err := svc.Create(ctx, userID, CreateAccountInput{Type: models.AccountTypeBalance, Title: "Second"})
		if !errors.Is(err, ErrAccountTypeTaken) {
			t.Errorf("got %v, want ErrAccountTypeTaken", err)
		}
	})

	t.Run("duplicate title", func(t *testing.T) {
		_, err := svc.Create(ctx, userID, CreateAccountInput{Type: models.AccountTypeSavingsGoal, Title: "  main "})
		if !errors.Is(err, ErrDuplicateTitle) {
			t.Errorf("got %v, want ErrDuplicateTitle", err)
		}
	})

	t.Run("limit", func(t *testing.T) {
		if _, err := svc.Create(ctx, userID, CreateAccountInput{Type: models.AccountTypeIncomeTracker, Title: "Income"}); err != nil {
			t.Fatalf("second account: %v", err)
		}
		if _, err := svc.Create(ctx, userID, CreateAccountInput{Type: models.AccountTypeSavingsGoal, Title: "Goal"}); err != nil {
			t.Fatalf("third account: %v", err)
		}
		_, err := svc.Create(ctx, userID, CreateAccountInput{Type: models.AccountTypeSavingsGoal, Title: "Fourth"})
		if !errors.Is(err, ErrAccountLimit) {
			t.Errorf("got %v, want ErrAccountLimit", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		var vErr *ValidationError
		if _, err := svc.Create(ctx, uuid.New(), CreateAccountInput{Type: models.AccountTypeBalance, Title: "  "}); !errors.As(err, &vErr) {
			t.Errorf("empty title: got %v, want ValidationError", err)
		}
		if _, err := svc.Create(ctx, uuid.New(), CreateAccountInput{Type: "checking", Title: "X"}); !errors.As(err, &vErr) {
			t.Errorf("bad type: got %v, want ValidationError", err)
		}
	})
}

func TestAccountDeleteCascadeSweepsCategories(t *testing.T) {
	svc, store, userID := newTestAccounts(t)
	ctx := context.Background()

	account := store.addAccount(userID, models.AccountTypeBalance, decimal.NewFromInt(100))

	dining := &models.Category{ID: uuid.New(), UserID: userID, Name: "Dining"}
	store.categories[dining.ID] = dining
	tx := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       account.ID,
		UserID:          userID,
		Amount:          decimal.NewFromInt(30),
		Type:            models.TypeExpenses,
		Category:        "Dining",
		Date:            time.Now(),
		ClientTimestamp: time.Now(),
		CreatedAt:       time.Now(),
	}
	store.txs[tx.ID] = tx

	if err := svc.Delete(ctx, userID, account.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := store.accounts[account.ID]; ok {
		t.Error("account survived deletion")
	}
	if len(store.txs) != 0 {
		t.Error("transactions survived the cascade")
	}
	if _, ok := store.categories[dining.ID]; ok {
		t.Error("orphaned category survived the sweep")
	}
}

func TestAccountDeleteMissing(t *testing.T) {
	svc, _, userID := newTestAccounts(t)
	if err := svc.Delete(context.Background(), userID, uuid.New()); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("got %v, want ErrAccountNotFound", err)
	}
}
