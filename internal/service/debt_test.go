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

func TestDebtCreateValidation(t *testing.T) {
	ledger, store, _, userID := newTestLedger(t)
	svc := NewDebtService(debtStore{store}, ledger, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateDebtInput
	}{
		{"empty friend", CreateDebtInput{Amount: decimal.NewFromInt(10), Type: models.DebtTypeDebt}},
		{"zero amount", CreateDebtInput{FriendName: "Sam", Type: models.DebtTypeDebt}},
		{"bad type", CreateDebtInput{FriendName: "Sam", Amount: decimal.NewFromInt(10), Type: "IOU"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vErr *ValidationError
			if _, err := svc.Create(ctx, userID, tt.in); !errors.As(err, &vErr) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}

	debt, err := svc.Create(ctx, userID, CreateDebtInput{
		FriendName: "  Sam ",
		Amount:     decimal.NewFromInt(40),
		Type:       models.DebtTypeCredit,
		Date:       time.Now(),
		DueDate:    time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if debt.FriendName != "Sam" {
		t.Errorf("friend name = %q, want trimmed", debt.FriendName)
	}
	if debt.Paid {
		t.Error("new debt must not be paid")
	}
}

func TestDebtSettleCreditIsIncome(t *testing.T) {
	ledger, store, account, userID := newTestLedger(t)
	svc := NewDebtService(debtStore{store}, ledger, zap.NewNop())
	ctx := context.Background()

	debt, err := svc.Create(ctx, userID, CreateDebtInput{
		FriendName: "Sam",
		Amount:     decimal.NewFromInt(40),
		Type:       models.DebtTypeCredit,
		Date:       time.Now(),
		DueDate:    time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tx, err := svc.Settle(ctx, userID, debt.ID, account.ID)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if tx.Type != models.TypeIncome {
		t.Errorf("settlement type = %s, want Income", tx.Type)
	}
	if tx.Description != "Settled credit with Sam" {
		t.Errorf("description = %q", tx.Description)
	}
	if !store.debts[debt.ID].Paid {
		t.Error("debt not marked paid")
	}
	if !store.accounts[account.ID].CurrentBalance.Equal(decimal.NewFromInt(540)) {
		t.Errorf("balance = %s, want 540", store.accounts[account.ID].CurrentBalance)
	}

	// Settling again is rejected.
	if _, err := svc.Settle(ctx, userID, debt.ID, account.ID); !errors.Is(err, ErrDebtAlreadySettled) {
		t.Errorf("got %v, want ErrDebtAlreadySettled", err)
	}
}

func TestDebtSettleDebtIsExpense(t *testing.T) {
	ledger, store, account, userID := newTestLedger(t)
	svc := NewDebtService(debtStore{store}, ledger, zap.NewNop())
	ctx := context.Background()

	debt, err := svc.Create(ctx, userID, CreateDebtInput{
		FriendName: "Alex",
		Amount:     decimal.NewFromInt(25),
		Type:       models.DebtTypeDebt,
		Date:       time.Now(),
		DueDate:    time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tx, err := svc.Settle(ctx, userID, debt.ID, account.ID)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if tx.Type != models.TypeExpenses {
		t.Errorf("settlement type = %s, want Expenses", tx.Type)
	}
	if !store.accounts[account.ID].CurrentBalance.Equal(decimal.NewFromInt(475)) {
		t.Errorf("balance = %s, want 475", store.accounts[account.ID].CurrentBalance)
	}
}

func TestDebtSettleUnknownAccount(t *testing.T) {
	ledger, store, _, userID := newTestLedger(t)
	svc := NewDebtService(debtStore{store}, ledger, zap.NewNop())
	ctx := context.Background()

	debt, err := svc.Create(ctx, userID, CreateDebtInput{
		FriendName: "Sam",
		Amount:     decimal.NewFromInt(40),
		Type:       models.DebtTypeDebt,
		Date:       time.Now(),
		DueDate:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Settle(ctx, userID, debt.ID, uuid.New()); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("got %v, want ErrAccountNotFound", err)
	}
	if store.debts[debt.ID].Paid {
		t.Error("debt marked paid despite failed settlement")
	}
}
