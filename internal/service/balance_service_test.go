package service

import (
	"errors"
	"testing"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"github.com/shopspring/decimal"
)

func TestGetBalanceStartsAtZero(t *testing.T) {
	env := newTestEnv(t)

	balance, err := env.balance.GetBalance(10)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("first-time balance = %s, want 0", balance)
	}
}

func TestCreditAndDebitWriteMatchingLedgerEntries(t *testing.T) {
	env := newTestEnv(t)

	change, err := env.balance.Credit(10, decimal.NewFromInt(1000), models.TxAdjustment, nil, nil, "top up")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if !change.PreviousBalance.IsZero() || !change.NewBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("credit change = %+v", change)
	}

	change, err = env.balance.Debit(10, decimal.NewFromFloat(250.50), models.TxWithdrawal, nil, nil, "withdrawal")
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !change.NewBalance.Equal(decimal.NewFromFloat(749.50)) {
		t.Errorf("balance after debit = %s, want 749.50", change.NewBalance)
	}

	entries, err := env.balance.GetTransactions(10, 50, 0)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(entries))
	}

	// Every entry must satisfy after == before + amount, and the replayed
	// ledger must land exactly on the stored balance.
	replayed := decimal.Zero
	for _, e := range entries {
		if !e.BalanceAfter.Equal(e.BalanceBefore.Add(e.Amount)) {
			t.Errorf("entry %d violates after == before + amount: %+v", e.ID, e)
		}
		replayed = replayed.Add(e.Amount)
	}
	stored, _ := env.balance.GetBalance(10)
	if !replayed.Equal(stored) {
		t.Errorf("replayed ledger = %s, stored balance = %s", replayed, stored)
	}
}

func TestDebitInsufficientBalanceLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.balance.Credit(10, decimal.NewFromInt(100), models.TxAdjustment, nil, nil, "top up"); err != nil {
		t.Fatalf("credit: %v", err)
	}

	_, err := env.balance.Debit(10, decimal.NewFromInt(500), models.TxWithdrawal, nil, nil, "too much")
	if !errors.Is(err, apperrors.ErrInsufficientBalance) {
		t.Fatalf("overdraft debit: err = %v, want ErrInsufficientBalance", err)
	}

	balance, _ := env.balance.GetBalance(10)
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance after failed debit = %s, want 100", balance)
	}
	entries, _ := env.balance.GetTransactions(10, 50, 0)
	if len(entries) != 1 {
		t.Errorf("ledger entries after failed debit = %d, want only the top-up", len(entries))
	}
}

func TestDebitAndCreditRejectNonPositiveAmounts(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.balance.Debit(10, decimal.Zero, models.TxWithdrawal, nil, nil, "x"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("zero debit: err = %v, want ErrValidation", err)
	}
	if _, err := env.balance.Credit(10, decimal.NewFromInt(-5), models.TxAdjustment, nil, nil, "x"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("negative credit: err = %v, want ErrValidation", err)
	}
}

func TestHasSufficientBalance(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.balance.Credit(10, decimal.NewFromInt(200), models.TxAdjustment, nil, nil, "top up"); err != nil {
		t.Fatalf("credit: %v", err)
	}

	ok, err := env.balance.HasSufficientBalance(10, decimal.NewFromInt(200))
	if err != nil || !ok {
		t.Errorf("exact amount: (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = env.balance.HasSufficientBalance(10, decimal.NewFromInt(201))
	if err != nil || ok {
		t.Errorf("one over: (%v, %v), want (false, nil)", ok, err)
	}
}
