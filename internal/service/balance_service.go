package service

import (
	"fmt"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceService owns the per-user monetary balances and their
// append-only transaction ledger. Balance row and ledger entry always
// change in the same transaction.
type BalanceService struct {
	db          *gorm.DB
	balanceRepo *repository.BalanceRepository
}

func NewBalanceService(db *gorm.DB, balanceRepo *repository.BalanceRepository) *BalanceService {
	return &BalanceService{
		db:          db,
		balanceRepo: balanceRepo,
	}
}

// BalanceChange reports the balance before and after a debit or credit.
type BalanceChange struct {
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
}

// GetBalance returns the user's current balance, zero for first-time users
func (s *BalanceService) GetBalance(userID uint) (decimal.Decimal, error) {
	balance, err := s.balanceRepo.GetOrCreate(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Balance, nil
}

// HasSufficientBalance is a read-only convenience check. Callers must not
// rely on it in place of the atomic check inside Debit.
func (s *BalanceService) HasSufficientBalance(userID uint, amount decimal.Decimal) (bool, error) {
	balance, err := s.GetBalance(userID)
	if err != nil {
		return false, err
	}
	return balance.GreaterThanOrEqual(amount), nil
}

// Debit subtracts amount from the user's balance and appends the matching
// ledger entry in one transaction. Fails with ErrInsufficientBalance when
// the atomic check finds too little, leaving no trace.
func (s *BalanceService) Debit(userID uint, amount decimal.Decimal, txType models.TransactionType, referenceID *uint, processedBy *uint, description string) (*BalanceChange, error) {
	var change *BalanceChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		change, err = s.DebitTx(tx, userID, amount, txType, referenceID, processedBy, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// DebitTx is Debit running inside the caller's transaction. Used by the
// booking service so payment capture and booking update commit together.
func (s *BalanceService) DebitTx(tx *gorm.DB, userID uint, amount decimal.Decimal, txType models.TransactionType, referenceID *uint, processedBy *uint, description string) (*BalanceChange, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: debit amount must be positive", apperrors.ErrValidation)
	}

	repo := s.balanceRepo.WithTx(tx)
	if _, err := repo.GetOrCreate(userID); err != nil {
		return nil, err
	}

	after, err := repo.Debit(userID, amount)
	if err != nil {
		return nil, err
	}

	before := after.Balance.Add(amount)
	if err := repo.CreateTransaction(&models.BalanceTransaction{
		UserID:          userID,
		BalanceBefore:   before,
		BalanceAfter:    after.Balance,
		Amount:          amount.Neg(),
		TransactionType: txType,
		ReferenceID:     referenceID,
		ProcessedBy:     processedBy,
		Description:     description,
	}); err != nil {
		return nil, err
	}

	return &BalanceChange{PreviousBalance: before, NewBalance: after.Balance}, nil
}

// Credit adds amount to the user's balance and appends the matching
// ledger entry in one transaction. Used for refunds and adjustments.
func (s *BalanceService) Credit(userID uint, amount decimal.Decimal, txType models.TransactionType, referenceID *uint, processedBy *uint, description string) (*BalanceChange, error) {
	var change *BalanceChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		change, err = s.CreditTx(tx, userID, amount, txType, referenceID, processedBy, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// CreditTx is Credit running inside the caller's transaction.
func (s *BalanceService) CreditTx(tx *gorm.DB, userID uint, amount decimal.Decimal, txType models.TransactionType, referenceID *uint, processedBy *uint, description string) (*BalanceChange, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: credit amount must be positive", apperrors.ErrValidation)
	}

	repo := s.balanceRepo.WithTx(tx)
	after, err := repo.Credit(userID, amount)
	if err != nil {
		return nil, err
	}

	before := after.Balance.Sub(amount)
	if err := repo.CreateTransaction(&models.BalanceTransaction{
		UserID:          userID,
		BalanceBefore:   before,
		BalanceAfter:    after.Balance,
		Amount:          amount,
		TransactionType: txType,
		ReferenceID:     referenceID,
		ProcessedBy:     processedBy,
		Description:     description,
	}); err != nil {
		return nil, err
	}

	return &BalanceChange{PreviousBalance: before, NewBalance: after.Balance}, nil
}

// GetTransactions lists the user's ledger entries oldest first
func (s *BalanceService) GetTransactions(userID uint, limit, offset int) ([]models.BalanceTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.balanceRepo.GetTransactions(userID, limit, offset)
}
