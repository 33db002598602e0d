package repository

import (
	"errors"
	"fmt"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepo(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *BalanceRepository) WithTx(tx *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: tx}
}

// GetOrCreate retrieves the balance row for a user, creating a zero
// balance on first use.
func (r *BalanceRepository) GetOrCreate(userID uint) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := r.db.Where(models.UserBalance{UserID: userID}).
		Attrs(models.UserBalance{Balance: decimal.Zero}).
		FirstOrCreate(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// Get retrieves the balance row for a user
func (r *BalanceRepository) Get(userID uint) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := r.db.Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: balance for user %d", apperrors.ErrNotFound, userID)
		}
		return nil, err
	}
	return &balance, nil
}

// Debit atomically subtracts amount from the user's balance. The
// sufficiency check rides in the UPDATE's WHERE clause, so a concurrent
// debit cannot overdraw the account. Returns the balance row after the
// mutation.
func (r *BalanceRepository) Debit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	res := r.db.Model(&models.UserBalance{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		balance, err := r.Get(userID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: requested %s, balance %s", apperrors.ErrInsufficientBalance, amount, balance.Balance)
	}
	return r.Get(userID)
}

// Credit atomically adds amount to the user's balance, creating the row
// if it does not exist yet. Returns the balance row after the mutation.
func (r *BalanceRepository) Credit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	if _, err := r.GetOrCreate(userID); err != nil {
		return nil, err
	}
	err := r.db.Model(&models.UserBalance{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return nil, err
	}
	return r.Get(userID)
}

// CreateTransaction appends a ledger entry. Written in the same
// transaction as the balance mutation it describes.
func (r *BalanceRepository) CreateTransaction(entry *models.BalanceTransaction) error {
	if entry.UserID == 0 {
		return fmt.Errorf("%w: ledger entry requires user_id", apperrors.ErrValidation)
	}
	if !entry.BalanceAfter.Equal(entry.BalanceBefore.Add(entry.Amount)) {
		return fmt.Errorf("%w: ledger entry does not balance (%s + %s != %s)",
			apperrors.ErrValidation, entry.BalanceBefore, entry.Amount, entry.BalanceAfter)
	}
	return r.db.Create(entry).Error
}

// GetTransactions retrieves a user's ledger entries, oldest first, so the
// balance can be replayed from zero.
func (r *BalanceRepository) GetTransactions(userID uint, limit, offset int) ([]models.BalanceTransaction, error) {
	var entries []models.BalanceTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}
