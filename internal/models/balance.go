package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance represents the user_balances table: one row per user holding
// the current monetary balance. The row is only mutated together with a
// matching BalanceTransaction entry.
type UserBalance struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for UserBalance model
func (UserBalance) TableName() string {
	return "user_balances"
}

// TransactionType classifies a balance ledger entry.
type TransactionType string

const (
	TxPaymentReceived TransactionType = "payment_received"
	TxServiceCharge   TransactionType = "service_charge"
	TxRefundProcessed TransactionType = "refund_processed"
	TxWithdrawal      TransactionType = "withdrawal"
	TxAdjustment      TransactionType = "adjustment"
)

// BalanceTransaction represents the balance_transactions table: the
// append-only per-user ledger. For every entry
// BalanceAfter == BalanceBefore + Amount, and the user's current balance
// equals the BalanceAfter of their most recent entry.
type BalanceTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	TransactionType TransactionType `gorm:"size:50;not null" json:"transaction_type"`
	ReferenceID     *uint           `gorm:"index" json:"reference_id"`
	ProcessedBy     *uint           `json:"processed_by"`
	Description     string          `gorm:"size:255" json:"description,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for BalanceTransaction model
func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
