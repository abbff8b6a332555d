package models

import "time"

// Transaction kinds
const (
	KindCredit = "credit"
	KindDebit  = "debit"
)

// TransactionRecord is a single append-only ledger entry. Records are never
// updated once written; UpdatedBalance snapshots the account balance
// immediately after the entry was applied.
type TransactionRecord struct {
	ID             uint    `gorm:"primarykey" json:"-"`
	AccountID      uint    `gorm:"not null;index" json:"-"`
	Kind           string  `gorm:"not null" json:"kind"`
	Amount         float64 `gorm:"type:numeric(14,2);not null" json:"amt"`
	UpdatedBalance float64 `gorm:"type:numeric(14,2);not null" json:"updated_bal"`
	Reference      string  `gorm:"index" json:"reference,omitempty"`
	CreatedAt      time.Time `json:"timestamp"`
}

func (TransactionRecord) TableName() string { return "transactions" }
