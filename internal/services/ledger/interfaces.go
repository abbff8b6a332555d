package ledger

import (
	"context"

	"kosh/internal/models"
)

// Service owns account balances and the append-only transaction log.
// Every mutation is applied atomically at account granularity.
type Service interface {
	GetBalance(ctx context.Context, accountID uint) (float64, error)
	Apply(ctx context.Context, accountID uint, kind string, amount float64) (float64, error)
	Transfer(ctx context.Context, fromID, toID uint, amount float64) (float64, error)
	Statement(ctx context.Context, accountID uint) ([]models.TransactionRecord, error)
	DeleteAccount(ctx context.Context, accountID uint) error
}

// Notifier receives a best-effort notification for every applied ledger leg.
// Delivery runs outside the ledger transaction; an error here never fails or
// rolls back the financial operation.
type Notifier interface {
	Notify(ctx context.Context, accountID uint, kind string, amount, balance float64) error
}
