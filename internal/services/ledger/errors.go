package ledger

import "errors"

// Service errors
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
)
