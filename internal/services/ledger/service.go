package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kosh/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultTransactionTimeout bounds how long a ledger mutation may hold
	// row locks before the transaction is aborted.
	DefaultTransactionTimeout = 5 * time.Second

	notifyTimeout = 5 * time.Second
)

type service struct {
	db        *gorm.DB
	notifier  Notifier
	txTimeout time.Duration
}

// NewService creates a new ledger service. notifier may be nil, in which
// case applied legs are not announced anywhere.
func NewService(db *gorm.DB, notifier Notifier, txTimeout time.Duration) Service {
	if db == nil {
		panic("db is required")
	}
	if txTimeout <= 0 {
		txTimeout = DefaultTransactionTimeout
	}
	return &service{
		db:        db,
		notifier:  notifier,
		txTimeout: txTimeout,
	}
}

func (s *service) GetBalance(ctx context.Context, accountID uint) (float64, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return account.Balance, nil
}

// Apply credits or debits a single account and appends the matching
// transaction record. The read-modify-append runs as one database
// transaction with the account row locked, so concurrent mutations on the
// same account serialize instead of losing updates.
func (s *service) Apply(ctx context.Context, accountID uint, kind string, amount float64) (float64, error) {
	if kind != models.KindCredit && kind != models.KindDebit {
		return 0, ErrInvalidKind
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var newBalance float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, accountID)
		if err != nil {
			return err
		}

		if kind == models.KindDebit {
			if account.Balance < amount {
				return ErrInsufficientFunds
			}
			newBalance = account.Balance - amount
		} else {
			newBalance = account.Balance + amount
		}

		if err := setBalance(tx, accountID, newBalance); err != nil {
			return err
		}
		return appendRecord(tx, accountID, kind, amount, newBalance, uuid.NewString())
	})
	if err != nil {
		return 0, err
	}

	s.notify(accountID, kind, amount, newBalance)
	return newBalance, nil
}

// Transfer atomically debits the sender and credits the recipient,
// appending one record per side. Rows are locked in ascending account id
// order regardless of transfer direction so two racing transfers over the
// same pair cannot deadlock.
func (s *service) Transfer(ctx context.Context, fromID, toID uint, amount float64) (float64, error) {
	if fromID == toID {
		return 0, ErrSelfTransfer
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var newFromBalance, newToBalance float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		firstID, secondID := fromID, toID
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}

		first, err := lockAccount(tx, firstID)
		if err != nil {
			return err
		}
		second, err := lockAccount(tx, secondID)
		if err != nil {
			return err
		}

		sender, recipient := first, second
		if first.ID != fromID {
			sender, recipient = second, first
		}

		if sender.Balance < amount {
			return ErrInsufficientFunds
		}
		newFromBalance = sender.Balance - amount
		newToBalance = recipient.Balance + amount

		if err := setBalance(tx, sender.ID, newFromBalance); err != nil {
			return err
		}
		if err := setBalance(tx, recipient.ID, newToBalance); err != nil {
			return err
		}

		reference := uuid.NewString()
		if err := appendRecord(tx, sender.ID, models.KindDebit, amount, newFromBalance, reference); err != nil {
			return err
		}
		return appendRecord(tx, recipient.ID, models.KindCredit, amount, newToBalance, reference)
	})
	if err != nil {
		return 0, err
	}

	s.notify(fromID, models.KindDebit, amount, newFromBalance)
	s.notify(toID, models.KindCredit, amount, newToBalance)
	return newFromBalance, nil
}

func (s *service) Statement(ctx context.Context, accountID uint) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return records, nil
}

// DeleteAccount removes the account and its whole transaction history in
// one transaction.
func (s *service) DeleteAccount(ctx context.Context, accountID uint) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&models.TransactionRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete transactions: %w", err)
		}
		result := tx.Delete(&models.Account{}, accountID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete account: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
}

func (s *service) notify(accountID uint, kind string, amount, balance float64) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, accountID, kind, amount, balance); err != nil {
			log.Printf("notification failed for account %d: %v", accountID, err)
		}
	}()
}

func lockAccount(tx *gorm.DB, accountID uint) (*models.Account, error) {
	var account models.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", accountID, err)
	}
	return &account, nil
}

func setBalance(tx *gorm.DB, accountID uint, balance float64) error {
	if err := tx.Model(&models.Account{}).Where("id = ?", accountID).Update("balance", balance).Error; err != nil {
		return fmt.Errorf("failed to update balance for account %d: %w", accountID, err)
	}
	return nil
}

func appendRecord(tx *gorm.DB, accountID uint, kind string, amount, balance float64, reference string) error {
	record := models.TransactionRecord{
		AccountID:      accountID,
		Kind:           kind,
		Amount:         amount,
		UpdatedBalance: balance,
		Reference:      reference,
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append transaction record: %w", err)
	}
	return nil
}
