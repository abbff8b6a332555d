// Package wallet orchestrates the ledger, session-facing account data and
// external collaborators into the user-visible wallet operations. It is the
// only service the transport layer calls for money movement.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math"

	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/credentials"
	"kosh/internal/services/currency"
	"kosh/internal/services/ledger"
)

type Service interface {
	Register(ctx context.Context, username, secret, mobile string) (*models.Account, error)
	Fund(ctx context.Context, accountID uint, amount float64) (float64, error)
	Pay(ctx context.Context, fromID uint, fromUsername, toUsername string, amount float64) (float64, error)
	Purchase(ctx context.Context, accountID, productID uint) (float64, error)
	Balance(ctx context.Context, accountID uint, targetCurrency string) (float64, string, error)
	Statement(ctx context.Context, accountID uint) ([]models.TransactionRecord, error)
	DeleteAccount(ctx context.Context, accountID uint) error
}

type service struct {
	accounts repositories.AccountRepository
	products repositories.ProductRepository
	ledger   ledger.Service
	rates    currency.RateSource
	verifier credentials.Verifier
}

func NewService(
	accounts repositories.AccountRepository,
	products repositories.ProductRepository,
	ledgerSvc ledger.Service,
	rates currency.RateSource,
	verifier credentials.Verifier,
) Service {
	if accounts == nil {
		panic("account repository is required")
	}
	if products == nil {
		panic("product repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if verifier == nil {
		panic("credential verifier is required")
	}
	return &service{
		accounts: accounts,
		products: products,
		ledger:   ledgerSvc,
		rates:    rates,
		verifier: verifier,
	}
}

// Register creates an account with a zero balance. Username and mobile are
// unique; a clash on either returns ErrConflict.
func (s *service) Register(ctx context.Context, username, secret, mobile string) (*models.Account, error) {
	if existing, _ := s.accounts.GetByUsername(username); existing != nil {
		return nil, ErrConflict
	}
	if existing, _ := s.accounts.GetByMobile(mobile); existing != nil {
		return nil, ErrConflict
	}

	hash, err := s.verifier.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: hash,
		Mobile:       mobile,
		Balance:      0,
	}
	if err := s.accounts.Create(account); err != nil {
		if errors.Is(err, repositories.ErrDuplicateAccount) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return account, nil
}

func (s *service) Fund(ctx context.Context, accountID uint, amount float64) (float64, error) {
	return s.ledger.Apply(ctx, accountID, models.KindCredit, amount)
}

// Pay transfers amount from the caller to the account registered under
// toUsername.
func (s *service) Pay(ctx context.Context, fromID uint, fromUsername, toUsername string, amount float64) (float64, error) {
	if toUsername == fromUsername {
		return 0, ErrSelfPayment
	}
	recipient, err := s.accounts.GetByUsername(toUsername)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return 0, ErrRecipientNotFound
		}
		return 0, err
	}
	return s.ledger.Transfer(ctx, fromID, recipient.ID, amount)
}

// Purchase debits the product's price from the account.
func (s *service) Purchase(ctx context.Context, accountID, productID uint) (float64, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return 0, err
	}
	return s.ledger.Apply(ctx, accountID, models.KindDebit, product.Price)
}

// Balance reads the current balance, converting it when a non-base
// currency is requested. Conversion is a read-time lookup; failure leaves
// the stored balance untouched and surfaces as an error to the caller.
func (s *service) Balance(ctx context.Context, accountID uint, targetCurrency string) (float64, string, error) {
	balance, err := s.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return 0, "", err
	}
	if targetCurrency == "" || targetCurrency == currency.BaseCurrency {
		return balance, currency.BaseCurrency, nil
	}
	if s.rates == nil {
		return 0, "", ErrConversionUnavailable
	}

	rate, err := s.rates.Rate(ctx, targetCurrency)
	if err != nil {
		if errors.Is(err, currency.ErrUnknownCurrency) {
			return 0, "", err
		}
		return 0, "", fmt.Errorf("%w: %v", ErrConversionUnavailable, err)
	}
	converted := math.Round(balance*rate*100) / 100
	return converted, targetCurrency, nil
}

func (s *service) Statement(ctx context.Context, accountID uint) ([]models.TransactionRecord, error) {
	return s.ledger.Statement(ctx, accountID)
}

func (s *service) DeleteAccount(ctx context.Context, accountID uint) error {
	return s.ledger.DeleteAccount(ctx, accountID)
}
