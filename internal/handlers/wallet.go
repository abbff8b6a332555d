package handlers

import (
	"errors"
	"log"

	"kosh/internal/models"
	"kosh/internal/services/currency"
	"kosh/internal/services/ledger"
	"kosh/internal/services/wallet"
	"kosh/internal/utils"
	"kosh/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// Register creates a new account with a zero balance.
func (h *WalletHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Mobile   string `json:"mobile"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Registration(input.Username, input.Password, input.Mobile)
	if !v.Valid() {
		return utils.BadRequest(c, v.FirstError())
	}

	if _, err := h.walletService.Register(c.UserContext(), input.Username, input.Password, input.Mobile); err != nil {
		if errors.Is(err, wallet.ErrConflict) {
			return utils.BadRequest(c, "Username or mobile number already exists")
		}
		log.Printf("register error: %v", err)
		return utils.InternalError(c, "Internal server error")
	}
	return utils.Created(c, fiber.Map{"message": "User registered"})
}

// Fund credits the caller's account.
func (h *WalletHandler) Fund(c *fiber.Ctx) error {
	var input struct {
		Amount float64 `json:"amt"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.Amount <= 0 {
		return utils.BadRequest(c, "Amount must be a positive number")
	}

	balance, err := h.walletService.Fund(c.UserContext(), sessionAccountID(c), input.Amount)
	if err != nil {
		return h.ledgerError(c, "fund", err)
	}
	return utils.Success(c, fiber.Map{"balance": balance})
}

// Pay transfers funds to another user, addressed by username.
func (h *WalletHandler) Pay(c *fiber.Ctx) error {
	var input struct {
		To     string  `json:"to"`
		Amount float64 `json:"amt"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.To == "" || input.Amount <= 0 {
		return utils.BadRequest(c, "Recipient and positive amount required")
	}

	claims := sessionClaims(c)
	balance, err := h.walletService.Pay(c.UserContext(), claims.AccountID, claims.Username, input.To, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrSelfPayment), errors.Is(err, ledger.ErrSelfTransfer):
			return utils.BadRequest(c, "Cannot pay yourself")
		case errors.Is(err, wallet.ErrRecipientNotFound):
			return utils.BadRequest(c, "Recipient does not exist")
		default:
			return h.ledgerError(c, "pay", err)
		}
	}
	return utils.Success(c, fiber.Map{"balance": balance})
}

// Balance returns the caller's balance, optionally converted to another
// currency.
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	target := c.Query("currency")

	balance, code, err := h.walletService.Balance(c.UserContext(), sessionAccountID(c), target)
	if err != nil {
		switch {
		case errors.Is(err, currency.ErrUnknownCurrency):
			return utils.BadRequest(c, "Invalid currency code")
		case errors.Is(err, wallet.ErrConversionUnavailable):
			return utils.BadRequest(c, "Currency conversion unavailable")
		default:
			return h.ledgerError(c, "balance", err)
		}
	}
	return utils.Success(c, fiber.Map{"balance": balance, "currency": code})
}

// Statement returns the caller's transaction history, most recent first.
func (h *WalletHandler) Statement(c *fiber.Ctx) error {
	records, err := h.walletService.Statement(c.UserContext(), sessionAccountID(c))
	if err != nil {
		return h.ledgerError(c, "statement", err)
	}
	return utils.Success(c, records)
}

// DeleteAccount removes the caller's account and its transaction history.
func (h *WalletHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.walletService.DeleteAccount(c.UserContext(), sessionAccountID(c)); err != nil {
		return h.ledgerError(c, "delete account", err)
	}
	return utils.Success(c, fiber.Map{"message": "User account and related transactions deleted successfully"})
}

func (h *WalletHandler) ledgerError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return utils.BadRequest(c, "Insufficient funds")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return utils.BadRequest(c, "Amount must be a positive number")
	case errors.Is(err, ledger.ErrAccountNotFound):
		return utils.NotFound(c, "Account not found")
	default:
		log.Printf("%s error: %v", op, err)
		return utils.InternalError(c, "Internal server error")
	}
}

func sessionClaims(c *fiber.Ctx) *models.SessionClaims {
	claims, _ := c.Locals("claims").(*models.SessionClaims)
	return claims
}

func sessionAccountID(c *fiber.Ctx) uint {
	if claims := sessionClaims(c); claims != nil {
		return claims.AccountID
	}
	return 0
}
