package repositories

import (
	"errors"
	"fmt"

	"kosh/internal/models"

	"gorm.io/gorm"
)

// AccountRepository handles persistence of account identities. Balance and
// ledger mutations go through the ledger service, not through here.
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id uint) (*models.Account, error)
	GetByUsername(username string) (*models.Account, error)
	GetByMobile(mobile string) (*models.Account, error)
	LinkTelegramChat(mobile string, chatID int64) (*models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByUsername(username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByMobile(mobile string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("mobile = ?", mobile).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// LinkTelegramChat binds a Telegram chat id to the account registered with
// the given mobile number so ledger notifications can reach it.
func (r *accountRepository) LinkTelegramChat(mobile string, chatID int64) (*models.Account, error) {
	account, err := r.GetByMobile(mobile)
	if err != nil {
		return nil, err
	}
	account.TelegramChatID = &chatID
	if err := r.db.Model(account).Update("telegram_chat_id", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to link telegram chat: %w", err)
	}
	return account, nil
}
