// Package notification delivers best-effort transaction alerts. Delivery
// is decoupled from the ledger: a slow or failing sink never blocks or
// fails a financial operation.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"kosh/internal/repositories"
)

const telegramAPIURL = "https://api.telegram.org"

// TelegramService sends transaction alerts through the Telegram Bot API to
// accounts that linked a chat id.
type TelegramService struct {
	botToken   string
	apiURL     string
	accounts   repositories.AccountRepository
	httpClient *http.Client
}

func NewTelegramService(botToken string, accounts repositories.AccountRepository) *TelegramService {
	return &TelegramService{
		botToken:   botToken,
		apiURL:     telegramAPIURL,
		accounts:   accounts,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewTelegramServiceWithURL is used by tests to point at a stub server.
func NewTelegramServiceWithURL(botToken, apiURL string, accounts repositories.AccountRepository) *TelegramService {
	s := NewTelegramService(botToken, accounts)
	s.apiURL = apiURL
	return s
}

func (s *TelegramService) Notify(ctx context.Context, accountID uint, kind string, amount, balance float64) error {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return fmt.Errorf("failed to resolve account %d: %w", accountID, err)
	}
	if account.TelegramChatID == nil {
		return nil
	}

	text := fmt.Sprintf("Transaction Alert: Your account was %sed by ₹%.2f. New balance: ₹%.2f.",
		kind, amount, balance)
	return s.SendMessage(ctx, *account.TelegramChatID, text)
}

// SendMessage delivers a plain-text message to a chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// LogService is the fallback sink used when no bot token is configured.
// It writes alerts to the application log.
type LogService struct{}

func NewLogService() *LogService { return &LogService{} }

func (s *LogService) Notify(_ context.Context, accountID uint, kind string, amount, balance float64) error {
	log.Printf("account %d %s ₹%.2f, balance ₹%.2f", accountID, kind, amount, balance)
	return nil
}
