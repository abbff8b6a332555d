package handlers

import (
	"errors"
	"log"
	"strings"

	"kosh/internal/repositories"
	"kosh/internal/services/notification"
	"kosh/internal/utils"
	"kosh/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// TelegramHandler receives bot webhook updates. Users link their chat to an
// account by sending the bot their registered mobile number; linked chats
// receive transaction alerts.
type TelegramHandler struct {
	accounts repositories.AccountRepository
	bot      *notification.TelegramService
}

func NewTelegramHandler(accounts repositories.AccountRepository, bot *notification.TelegramService) *TelegramHandler {
	return &TelegramHandler{accounts: accounts, bot: bot}
}

// Webhook always answers 200; problems are reported back into the chat so
// Telegram does not retry the update.
func (h *TelegramHandler) Webhook(c *fiber.Ctx) error {
	var update struct {
		Message struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
			Text string `json:"text"`
		} `json:"message"`
	}
	if err := c.BodyParser(&update); err != nil {
		return utils.Success(c, fiber.Map{"ok": true})
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	if chatID == 0 || text == "" {
		return utils.Success(c, fiber.Map{"ok": true})
	}

	reply := h.handleMessage(chatID, text)
	if err := h.bot.SendMessage(c.UserContext(), chatID, reply); err != nil {
		log.Printf("failed to reply to telegram chat %d: %v", chatID, err)
	}
	return utils.Success(c, fiber.Map{"ok": true})
}

func (h *TelegramHandler) handleMessage(chatID int64, text string) string {
	if text == "/start" {
		return "Welcome! Reply with your registered mobile number to receive transaction alerts."
	}

	v := validation.New()
	v.Mobile("mobile", text)
	if !v.Valid() {
		return "Please send your registered 10-digit mobile number."
	}

	account, err := h.accounts.LinkTelegramChat(text, chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return "No account is registered with that mobile number."
		}
		log.Printf("failed to link telegram chat %d: %v", chatID, err)
		return "Something went wrong, please try again later."
	}
	return "Linked! " + account.Username + " will now receive transaction alerts here."
}
