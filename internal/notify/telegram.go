package notify

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramClient sends plain-text messages through the Telegram bot API.
// Every call is bounded by the HTTP client timeout; a hung bot API call can
// never hold a dispatch slot forever.
type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	logger *zerolog.Logger
}

// NewTelegramClient builds a client for the given bot token. An empty token
// yields a disabled client: sends are skipped with a debug log entry.
func NewTelegramClient(token string, timeout time.Duration, logger *zerolog.Logger) (*TelegramClient, error) {
	if token == "" {
		logger.Warn().Msg("telegram bot token is empty, notifications disabled")
		return &TelegramClient{bot: nil, logger: logger}, nil
	}

	httpClient := &http.Client{Timeout: timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramClient{bot: bot, logger: logger}, nil
}

// Enabled reports whether a bot token was configured.
func (c *TelegramClient) Enabled() bool {
	return c.bot != nil
}

// SendMessage delivers one text message to a chat.
func (c *TelegramClient) SendMessage(chatID int64, text string) error {
	if c.bot == nil {
		c.logger.Debug().Int64("chat_id", chatID).Msg("notification skipped (bot disabled)")
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
