package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	defaultSendTimeout = 15 * time.Second
	sendTries          = 3
)

type TelegramConfig struct {
	BotToken string
	ChatID   int64
	// Endpoint overrides tgbotapi.APIEndpoint, mostly for tests.
	Endpoint    string
	HTTPTimeout time.Duration
	ParseMode   string
}

// Telegram sends alerts to one chat. The bot is created on the first send so
// startup does not depend on reaching the Telegram API.
type Telegram struct {
	cfg    TelegramConfig
	client *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram bot_token and chat_id are required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = tgbotapi.APIEndpoint
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultSendTimeout
	}
	if cfg.ParseMode == "" {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	return &Telegram{cfg: cfg, client: &http.Client{Timeout: cfg.HTTPTimeout}}, nil
}

func (t *Telegram) botAPI() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.cfg.BotToken, t.cfg.Endpoint, t.client)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	t.bot = bot
	return bot, nil
}

// SendText sends text, retrying transient failures up to three times.
func (t *Telegram) SendText(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTries*t.cfg.HTTPTimeout)
	defer cancel()
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		bot, err := t.botAPI()
		if err != nil {
			return struct{}{}, err
		}
		msg := tgbotapi.NewMessage(t.cfg.ChatID, text)
		msg.ParseMode = t.cfg.ParseMode
		if _, err := bot.Send(msg); err != nil {
			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithMaxTries(sendTries), backoff.WithBackOff(backoff.NewExponentialBackOff()))
	return err
}
