package telegram

import (
	"context"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/ratelimit"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Sender is the part of *telebot.Bot used to push messages.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// NewBot builds a send-only bot. The service never polls for updates.
func NewBot(cfg *config.TelegramConfig) (*telebot.Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.BotToken,
		Offline: true,
		Client:  &http.Client{Timeout: cfg.TimeoutDuration},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

// TelegramRateLimiter keeps outgoing messages under Telegram's global and
// per-chat limits.
type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	chatLimiters  *ratelimit.LimiterStore
	bot           Sender
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot Sender) *TelegramRateLimiter {
	global := max(cfg.MaxGlobalRequestPerSecond, 1)
	perChat := max(cfg.MaxChatRequestPerSecond, 1)

	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(global), global),
		chatLimiters:  ratelimit.NewLimiterStore(rate.Limit(perChat), perChat),
	}
}

// SendToChat waits for both limiters and sends what to chatID.
func (t *TelegramRateLimiter) SendToChat(ctx context.Context, chatID int64, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, chatID); err != nil {
		return nil, err
	}
	msg, err := t.bot.Send(&telebot.Chat{ID: chatID}, what, opts...)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to send message", logger.ErrorField(err), logger.Field("chat_id", chatID))
		return nil, err
	}
	return msg, nil
}

func (t *TelegramRateLimiter) checkRateLimit(ctx context.Context, chatID int64) error {
	if err := t.chatLimiters.GetLimiter(strconv.FormatInt(chatID, 10)).Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for chat rate limit: %w", err)
	}
	if err := t.globalLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for global rate limit: %w", err)
	}
	return nil
}
