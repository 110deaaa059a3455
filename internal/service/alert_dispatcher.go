package service

import (
	"context"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/telegram"
	"strings"

	"gopkg.in/telebot.v3"
)

// AlertDispatcher delivers a forecast notification.
type AlertDispatcher interface {
	Send(ctx context.Context, asset model.Asset, forecast model.Forecast, price model.Price) error
}

type telegramAlertDispatcher struct {
	cfg      *config.TelegramConfig
	log      *logger.Logger
	telegram *telegram.TelegramRateLimiter
	provider string
}

func NewTelegramAlertDispatcher(cfg *config.TelegramConfig, log *logger.Logger, tg *telegram.TelegramRateLimiter, provider string) AlertDispatcher {
	return &telegramAlertDispatcher{
		cfg:      cfg,
		log:      log,
		telegram: tg,
		provider: provider,
	}
}

func (d *telegramAlertDispatcher) Send(ctx context.Context, asset model.Asset, forecast model.Forecast, price model.Price) error {
	if d.cfg.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.TimeoutDuration)
		defer cancel()
	}

	message := telegram.FormatForecastAlert(newForecastAlert(asset, forecast, price, d.provider))
	if _, err := d.telegram.SendToChat(ctx, d.cfg.ChatID, message, telebot.ModeHTML); err != nil {
		return fmt.Errorf("failed to send telegram alert for %s: %w", asset.Symbol, err)
	}

	d.log.InfoContext(ctx, "Telegram alert sent",
		logger.StringField("symbol", asset.Symbol),
		logger.StringField("recommendation", string(forecast.Recommendation)),
	)
	return nil
}

// logAlertDispatcher writes alerts to the log when no Telegram bot is configured.
type logAlertDispatcher struct {
	log      *logger.Logger
	provider string
}

func NewLogAlertDispatcher(log *logger.Logger, provider string) AlertDispatcher {
	return &logAlertDispatcher{log: log, provider: provider}
}

func (d *logAlertDispatcher) Send(ctx context.Context, asset model.Asset, forecast model.Forecast, price model.Price) error {
	d.log.InfoContext(ctx, "Forecast alert",
		logger.StringField("symbol", asset.Symbol),
		logger.StringField("message", telegram.FormatForecastAlert(newForecastAlert(asset, forecast, price, d.provider))),
	)
	return nil
}

func newForecastAlert(asset model.Asset, forecast model.Forecast, price model.Price, provider string) telegram.ForecastAlert {
	return telegram.ForecastAlert{
		Symbol:         asset.Symbol,
		Name:           asset.Name,
		IsGold:         asset.IsGold(),
		Provider:       displayProvider(provider),
		Recommendation: string(forecast.Recommendation),
		Confidence:     forecast.Confidence,
		CurrentPrice:   price.String(),
		PriceUnit:      price.Unit,
		TargetPrice:    forecast.TargetPrice.String(),
		TargetPriceTHB: forecast.TargetPriceTHB.String(),
		Reason:         forecast.Reason,
		Factors:        forecast.Factors,
		Timestamp:      forecast.ProducedAt(),
	}
}

func displayProvider(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
