package cmd

import (
	"context"
	"gold-pulse/config"
	"gold-pulse/pkg/cache"
	"gold-pulse/pkg/kvstore"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/metrics"
	"gold-pulse/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type AppDependency struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	store     kvstore.Store
	telegram  *telegram.TelegramRateLimiter
	registry  *prometheus.Registry
	recorder  *metrics.Recorder
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}
	if cfg.Telegram.AlertLogs && cfg.Telegram.BotToken != "" {
		log = log.WithAlertCore(logger.NewAlertCore(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.TimeoutDuration))
	}

	store, err := kvstore.New(cfg, log)
	if err != nil {
		log.Error("Failed to open key-value store", zap.Error(err))
		return nil, err
	}

	var tg *telegram.TelegramRateLimiter
	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(&cfg.Telegram)
		if err != nil {
			log.Error("Failed to create telegram bot", zap.Error(err))
			_ = store.Close()
			return nil, err
		}
		tg = telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot)
	} else {
		log.Warn("Telegram bot token not set, alerts go to the log only")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		echo:      e,
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		store:     store,
		telegram:  tg,
		registry:  registry,
		recorder:  metrics.New(registry),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	defer func() { _ = d.log.Sync() }()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
