package service

import (
	"gold-pulse/config"
	"gold-pulse/internal/repository"
	"gold-pulse/pkg/cache"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/metrics"
	"gold-pulse/pkg/telegram"
	"gold-pulse/pkg/utils"
)

type Service struct {
	AlertGate      AlertGate
	PriceService   PriceService
	Orchestrator   Orchestrator
	MonitorService MonitorService
	AssetService   AssetService
}

// NewService wires the engine. tg may be nil, in which case alerts are
// written to the log instead of Telegram.
func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inMemoryCache cache.Cache,
	tg *telegram.TelegramRateLimiter,
	recorder *metrics.Recorder,
) *Service {
	clock := utils.SystemClock

	var dispatcher AlertDispatcher
	if tg != nil {
		dispatcher = NewTelegramAlertDispatcher(&cfg.Telegram, log, tg, repo.AIRepo.Name())
	} else {
		dispatcher = NewLogAlertDispatcher(log, repo.AIRepo.Name())
	}

	gate := NewAlertGate(repo.AlertStateRepo, clock, cfg.Forecast.AlertCooldown)
	priceService := NewPriceService(repo.PriceSourceRepos, cfg.Price.PerSourceTimeout, log, recorder, clock)
	orchestrator := NewOrchestrator(cfg, log, repo.ForecastCacheRepo, repo.HistoryRepo, repo.AIRepo, gate, dispatcher, recorder, clock)
	monitor := NewMonitorService(cfg, log, repo.NewsRepo, priceService, orchestrator, inMemoryCache)

	return &Service{
		AlertGate:      gate,
		PriceService:   priceService,
		Orchestrator:   orchestrator,
		MonitorService: monitor,
		AssetService:   NewAssetService(cfg, repo.ForecastCacheRepo, repo.HistoryRepo, monitor),
	}
}
