package repository

import (
	"gold-pulse/config"
	"gold-pulse/pkg/cache"
	"gold-pulse/pkg/kvstore"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/utils"
)

type Repository struct {
	ForecastCacheRepo ForecastCacheRepository
	HistoryRepo       HistoryRepository
	AlertStateRepo    AlertStateRepository
	AIRepo            AIRepository
	NewsRepo          NewsRepository
	PriceSourceRepos  []PriceSourceRepository
}

func NewRepository(cfg *config.Config, store kvstore.Store, inMemoryCache cache.Cache, log *logger.Logger) (*Repository, error) {
	aiRepo, err := NewAIRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	clock := utils.SystemClock
	return &Repository{
		ForecastCacheRepo: NewForecastCacheRepository(store, clock, cfg.Forecast.FreshnessWindow, log),
		HistoryRepo:       NewHistoryRepository(store, clock, cfg.Forecast.HistoryLimit, cfg.Forecast.HistoryDedupWindow, log),
		AlertStateRepo:    NewAlertStateRepository(store, log),
		AIRepo:            aiRepo,
		NewsRepo:          NewNewsRepository(cfg, inMemoryCache, log),
		PriceSourceRepos:  NewPriceSources(cfg, log),
	}, nil
}
