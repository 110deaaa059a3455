package repository

import (
	"context"
	"fmt"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/common"
	"gold-pulse/pkg/kvstore"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/utils"
	"time"
)

type ForecastCacheRepository interface {
	// Get returns the cached forecast while it is younger than the freshness
	// window. Missing or unreadable entries are a miss.
	Get(ctx context.Context, symbol string) (*model.Forecast, bool)
	Put(ctx context.Context, symbol string, forecast model.Forecast) error
}

type forecastCacheRepository struct {
	store  kvstore.Store
	clock  utils.Clock
	window time.Duration
	logger *logger.Logger
}

func NewForecastCacheRepository(store kvstore.Store, clock utils.Clock, window time.Duration, log *logger.Logger) ForecastCacheRepository {
	return &forecastCacheRepository{
		store:  store,
		clock:  clock,
		window: window,
		logger: log,
	}
}

func (r *forecastCacheRepository) Get(ctx context.Context, symbol string) (*model.Forecast, bool) {
	key := fmt.Sprintf(common.KEY_FORECAST_CACHE, symbol)

	var cached model.CachedForecast
	found, err := kvstore.GetJSON(ctx, r.store, key, &cached)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to read cached forecast, treating as miss",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err),
		)
		return nil, false
	}
	if !found {
		return nil, false
	}

	age := r.clock.Now().Sub(time.UnixMilli(cached.CachedAt))
	if age >= r.window {
		return nil, false
	}

	forecast := cached.Forecast
	return &forecast, true
}

func (r *forecastCacheRepository) Put(ctx context.Context, symbol string, forecast model.Forecast) error {
	key := fmt.Sprintf(common.KEY_FORECAST_CACHE, symbol)
	cached := model.CachedForecast{
		Forecast: forecast,
		CachedAt: r.clock.Now().UnixMilli(),
	}
	if err := kvstore.SetJSON(ctx, r.store, key, cached); err != nil {
		return fmt.Errorf("failed to cache forecast for %s: %w", symbol, err)
	}
	return nil
}
