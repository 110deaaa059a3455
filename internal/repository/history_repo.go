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

	"github.com/google/uuid"
)

type HistoryRepository interface {
	// Append records forecast unless it repeats the newest record's
	// recommendation inside the dedup window. It returns the resulting list
	// and whether the forecast was accepted.
	Append(ctx context.Context, symbol string, forecast model.Forecast, priceAtTime model.Price) ([]model.HistoryRecord, bool, error)
	List(ctx context.Context, symbol string) []model.HistoryRecord
	Clear(ctx context.Context, symbol string) error
}

type historyRepository struct {
	store       kvstore.Store
	clock       utils.Clock
	limit       int
	dedupWindow time.Duration
	logger      *logger.Logger
}

func NewHistoryRepository(store kvstore.Store, clock utils.Clock, limit int, dedupWindow time.Duration, log *logger.Logger) HistoryRepository {
	return &historyRepository{
		store:       store,
		clock:       clock,
		limit:       limit,
		dedupWindow: dedupWindow,
		logger:      log,
	}
}

func (r *historyRepository) key(symbol string) string {
	return fmt.Sprintf(common.KEY_ANALYSIS_HISTORY, symbol)
}

func (r *historyRepository) List(ctx context.Context, symbol string) []model.HistoryRecord {
	records, err := r.load(ctx, symbol)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to read history", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return []model.HistoryRecord{}
	}
	return records
}

// load treats a corrupt value as an empty history but reports store failures.
func (r *historyRepository) load(ctx context.Context, symbol string) ([]model.HistoryRecord, error) {
	var records []model.HistoryRecord
	found, err := kvstore.GetJSON(ctx, r.store, r.key(symbol), &records)
	if err != nil && !found {
		return nil, err
	}
	if err != nil {
		r.logger.WarnContext(ctx, "Corrupt history, treating as empty",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err),
		)
		return []model.HistoryRecord{}, nil
	}
	if records == nil {
		return []model.HistoryRecord{}, nil
	}
	return records, nil
}

func (r *historyRepository) Append(ctx context.Context, symbol string, forecast model.Forecast, priceAtTime model.Price) ([]model.HistoryRecord, bool, error) {
	records, err := r.load(ctx, symbol)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load history for %s: %w", symbol, err)
	}

	if !r.accepts(records, forecast) {
		return records, false, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return records, false, fmt.Errorf("failed to generate history id: %w", err)
	}

	record := model.HistoryRecord{
		Forecast:    forecast,
		ID:          id.String(),
		AssetSymbol: symbol,
		PriceAtTime: priceAtTime,
	}

	updated := make([]model.HistoryRecord, 0, len(records)+1)
	updated = append(updated, record)
	updated = append(updated, records...)
	if len(updated) > r.limit {
		updated = updated[:r.limit]
	}

	if err := kvstore.SetJSON(ctx, r.store, r.key(symbol), updated); err != nil {
		return records, false, fmt.Errorf("failed to save history for %s: %w", symbol, err)
	}

	return updated, true, nil
}

func (r *historyRepository) accepts(records []model.HistoryRecord, forecast model.Forecast) bool {
	if len(records) == 0 {
		return true
	}
	newest := records[0]
	if r.clock.Now().Sub(newest.ProducedAt()) > r.dedupWindow {
		return true
	}
	return newest.Recommendation != forecast.Recommendation
}

func (r *historyRepository) Clear(ctx context.Context, symbol string) error {
	if err := r.store.Remove(ctx, r.key(symbol)); err != nil {
		return fmt.Errorf("failed to clear history for %s: %w", symbol, err)
	}
	return nil
}
