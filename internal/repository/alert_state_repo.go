package repository

import (
	"context"
	"fmt"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/common"
	"gold-pulse/pkg/kvstore"
	"gold-pulse/pkg/logger"
)

type AlertStateRepository interface {
	// Get returns nil when no alert was ever confirmed for symbol.
	Get(ctx context.Context, symbol string) *model.AlertState
	Save(ctx context.Context, symbol string, state model.AlertState) error
}

type alertStateRepository struct {
	store  kvstore.Store
	logger *logger.Logger
}

func NewAlertStateRepository(store kvstore.Store, log *logger.Logger) AlertStateRepository {
	return &alertStateRepository{store: store, logger: log}
}

func (r *alertStateRepository) Get(ctx context.Context, symbol string) *model.AlertState {
	var state model.AlertState
	found, err := kvstore.GetJSON(ctx, r.store, fmt.Sprintf(common.KEY_ALERT_STATE, symbol), &state)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to read alert state, treating as absent",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err),
		)
		return nil
	}
	if !found {
		return nil
	}
	return &state
}

func (r *alertStateRepository) Save(ctx context.Context, symbol string, state model.AlertState) error {
	if err := kvstore.SetJSON(ctx, r.store, fmt.Sprintf(common.KEY_ALERT_STATE, symbol), state); err != nil {
		return fmt.Errorf("failed to save alert state for %s: %w", symbol, err)
	}
	return nil
}
