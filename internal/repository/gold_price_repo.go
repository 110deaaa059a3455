package repository

import (
	"context"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/common"
	"gold-pulse/pkg/httpclient"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/utils"
	"strconv"
	"strings"
)

// goldPriceRepository reads the Thai gold association feed. The reference
// price is the gold bar sell price in baht.
type goldPriceRepository struct {
	name       string
	httpClient httpclient.HTTPClient
	logger     *logger.Logger
	clock      utils.Clock
}

func NewGoldPriceRepository(name, baseURL string, cfg *config.Config, log *logger.Logger) PriceSourceRepository {
	return &goldPriceRepository{
		name:       name,
		httpClient: httpclient.New(baseURL, cfg.Price.PerSourceTimeout, ""),
		logger:     log,
		clock:      utils.SystemClock,
	}
}

func (r *goldPriceRepository) Name() string {
	return r.name
}

func (r *goldPriceRepository) Supports(asset model.Asset) bool {
	return asset.Kind == common.ASSET_KIND_GOLD
}

func (r *goldPriceRepository) Current(ctx context.Context, asset model.Asset) (model.Price, error) {
	// t defeats intermediate caches
	query := map[string]string{
		"t": strconv.FormatInt(r.clock.Now().UnixMilli(), 10),
	}

	var goldResp dto.ThaiGoldResponse
	resp, err := r.httpClient.Get(ctx, "/latest", query, nil, &goldResp)
	if err != nil {
		return model.Price{}, fmt.Errorf("failed to fetch gold price: %w", err)
	}
	if !resp.IsSuccess() {
		return model.Price{}, fmt.Errorf("gold price api returned status: %d", resp.StatusCode)
	}
	if goldResp.Status != dto.GoldAPIStatusSuccess {
		return model.Price{}, fmt.Errorf("gold price api status %q", goldResp.Status)
	}

	sell := strings.TrimSpace(goldResp.Response.Price.GoldBar.Sell)
	price := model.ParsePrice(sell, common.UNIT_THB)
	if !price.Valid() {
		return model.Price{}, fmt.Errorf("gold bar sell price missing or invalid: %q", sell)
	}

	r.logger.DebugContext(ctx, "Gold price fetched",
		logger.StringField("source", r.name),
		logger.StringField("sell", sell),
		logger.StringField("update_time", goldResp.Response.UpdateTime),
	)
	return price, nil
}
