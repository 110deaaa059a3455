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
	"net/http"
)

// yahooFinanceRepository reads the regular market price from the v8 chart API.
type yahooFinanceRepository struct {
	name       string
	httpClient httpclient.HTTPClient
	logger     *logger.Logger
}

func NewYahooFinanceRepository(name, baseURL string, cfg *config.Config, log *logger.Logger) PriceSourceRepository {
	return &yahooFinanceRepository{
		name:       name,
		httpClient: httpclient.New(baseURL, cfg.Price.PerSourceTimeout, ""),
		logger:     log,
	}
}

func (r *yahooFinanceRepository) Name() string {
	return r.name
}

func (r *yahooFinanceRepository) Supports(asset model.Asset) bool {
	return asset.Kind == common.ASSET_KIND_STOCK
}

func (r *yahooFinanceRepository) Current(ctx context.Context, asset model.Asset) (model.Price, error) {
	queryParams := map[string]string{
		"interval":       "1d",
		"range":          "1d",
		"includePrePost": "false",
	}
	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, "/"+asset.Symbol, queryParams, headers, &yahooResp)
	if err != nil {
		return model.Price{}, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.StringField("source", r.name),
			logger.IntField("status_code", resp.StatusCode))
		return model.Price{}, fmt.Errorf("yahoo finance api returned status: %d", resp.StatusCode)
	}

	if yahooResp.Chart.Error != nil {
		return model.Price{}, fmt.Errorf("yahoo finance api error: %v", yahooResp.Chart.Error)
	}
	if len(yahooResp.Chart.Result) == 0 {
		return model.Price{}, fmt.Errorf("no data returned for symbol: %s", asset.Symbol)
	}

	marketPrice := yahooResp.Chart.Result[0].Meta.RegularMarketPrice
	if marketPrice <= 0 {
		return model.Price{}, fmt.Errorf("no market price for symbol: %s", asset.Symbol)
	}

	return model.NewPrice(marketPrice, common.UNIT_USD), nil
}
