package repository

import (
	"context"
	"gold-pulse/config"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/logger"
	"net/url"
)

// PriceSourceRepository fetches the reference price of an asset.
type PriceSourceRepository interface {
	Name() string
	Supports(asset model.Asset) bool
	Current(ctx context.Context, asset model.Asset) (model.Price, error)
}

// NewPriceSources returns every configured source in fallback order: gold
// feeds first, then the equity chart endpoints.
func NewPriceSources(cfg *config.Config, log *logger.Logger) []PriceSourceRepository {
	sources := make([]PriceSourceRepository, 0, len(cfg.Price.GoldBaseURLs)+len(cfg.Price.StockBaseURLs))
	for _, u := range cfg.Price.GoldBaseURLs {
		sources = append(sources, NewGoldPriceRepository(sourceName("thai-gold", u), u, cfg, log))
	}
	for _, u := range cfg.Price.StockBaseURLs {
		sources = append(sources, NewYahooFinanceRepository(sourceName("yahoo", u), u, cfg, log))
	}
	return sources
}

func sourceName(kind, baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return kind
	}
	return kind + "@" + parsed.Host
}
