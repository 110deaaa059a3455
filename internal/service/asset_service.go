package service

import (
	"context"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/internal/repository"
	"strings"
)

// AssetService backs the dashboard API and CLI.
type AssetService interface {
	List(ctx context.Context) []dto.AssetOverview
	Forecast(ctx context.Context, symbol string) (*model.Forecast, error)
	History(ctx context.Context, symbol string) ([]model.HistoryRecord, error)
	ClearHistory(ctx context.Context, symbol string) error
	Evaluate(ctx context.Context, symbol string) (*Evaluation, error)
}

type assetService struct {
	cfg         *config.Config
	assets      []model.Asset
	cacheRepo   repository.ForecastCacheRepository
	historyRepo repository.HistoryRepository
	monitor     MonitorService
}

func NewAssetService(cfg *config.Config, cacheRepo repository.ForecastCacheRepository, historyRepo repository.HistoryRepository, monitor MonitorService) AssetService {
	return &assetService{
		cfg:         cfg,
		assets:      model.AssetsFromConfig(cfg.Assets),
		cacheRepo:   cacheRepo,
		historyRepo: historyRepo,
		monitor:     monitor,
	}
}

func (s *assetService) List(ctx context.Context) []dto.AssetOverview {
	out := make([]dto.AssetOverview, 0, len(s.assets))
	for _, asset := range s.assets {
		overview := dto.AssetOverview{Asset: asset}
		if quote, ok := s.monitor.LatestQuote(asset.Symbol); ok {
			overview.Quote = &quote
			overview.Proxied = quote.Proxied()
		}
		if forecast, ok := s.cacheRepo.Get(ctx, asset.Symbol); ok {
			overview.Forecast = forecast
		}
		out = append(out, overview)
	}
	return out
}

func (s *assetService) find(symbol string) (model.Asset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range s.assets {
		if a.Symbol == symbol {
			return a, nil
		}
	}
	return model.Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
}

// Forecast returns the fresh cached forecast, or nil when there is none.
func (s *assetService) Forecast(ctx context.Context, symbol string) (*model.Forecast, error) {
	asset, err := s.find(symbol)
	if err != nil {
		return nil, err
	}
	forecast, ok := s.cacheRepo.Get(ctx, asset.Symbol)
	if !ok {
		return nil, nil
	}
	return forecast, nil
}

func (s *assetService) History(ctx context.Context, symbol string) ([]model.HistoryRecord, error) {
	asset, err := s.find(symbol)
	if err != nil {
		return nil, err
	}
	return s.historyRepo.List(ctx, asset.Symbol), nil
}

func (s *assetService) ClearHistory(ctx context.Context, symbol string) error {
	asset, err := s.find(symbol)
	if err != nil {
		return err
	}
	return s.historyRepo.Clear(ctx, asset.Symbol)
}

func (s *assetService) Evaluate(ctx context.Context, symbol string) (*Evaluation, error) {
	return s.monitor.EvaluateSymbol(ctx, symbol)
}
