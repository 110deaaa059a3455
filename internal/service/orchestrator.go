package service

import (
	"context"
	"errors"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/internal/repository"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/metrics"
	"gold-pulse/pkg/utils"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrUnknownAsset = errors.New("unknown asset")

// Evaluation is the outcome of one decision cycle for an asset.
type Evaluation struct {
	Symbol          string
	Skipped         bool
	Forecast        *model.Forecast
	FromCache       bool
	HistoryAppended bool
	Notified        bool
	PriceSource     string
}

type Orchestrator interface {
	// Evaluate runs one cycle: forecast (cached or fresh), history, alert.
	Evaluate(ctx context.Context, asset model.Asset, headlines []string, quote model.Quote) (*Evaluation, error)
	// EvaluateAll runs every configured asset that has a quote.
	EvaluateAll(ctx context.Context, headlinesByCategory map[string][]string, quotes map[string]model.Quote) ([]*Evaluation, error)
}

type orchestrator struct {
	cfg         *config.Config
	log         *logger.Logger
	cacheRepo   repository.ForecastCacheRepository
	historyRepo repository.HistoryRepository
	aiRepo      repository.AIRepository
	gate        AlertGate
	dispatcher  AlertDispatcher
	metrics     *metrics.Recorder
	clock       utils.Clock

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewOrchestrator(
	cfg *config.Config,
	log *logger.Logger,
	cacheRepo repository.ForecastCacheRepository,
	historyRepo repository.HistoryRepository,
	aiRepo repository.AIRepository,
	gate AlertGate,
	dispatcher AlertDispatcher,
	recorder *metrics.Recorder,
	clock utils.Clock,
) Orchestrator {
	return &orchestrator{
		cfg:         cfg,
		log:         log,
		cacheRepo:   cacheRepo,
		historyRepo: historyRepo,
		aiRepo:      aiRepo,
		gate:        gate,
		dispatcher:  dispatcher,
		metrics:     recorder,
		clock:       clock,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (o *orchestrator) lock(symbol string) func() {
	o.locksMu.Lock()
	mu, ok := o.locks[symbol]
	if !ok {
		mu = &sync.Mutex{}
		o.locks[symbol] = mu
	}
	o.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (o *orchestrator) Evaluate(ctx context.Context, asset model.Asset, headlines []string, quote model.Quote) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eval := &Evaluation{Symbol: asset.Symbol, PriceSource: quote.Source}
	if len(headlines) == 0 || !quote.Price.Valid() {
		eval.Skipped = true
		return eval, nil
	}

	unlock := o.lock(asset.Symbol)
	defer unlock()

	start := time.Now()
	defer func() {
		o.metrics.RecordLatency("evaluate", time.Since(start).Seconds())
	}()

	forecast, hit := o.cacheRepo.Get(ctx, asset.Symbol)
	o.metrics.RecordCacheLookup(asset.Symbol, hit)
	eval.FromCache = hit
	if !hit {
		forecast = o.analyze(ctx, asset, headlines, quote.Price)
		if err := o.cacheRepo.Put(ctx, asset.Symbol, *forecast); err != nil {
			o.log.WarnContext(ctx, "Failed to cache forecast", logger.StringField("symbol", asset.Symbol), logger.ErrorField(err))
		}
	}
	eval.Forecast = forecast

	_, accepted, err := o.historyRepo.Append(ctx, asset.Symbol, *forecast, quote.Price)
	if err != nil {
		o.log.ErrorContext(ctx, "Failed to append history", logger.StringField("symbol", asset.Symbol), logger.ErrorField(err))
	}
	eval.HistoryAppended = accepted
	o.metrics.RecordHistoryAppend(asset.Symbol, accepted)

	if asset.Alert && o.gate.ShouldNotify(ctx, asset.Symbol, *forecast) {
		eval.Notified = o.dispatch(ctx, asset, *forecast, quote.Price)
	}

	o.log.DebugContext(ctx, "Evaluation finished",
		logger.StringField("symbol", asset.Symbol),
		logger.StringField("recommendation", string(forecast.Recommendation)),
		logger.Field("from_cache", eval.FromCache),
		logger.Field("history_appended", eval.HistoryAppended),
		logger.Field("notified", eval.Notified),
	)
	return eval, nil
}

// analyze never fails: provider errors degrade to the default HOLD forecast.
func (o *orchestrator) analyze(ctx context.Context, asset model.Asset, headlines []string, price model.Price) *model.Forecast {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.AI.Timeout)
	defer cancel()

	start := time.Now()
	forecast, err := o.aiRepo.Analyze(callCtx, dto.AnalyzeRequest{
		Asset:        asset,
		Headlines:    headlines,
		CurrentPrice: price,
	})
	o.metrics.RecordLatency("provider", time.Since(start).Seconds())
	if err != nil {
		o.metrics.RecordProviderCall(asset.Symbol, "failure")
		o.log.WarnContext(ctx, "Forecast provider failed, using default forecast",
			logger.StringField("symbol", asset.Symbol),
			logger.StringField("provider", o.aiRepo.Name()),
			logger.ErrorField(err),
		)
		fallback := model.DefaultForecast(o.clock.Now())
		return &fallback
	}

	o.metrics.RecordProviderCall(asset.Symbol, "success")
	return forecast
}

func (o *orchestrator) dispatch(ctx context.Context, asset model.Asset, forecast model.Forecast, price model.Price) bool {
	if err := o.dispatcher.Send(ctx, asset, forecast, price); err != nil {
		o.gate.Release(asset.Symbol, forecast)
		o.metrics.RecordAlert(asset.Symbol, "failure")
		o.log.ErrorContextWithAlert(ctx, "Failed to dispatch alert",
			logger.StringField("symbol", asset.Symbol),
			logger.ErrorField(err),
		)
		return false
	}

	o.metrics.RecordAlert(asset.Symbol, "sent")
	if err := o.gate.Confirm(ctx, asset.Symbol, forecast); err != nil {
		o.log.ErrorContext(ctx, "Failed to persist alert state", logger.StringField("symbol", asset.Symbol), logger.ErrorField(err))
	}
	return true
}

func (o *orchestrator) EvaluateAll(ctx context.Context, headlinesByCategory map[string][]string, quotes map[string]model.Quote) ([]*Evaluation, error) {
	assets := model.AssetsFromConfig(o.cfg.Assets)
	results := make([]*Evaluation, len(assets))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.cfg.Forecast.MaxConcurrency, 1))

	for i, asset := range assets {
		quote, ok := quotes[asset.Symbol]
		if !ok {
			results[i] = &Evaluation{Symbol: asset.Symbol, Skipped: true}
			continue
		}
		headlines := headlinesByCategory[asset.NewsCategory]

		g.Go(func() error {
			eval, err := o.Evaluate(gCtx, asset, headlines, quote)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", asset.Symbol, err)
			}
			results[i] = eval
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
