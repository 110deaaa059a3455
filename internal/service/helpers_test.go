package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/internal/repository"
	"gold-pulse/pkg/kvstore"
	"gold-pulse/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeAI struct {
	mu      sync.Mutex
	calls   int
	rec     model.Recommendation
	err     error
	delay   time.Duration
	clock   *fakeClock
	lastReq dto.AnalyzeRequest
}

func (f *fakeAI) Name() string { return "fake" }

func (f *fakeAI) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*model.Forecast, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	rec, err, delay := f.rec, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &model.Forecast{
		Recommendation: rec,
		Confidence:     80,
		Reason:         "headlines look bullish",
		TargetPrice:    model.ParsePrice("$2,750", "USD"),
		TargetPriceTHB: model.ParsePrice("44,500", "THB"),
		Timestamp:      f.clock.Now().UnixMilli(),
	}, nil
}

func (f *fakeAI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAI) SetRecommendation(rec model.Recommendation) {
	f.mu.Lock()
	f.rec = rec
	f.mu.Unlock()
}

type sentAlert struct {
	symbol   string
	forecast model.Forecast
	price    model.Price
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sentAlert
	err  error
}

func (f *fakeDispatcher) Send(ctx context.Context, asset model.Asset, forecast model.Forecast, price model.Price) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentAlert{symbol: asset.Symbol, forecast: forecast, price: price})
	return nil
}

func (f *fakeDispatcher) SetErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeDispatcher) Sent() []sentAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentAlert(nil), f.sent...)
}

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AI{Provider: "mistral", Model: "test", Timeout: time.Second},
		Forecast: config.Forecast{
			FreshnessWindow:    15 * time.Minute,
			HistoryLimit:       50,
			HistoryDedupWindow: time.Hour,
			AlertCooldown:      time.Hour,
			EvaluationTimeout:  5 * time.Second,
			MaxConcurrency:     3,
		},
		Price: config.Price{PerSourceTimeout: time.Second, PollInterval: 30 * time.Second},
		News:  config.News{RefreshInterval: 10 * time.Minute},
		Assets: []config.Asset{
			{Symbol: "GOLD", Name: "Thai Gold Bar", Kind: "gold", NewsCategory: "gold", Alert: true},
			{Symbol: "NVDA", Name: "NVIDIA Corp", Kind: "stock", NewsCategory: "business"},
		},
	}
}

var (
	goldAsset  = model.Asset{Symbol: "GOLD", Name: "Thai Gold Bar", Kind: "gold", NewsCategory: "gold", Alert: true}
	stockAsset = model.Asset{Symbol: "NVDA", Name: "NVIDIA Corp", Kind: "stock", NewsCategory: "business"}
)

type engine struct {
	clock      *fakeClock
	store      *kvstore.MemoryStore
	ai         *fakeAI
	dispatcher *fakeDispatcher
	cacheRepo  repository.ForecastCacheRepository
	history    repository.HistoryRepository
	gate       AlertGate
	orch       Orchestrator
}

func newEngine() *engine {
	cfg := testConfig()
	log := logger.NewNop()
	clock := newFakeClock()
	store := kvstore.NewMemoryStore()

	e := &engine{
		clock:      clock,
		store:      store,
		ai:         &fakeAI{rec: model.RecommendationBuy, clock: clock},
		dispatcher: &fakeDispatcher{},
		cacheRepo:  repository.NewForecastCacheRepository(store, clock, cfg.Forecast.FreshnessWindow, log),
		history:    repository.NewHistoryRepository(store, clock, cfg.Forecast.HistoryLimit, cfg.Forecast.HistoryDedupWindow, log),
		gate:       NewAlertGate(repository.NewAlertStateRepository(store, log), clock, cfg.Forecast.AlertCooldown),
	}
	e.orch = NewOrchestrator(cfg, log, e.cacheRepo, e.history, e.ai, e.gate, e.dispatcher, nil, clock)
	return e
}

func goldQuote() model.Quote {
	return model.Quote{Price: model.ParsePrice("42,000", "THB"), Source: "thai-gold", Primary: true}
}

var errBoom = errors.New("boom")
