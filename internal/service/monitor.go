package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/model"
	"gold-pulse/internal/repository"
	"gold-pulse/pkg/cache"
	"gold-pulse/pkg/common"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/utils"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const keyLatestHeadlines = "latest_headlines:%s"

type headlineSnapshot struct {
	Headlines []model.Headline
	Hash      string
}

// MonitorService keeps the latest quotes and headlines fresh and triggers
// evaluations when they change.
type MonitorService interface {
	Start(ctx context.Context) error
	Stop()
	// PollPrices fetches every asset's quote and evaluates each asset that got one.
	PollPrices(ctx context.Context)
	// RefreshHeadlines reloads every news category and evaluates the assets
	// of each category whose headlines changed.
	RefreshHeadlines(ctx context.Context)
	// RefreshCategory reloads one category and reports whether its headline
	// set changed.
	RefreshCategory(ctx context.Context, category string) (bool, error)
	LatestQuote(symbol string) (model.Quote, bool)
	LatestHeadlines(category string) []string
	// EvaluateSymbol runs one cycle for symbol now, fetching any input that
	// has not been observed yet.
	EvaluateSymbol(ctx context.Context, symbol string) (*Evaluation, error)
	// EvaluateAll gathers fresh inputs for every asset and evaluates them once.
	EvaluateAll(ctx context.Context) ([]*Evaluation, error)
}

type monitorService struct {
	cfg          *config.Config
	log          *logger.Logger
	assets       []model.Asset
	newsRepo     repository.NewsRepository
	priceService PriceService
	orchestrator Orchestrator
	cache        cache.Cache
	group        singleflight.Group

	mu      sync.Mutex
	cron    *cron.Cron
	rootCtx context.Context
}

func NewMonitorService(
	cfg *config.Config,
	log *logger.Logger,
	newsRepo repository.NewsRepository,
	priceService PriceService,
	orchestrator Orchestrator,
	inMemoryCache cache.Cache,
) MonitorService {
	return &monitorService{
		cfg:          cfg,
		log:          log,
		assets:       model.AssetsFromConfig(cfg.Assets),
		newsRepo:     newsRepo,
		priceService: priceService,
		orchestrator: orchestrator,
		cache:        inMemoryCache,
	}
}

func (m *monitorService) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		return fmt.Errorf("monitor already started")
	}

	cl := cronLogger{log: m.log}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", m.cfg.Price.PollInterval), func() {
		m.PollPrices(m.rootCtx)
	}); err != nil {
		return fmt.Errorf("failed to schedule price poll: %w", err)
	}
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", m.cfg.News.RefreshInterval), func() {
		m.RefreshHeadlines(m.rootCtx)
	}); err != nil {
		return fmt.Errorf("failed to schedule headline refresh: %w", err)
	}

	m.rootCtx = ctx
	m.cron = c

	utils.GoSafe(func() {
		m.RefreshHeadlines(ctx)
		m.PollPrices(ctx)
	})
	c.Start()

	m.log.InfoContext(ctx, "Monitor started",
		logger.StringField("price_poll_interval", m.cfg.Price.PollInterval.String()),
		logger.StringField("news_refresh_interval", m.cfg.News.RefreshInterval.String()),
		logger.IntField("assets", len(m.assets)),
	)
	return nil
}

func (m *monitorService) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	m.log.Info("Monitor stopped")
}

func (m *monitorService) PollPrices(ctx context.Context) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.cfg.Forecast.MaxConcurrency, 1))

	for _, asset := range m.assets {
		g.Go(func() error {
			if !utils.ShouldContinue(gCtx, m.log) {
				return nil
			}
			m.pollAsset(gCtx, asset)
			return nil
		})
	}
	_ = g.Wait()
}

func (m *monitorService) pollAsset(ctx context.Context, asset model.Asset) {
	quote, err := m.fetchQuote(ctx, asset)
	if err != nil {
		m.log.WarnContext(ctx, "No price for asset this cycle", logger.StringField("symbol", asset.Symbol), logger.ErrorField(err))
		return
	}
	m.evaluate(ctx, asset, quote)
}

func (m *monitorService) fetchQuote(ctx context.Context, asset model.Asset) (model.Quote, error) {
	quote, err := m.priceService.Quote(ctx, asset)
	if err != nil {
		return model.Quote{}, err
	}
	m.cache.Set(fmt.Sprintf(common.KEY_LAST_QUOTE, asset.Symbol), quote, cache.NoExpiration)
	return quote, nil
}

func (m *monitorService) RefreshHeadlines(ctx context.Context) {
	for _, category := range m.categories() {
		if !utils.ShouldContinue(ctx, m.log) {
			return
		}
		changed, err := m.RefreshCategory(ctx, category)
		if err != nil {
			m.log.WarnContext(ctx, "Failed to refresh headlines", logger.StringField("category", category), logger.ErrorField(err))
		}
		if !changed {
			continue
		}
		for _, asset := range m.assets {
			if asset.NewsCategory != category {
				continue
			}
			if quote, ok := m.LatestQuote(asset.Symbol); ok {
				m.evaluate(ctx, asset, quote)
			}
		}
	}
}

func (m *monitorService) RefreshCategory(ctx context.Context, category string) (bool, error) {
	v, err, _ := m.group.Do(category, func() (interface{}, error) {
		headlines, err := m.newsRepo.Headlines(ctx, category)
		if err != nil || len(headlines) == 0 {
			// keep the last known headlines
			return false, err
		}

		key := fmt.Sprintf(keyLatestHeadlines, category)
		next := headlineSnapshot{Headlines: headlines, Hash: hashHeadlines(headlines)}
		prev, found := cache.GetFromCache[headlineSnapshot](m.cache, key)
		m.cache.Set(key, next, cache.NoExpiration)
		return !found || prev.Hash != next.Hash, nil
	})
	changed, _ := v.(bool)
	return changed, err
}

func (m *monitorService) LatestQuote(symbol string) (model.Quote, bool) {
	return cache.GetFromCache[model.Quote](m.cache, fmt.Sprintf(common.KEY_LAST_QUOTE, symbol))
}

func (m *monitorService) LatestHeadlines(category string) []string {
	snapshot, ok := cache.GetFromCache[headlineSnapshot](m.cache, fmt.Sprintf(keyLatestHeadlines, category))
	if !ok {
		return nil
	}
	return model.Titles(snapshot.Headlines)
}

func (m *monitorService) EvaluateSymbol(ctx context.Context, symbol string) (*Evaluation, error) {
	asset, ok := m.findAsset(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}

	if len(m.LatestHeadlines(asset.NewsCategory)) == 0 {
		if _, err := m.RefreshCategory(ctx, asset.NewsCategory); err != nil {
			m.log.WarnContext(ctx, "Failed to refresh headlines", logger.StringField("category", asset.NewsCategory), logger.ErrorField(err))
		}
	}

	quote, ok := m.LatestQuote(asset.Symbol)
	if !ok {
		var err error
		if quote, err = m.fetchQuote(ctx, asset); err != nil {
			return nil, err
		}
	}

	return m.orchestrator.Evaluate(ctx, asset, m.LatestHeadlines(asset.NewsCategory), quote)
}

func (m *monitorService) EvaluateAll(ctx context.Context) ([]*Evaluation, error) {
	headlines := make(map[string][]string)
	for _, category := range m.categories() {
		if _, err := m.RefreshCategory(ctx, category); err != nil {
			m.log.WarnContext(ctx, "Failed to refresh headlines", logger.StringField("category", category), logger.ErrorField(err))
		}
		headlines[category] = m.LatestHeadlines(category)
	}

	var mu sync.Mutex
	quotes := make(map[string]model.Quote)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.cfg.Forecast.MaxConcurrency, 1))
	for _, asset := range m.assets {
		g.Go(func() error {
			quote, err := m.fetchQuote(gCtx, asset)
			if err != nil {
				m.log.WarnContext(gCtx, "No price for asset", logger.StringField("symbol", asset.Symbol), logger.ErrorField(err))
				return nil
			}
			mu.Lock()
			quotes[asset.Symbol] = quote
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return m.orchestrator.EvaluateAll(ctx, headlines, quotes)
}

func (m *monitorService) evaluate(ctx context.Context, asset model.Asset, quote model.Quote) {
	evalCtx, cancel := context.WithTimeout(ctx, m.cfg.Forecast.EvaluationTimeout)
	defer cancel()

	if _, err := m.orchestrator.Evaluate(evalCtx, asset, m.LatestHeadlines(asset.NewsCategory), quote); err != nil {
		m.log.ErrorContext(ctx, "Evaluation failed", logger.StringField("symbol", asset.Symbol), logger.ErrorField(err))
	}
}

func (m *monitorService) findAsset(symbol string) (model.Asset, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range m.assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return model.Asset{}, false
}

func (m *monitorService) categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range m.assets {
		if !seen[a.NewsCategory] {
			seen[a.NewsCategory] = true
			out = append(out, a.NewsCategory)
		}
	}
	return out
}

func hashHeadlines(headlines []model.Headline) string {
	h := sha256.New()
	for _, item := range headlines {
		h.Write([]byte(item.ArticleID))
		h.Write([]byte{0})
		h.Write([]byte(item.Title))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, logger.Field("details", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error(msg, logger.ErrorField(err), logger.Field("details", keysAndValues))
}
