package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gold-pulse/internal/model"
	"gold-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_EndToEndCycle(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	eval, err := e.orch.Evaluate(ctx, goldAsset, []string{"Gold rallies"}, goldQuote())
	require.NoError(t, err)
	assert.False(t, eval.Skipped)
	assert.False(t, eval.FromCache)
	assert.True(t, eval.HistoryAppended)
	assert.True(t, eval.Notified)
	assert.Equal(t, "thai-gold", eval.PriceSource)
	require.NotNil(t, eval.Forecast)
	assert.Equal(t, model.RecommendationBuy, eval.Forecast.Recommendation)

	history := e.history.List(ctx, "GOLD")
	require.Len(t, history, 1)
	assert.Equal(t, "42,000", history[0].PriceAtTime.String())

	sent := e.dispatcher.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "42,000", sent[0].price.String())

	cached, hit := e.cacheRepo.Get(ctx, "GOLD")
	require.True(t, hit)
	assert.Equal(t, eval.Forecast.Timestamp, cached.Timestamp)

	again, err := e.orch.Evaluate(ctx, goldAsset, []string{"Gold rallies"}, goldQuote())
	require.NoError(t, err)
	assert.True(t, again.FromCache)
	assert.False(t, again.HistoryAppended)
	assert.False(t, again.Notified)
	assert.Equal(t, 1, e.ai.Calls())
	assert.Len(t, e.dispatcher.Sent(), 1)
	assert.Len(t, e.history.List(ctx, "GOLD"), 1)
}

func TestOrchestrator_SkipsWithoutInputs(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	eval, err := e.orch.Evaluate(ctx, goldAsset, nil, goldQuote())
	require.NoError(t, err)
	assert.True(t, eval.Skipped)

	eval, err = e.orch.Evaluate(ctx, goldAsset, []string{"news"}, model.Quote{Price: model.ParsePrice("-", "THB")})
	require.NoError(t, err)
	assert.True(t, eval.Skipped)

	assert.Equal(t, 0, e.ai.Calls())
	assert.Empty(t, e.history.List(ctx, "GOLD"))
	assert.Empty(t, e.dispatcher.Sent())
}

func TestOrchestrator_ProviderFailureUsesDefault(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	e.ai.err = errBoom

	eval, err := e.orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
	require.NoError(t, err)
	require.NotNil(t, eval.Forecast)
	assert.Equal(t, model.RecommendationHold, eval.Forecast.Recommendation)
	assert.Equal(t, 50, eval.Forecast.Confidence)
	assert.Equal(t, model.ProcessingReason, eval.Forecast.Reason)
	assert.True(t, eval.HistoryAppended)

	_, hit := e.cacheRepo.Get(ctx, "GOLD")
	assert.True(t, hit, "the default forecast is cached like any other")
}

func TestOrchestrator_ProviderTimeout(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	e.ai.delay = 5 * time.Second

	cfg := testConfig()
	cfg.AI.Timeout = 20 * time.Millisecond
	orch := NewOrchestrator(cfg, logger.NewNop(), e.cacheRepo, e.history, e.ai, e.gate, e.dispatcher, nil, e.clock)

	eval, err := orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
	require.NoError(t, err)
	assert.Equal(t, model.RecommendationHold, eval.Forecast.Recommendation)
}

func TestOrchestrator_DispatchFailureRetriesNextCycle(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	e.dispatcher.SetErr(errBoom)

	eval, err := e.orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
	require.NoError(t, err)
	assert.False(t, eval.Notified)
	assert.Empty(t, e.dispatcher.Sent())

	e.dispatcher.SetErr(nil)
	e.clock.Advance(30 * time.Second)

	eval, err = e.orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
	require.NoError(t, err)
	assert.True(t, eval.FromCache)
	assert.True(t, eval.Notified, "failed dispatch left the gate open")
	assert.Len(t, e.dispatcher.Sent(), 1)
}

func TestOrchestrator_AlertDisabledAsset(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	quote := model.Quote{Price: model.NewPrice(187.25, "USD"), Source: "yahoo", Primary: true}
	eval, err := e.orch.Evaluate(ctx, stockAsset, []string{"chips"}, quote)
	require.NoError(t, err)
	assert.True(t, eval.HistoryAppended)
	assert.False(t, eval.Notified)
	assert.Empty(t, e.dispatcher.Sent())

	history := e.history.List(ctx, "NVDA")
	require.Len(t, history, 1)
	assert.Equal(t, "187.25", history[0].PriceAtTime.String())
}

func TestOrchestrator_RecommendationChangeAlertsAgain(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	_, err := e.orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
	require.NoError(t, err)

	e.clock.Advance(16 * time.Minute)
	e.ai.SetRecommendation(model.RecommendationSell)

	eval, err := e.orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
	require.NoError(t, err)
	assert.False(t, eval.FromCache)
	assert.True(t, eval.HistoryAppended)
	assert.True(t, eval.Notified)
	assert.Len(t, e.dispatcher.Sent(), 2)
	assert.Equal(t, 2, e.ai.Calls())
}

func TestOrchestrator_ConcurrentTriggersCallProviderOnce(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	e.ai.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, e.ai.Calls())
	assert.Len(t, e.dispatcher.Sent(), 1)
	assert.Len(t, e.history.List(ctx, "GOLD"), 1)
}

func TestOrchestrator_EvaluateAll(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	results, err := e.orch.EvaluateAll(ctx,
		map[string][]string{"gold": {"Gold rallies"}, "business": {"Chips"}},
		map[string]model.Quote{"GOLD": goldQuote()},
	)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "GOLD", results[0].Symbol)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, "NVDA", results[1].Symbol)
	assert.True(t, results[1].Skipped, "no quote means no evaluation")
	assert.Equal(t, 1, e.ai.Calls())
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	e := newEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.orch.Evaluate(ctx, goldAsset, []string{"news"}, goldQuote())
	assert.ErrorIs(t, err, context.Canceled)
}
