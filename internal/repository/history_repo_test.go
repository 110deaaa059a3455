package repository

import (
	"context"
	"testing"
	"time"

	"gold-pulse/internal/model"
	"gold-pulse/pkg/kvstore"
	"gold-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(store kvstore.Store, clock *fakeClock) HistoryRepository {
	return NewHistoryRepository(store, clock, 50, time.Hour, logger.NewNop())
}

func forecastAt(clock *fakeClock, rec model.Recommendation) model.Forecast {
	return model.Forecast{Recommendation: rec, Confidence: 70, Timestamp: clock.Now().UnixMilli()}
}

func TestHistory_FirstRecordAccepted(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	repo := newTestHistory(kvstore.NewMemoryStore(), clock)

	records, accepted, err := repo.Append(ctx, "GOLD", forecastAt(clock, model.RecommendationBuy), model.ParsePrice("42,000", "THB"))
	require.NoError(t, err)
	assert.True(t, accepted)
	require.Len(t, records, 1)
	assert.Equal(t, "GOLD", records[0].AssetSymbol)
	assert.Equal(t, "42,000", records[0].PriceAtTime.String())
	assert.NotEmpty(t, records[0].ID)

	assert.Len(t, repo.List(ctx, "GOLD"), 1)
}

func TestHistory_DedupWindow(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		second  model.Recommendation
		want    bool
	}{
		{"same recommendation inside window", 30 * time.Minute, model.RecommendationBuy, false},
		{"same recommendation at window edge", time.Hour, model.RecommendationBuy, false},
		{"same recommendation after window", time.Hour + time.Millisecond, model.RecommendationBuy, true},
		{"changed recommendation inside window", time.Minute, model.RecommendationSell, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			repo := newTestHistory(kvstore.NewMemoryStore(), clock)

			_, _, err := repo.Append(ctx, "GOLD", forecastAt(clock, model.RecommendationBuy), model.ParsePrice("42,000", "THB"))
			require.NoError(t, err)

			clock.Advance(tt.elapsed)
			records, accepted, err := repo.Append(ctx, "GOLD", forecastAt(clock, tt.second), model.ParsePrice("42,100", "THB"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, accepted)
			if tt.want {
				require.Len(t, records, 2)
				assert.Equal(t, tt.second, records[0].Recommendation, "newest first")
			} else {
				assert.Len(t, records, 1)
			}
		})
	}
}

func TestHistory_CapAtLimit(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	repo := newTestHistory(kvstore.NewMemoryStore(), clock)

	recs := []model.Recommendation{model.RecommendationBuy, model.RecommendationSell}
	var first model.Forecast
	for i := 0; i < 60; i++ {
		f := forecastAt(clock, recs[i%2])
		if i == 0 {
			first = f
		}
		_, accepted, err := repo.Append(ctx, "GOLD", f, model.ParsePrice("42,000", "THB"))
		require.NoError(t, err)
		require.True(t, accepted)
		clock.Advance(time.Second)
	}

	records := repo.List(ctx, "GOLD")
	require.Len(t, records, 50)
	assert.Equal(t, clock.Now().Add(-time.Second).UnixMilli(), records[0].Timestamp)
	for _, r := range records {
		assert.NotEqual(t, first.Timestamp, r.Timestamp, "oldest record must be evicted")
	}
}

func TestHistory_ClearIsPerAsset(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	repo := newTestHistory(kvstore.NewMemoryStore(), clock)

	_, _, err := repo.Append(ctx, "GOLD", forecastAt(clock, model.RecommendationBuy), model.ParsePrice("42,000", "THB"))
	require.NoError(t, err)
	_, _, err = repo.Append(ctx, "NVDA", forecastAt(clock, model.RecommendationSell), model.NewPrice(120.5, "USD"))
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx, "GOLD"))
	assert.Empty(t, repo.List(ctx, "GOLD"))
	assert.Len(t, repo.List(ctx, "NVDA"), 1)
}

func TestHistory_CorruptTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "analysis_history:GOLD", "[{broken"))

	clock := newFakeClock()
	repo := newTestHistory(store, clock)
	assert.Empty(t, repo.List(ctx, "GOLD"))

	records, accepted, err := repo.Append(ctx, "GOLD", forecastAt(clock, model.RecommendationHold), model.ParsePrice("42,000", "THB"))
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Len(t, records, 1)
}
