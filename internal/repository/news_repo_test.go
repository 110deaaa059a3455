package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gold-pulse/config"
	"gold-pulse/pkg/cache"
	"gold-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNewsConfig(baseURL string) *config.Config {
	return &config.Config{News: config.News{
		BaseURL:       baseURL,
		APIKey:        "key",
		Language:      "th",
		Timeout:       2 * time.Second,
		CacheDuration: 10 * time.Minute,
	}}
}

func TestNewsRepository_CachesAndDedupsAcrossCategories(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "th", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("category") == "business" {
			_, _ = w.Write([]byte(`{"status":"success","results":[
				{"article_id":"a1","title":"Gold hits record","pubDate":"2025-03-01 02:00:00"},
				{"article_id":"b1","title":"Nasdaq climbs","pubDate":"2025-03-01 03:00:00"}]}`))
			return
		}
		assert.Contains(t, r.URL.Query().Get("q"), "XAUUSD")
		_, _ = w.Write([]byte(`{"status":"success","results":[
			{"article_id":"a1","title":"Gold hits record","pubDate":"2025-03-01 02:00:00"},
			{"article_id":"a2","title":"  Baht &amp; gold  ","pubDate":"2025-03-01 04:00:00"}]}`))
	}))
	defer server.Close()

	repo := NewNewsRepository(testNewsConfig(server.URL), cache.NewCache(10*time.Minute, time.Minute), logger.NewNop())
	ctx := context.Background()

	gold, err := repo.Headlines(ctx, NewsCategoryGold)
	require.NoError(t, err)
	require.Len(t, gold, 2)
	assert.Equal(t, "Baht & gold", gold[1].Title)

	again, err := repo.Headlines(ctx, NewsCategoryGold)
	require.NoError(t, err)
	assert.Equal(t, gold, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second call must be served from cache")

	business, err := repo.Headlines(ctx, NewsCategoryBusiness)
	require.NoError(t, err)
	require.Len(t, business, 1, "article shown under gold is filtered")
	assert.Equal(t, "b1", business[0].ArticleID)
}

func TestNewsRepository_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	repo := NewNewsRepository(testNewsConfig(server.URL), cache.NewCache(10*time.Minute, time.Minute), logger.NewNop())
	headlines, err := repo.Headlines(context.Background(), NewsCategoryGold)
	assert.ErrorIs(t, err, ErrNewsRateLimited)
	assert.Empty(t, headlines)
	assert.NotNil(t, headlines)
}
