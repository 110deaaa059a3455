package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gold-pulse/config"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPriceConfig() *config.Config {
	return &config.Config{Price: config.Price{PerSourceTimeout: 2 * time.Second}}
}

var (
	goldAsset  = model.Asset{Symbol: "GOLD", Name: "Thai Gold Bar", Kind: "gold", NewsCategory: "gold", Alert: true}
	stockAsset = model.Asset{Symbol: "NVDA", Name: "NVIDIA Corp", Kind: "stock", NewsCategory: "business"}
)

func TestGoldPriceRepository_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","response":{"date":"1 มีนาคม 2568","update_time":"09:05","price":{
			"gold":{"buy":"41,234.56","sell":"42,500"},
			"gold_bar":{"buy":"41,900","sell":"42,000"},
			"change":{"compare_previous":"+50","compare_yesterday":"+100"}}}}`))
	}))
	defer server.Close()

	repo := NewGoldPriceRepository("thai-gold", server.URL, testPriceConfig(), logger.NewNop())
	assert.True(t, repo.Supports(goldAsset))
	assert.False(t, repo.Supports(stockAsset))

	price, err := repo.Current(context.Background(), goldAsset)
	require.NoError(t, err)
	assert.Equal(t, "42,000", price.String())
	assert.Equal(t, "THB", price.Unit)
	assert.Equal(t, 42000.0, price.Float())
}

func TestGoldPriceRepository_BadPayload(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusBadGateway, `{}`},
		{"status not success", http.StatusOK, `{"status":"error"}`},
		{"missing sell", http.StatusOK, `{"status":"success","response":{"price":{"gold_bar":{"sell":""}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			repo := NewGoldPriceRepository("thai-gold", server.URL, testPriceConfig(), logger.NewNop())
			_, err := repo.Current(context.Background(), goldAsset)
			assert.Error(t, err)
		})
	}
}

func TestYahooFinanceRepository_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/NVDA", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"NVDA","currency":"USD","regularMarketPrice":187.25}}],"error":null}}`))
	}))
	defer server.Close()

	repo := NewYahooFinanceRepository("yahoo", server.URL, testPriceConfig(), logger.NewNop())
	assert.True(t, repo.Supports(stockAsset))
	assert.False(t, repo.Supports(goldAsset))

	price, err := repo.Current(context.Background(), stockAsset)
	require.NoError(t, err)
	assert.Equal(t, "187.25", price.String())
	assert.Equal(t, "USD", price.Unit)
}

func TestYahooFinanceRepository_NoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer server.Close()

	repo := NewYahooFinanceRepository("yahoo", server.URL, testPriceConfig(), logger.NewNop())
	_, err := repo.Current(context.Background(), stockAsset)
	assert.Error(t, err)
}

func TestNewPriceSources_Order(t *testing.T) {
	cfg := testPriceConfig()
	cfg.Price.GoldBaseURLs = []string{"https://api.chnwt.dev/thai-gold-api", "https://mirror.example.com/gold"}
	cfg.Price.StockBaseURLs = []string{"https://query1.finance.yahoo.com/v8/finance/chart"}

	sources := NewPriceSources(cfg, logger.NewNop())
	require.Len(t, sources, 3)
	assert.Equal(t, "thai-gold@api.chnwt.dev", sources[0].Name())
	assert.Equal(t, "thai-gold@mirror.example.com", sources[1].Name())
	assert.Equal(t, "yahoo@query1.finance.yahoo.com", sources[2].Name())
}
