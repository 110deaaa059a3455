package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAIConfig(baseURL string) *config.Config {
	return &config.Config{
		AI: config.AI{
			Provider:            "mistral",
			BaseURL:             baseURL,
			APIKey:              "secret",
			Model:               "mistral-tiny",
			Temperature:         0.7,
			Timeout:             5 * time.Second,
			MaxRequestPerMinute: 600,
			MaxTokenPerMinute:   100000,
			Language:            "Thai",
		},
	}
}

func TestMistralAIRepository_Analyze(t *testing.T) {
	var got dto.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"` +
			"```json\\n{\\\"recommendation\\\":\\\"BUY\\\",\\\"confidence\\\":80,\\\"reason\\\":\\\"ok\\\",\\\"targetPrice\\\":\\\"$2,750\\\",\\\"targetPriceTHB\\\":\\\"44,500\\\"}\\n```" +
			`"}}]}`))
	}))
	defer server.Close()

	repo := NewMistralAIRepository(testAIConfig(server.URL), logger.NewNop())
	forecast, err := repo.Analyze(context.Background(), dto.AnalyzeRequest{
		Asset:        model.Asset{Symbol: "GOLD", Kind: "gold"},
		Headlines:    []string{"Gold rallies", "Fed pauses"},
		CurrentPrice: model.ParsePrice("42,000", "THB"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.RecommendationBuy, forecast.Recommendation)
	assert.Equal(t, 80, forecast.Confidence)
	assert.Equal(t, "44,500", forecast.TargetPriceTHB.String())

	assert.Equal(t, "mistral-tiny", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Gold rallies | Fed pauses")
	assert.True(t, strings.HasSuffix(got.Messages[0].Content, jsonOnlySuffix))
}

func TestMistralAIRepository_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, nil},
		{"prose answer", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"I cannot answer that"}}]}`, ErrInvalidForecast},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrInvalidForecast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			repo := NewMistralAIRepository(testAIConfig(server.URL), logger.NewNop())
			_, err := repo.Analyze(context.Background(), dto.AnalyzeRequest{
				Asset:     model.Asset{Symbol: "NVDA", Kind: "stock"},
				Headlines: []string{"chips"},
			})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMistralAIRepository_RequiresHeadlines(t *testing.T) {
	repo := NewMistralAIRepository(testAIConfig("http://127.0.0.1:0"), logger.NewNop())
	_, err := repo.Analyze(context.Background(), dto.AnalyzeRequest{Asset: model.Asset{Symbol: "GOLD"}})
	assert.Error(t, err)
}
