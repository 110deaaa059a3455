package repository

import (
	"context"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/httpclient"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/utils"

	"golang.org/x/time/rate"
)

// mistralAIRepository talks to an OpenAI-compatible chat completion endpoint.
type mistralAIRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	clock          utils.Clock
}

func NewMistralAIRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	return &mistralAIRepository{
		httpClient:     httpclient.New(cfg.AI.BaseURL, cfg.AI.Timeout, cfg.AI.APIKey),
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.AI.MaxRequestPerMinute),
		clock:          utils.SystemClock,
	}
}

func (r *mistralAIRepository) Name() string {
	return "mistral"
}

func (r *mistralAIRepository) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*model.Forecast, error) {
	if len(req.Headlines) == 0 {
		return nil, fmt.Errorf("no headlines to analyze for %s", req.Asset.Symbol)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for mistral request limit: %w", err)
	}

	payload := dto.ChatCompletionRequest{
		Model: r.cfg.AI.Model,
		Messages: []dto.ChatMessage{
			{Role: "user", Content: promptAnalyzeMarket(req, r.cfg.AI.Language)},
		},
		Temperature: r.cfg.AI.Temperature,
	}

	var chatResp dto.ChatCompletionResponse
	resp, err := r.httpClient.Post(ctx, "/chat/completions", payload, nil, &chatResp)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to mistral: %w", err)
	}
	if !resp.IsSuccess() {
		r.logger.ErrorContext(ctx, "Mistral API returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", utils.Truncate(string(resp.Body), 500)),
		)
		return nil, fmt.Errorf("mistral api error: %d", resp.StatusCode)
	}

	content := chatResp.FirstContent()
	r.logger.DebugContext(ctx, "Mistral response received",
		logger.StringField("symbol", req.Asset.Symbol),
		logger.IntField("total_tokens", chatResp.Usage.TotalTokens),
	)

	forecast, err := ParseForecast(content, req.CurrentPrice.Unit, r.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to parse mistral response: %w", err)
	}
	return forecast, nil
}
