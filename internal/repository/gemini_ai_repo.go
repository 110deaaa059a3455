package repository

import (
	"context"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/ratelimit"
	"gold-pulse/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an AIRepository backed by the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
	clock          utils.Clock
}

func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.AI.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.AI.MaxRequestPerMinute),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.AI.MaxTokenPerMinute),
		genAiClient:    genAiClient,
		clock:          utils.SystemClock,
	}, nil
}

func (r *geminiAIRepository) Name() string {
	return "gemini"
}

func (r *geminiAIRepository) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*model.Forecast, error) {
	if len(req.Headlines) == 0 {
		return nil, fmt.Errorf("no headlines to analyze for %s", req.Asset.Symbol)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(promptAnalyzeMarket(req, r.cfg.AI.Language), genai.RoleUser),
	}

	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.AI.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)
	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for gemini token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	temperature := float32(r.cfg.AI.Temperature)
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.AI.Model, contents, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send request to gemini: %w", err)
	}

	forecast, err := ParseForecast(resp.Text(), req.CurrentPrice.Unit, r.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	return forecast, nil
}
