package repository

import (
	"context"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/logger"
	"time"

	"golang.org/x/time/rate"
)

// AIRepository produces a forecast from headlines and the current price.
type AIRepository interface {
	Name() string
	Analyze(ctx context.Context, req dto.AnalyzeRequest) (*model.Forecast, error)
}

// NewAIRepository builds the provider selected by ai.provider.
func NewAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	switch cfg.AI.Provider {
	case "gemini":
		return NewGeminiAIRepository(cfg, log)
	case "mistral", "":
		return NewMistralAIRepository(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

func newRequestLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}
