package middleware

import (
	"net/http"
	"time"

	"gold-pulse/config"
	"gold-pulse/internal/dto"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// NewRateLimiterMiddleware limits API calls per client IP.
func NewRateLimiterMiddleware(cfg config.API) echo.MiddlewareFunc {
	perSec := cfg.MaxRequestPerSec
	if perSec <= 0 {
		perSec = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(perSec)
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(perSec),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},

		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, dto.NewErrorResponse(http.StatusForbidden, "Access forbidden: Rate limiter error occurred"))
		},

		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, dto.NewErrorResponse(http.StatusTooManyRequests, "Too many requests: Rate limit exceeded. Please try again later"))
		},
	})
}
