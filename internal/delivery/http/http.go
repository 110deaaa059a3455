package http

import (
	"context"
	"gold-pulse/config"
	"gold-pulse/internal/service"
	"gold-pulse/pkg/middleware"
	"net/http"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HttpAPIHandler struct {
	ctx       context.Context
	cfg       *config.Config
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	gatherer  prometheus.Gatherer
}

func NewHttpAPIHandler(
	ctx context.Context,
	cfg *config.Config,
	echo *echo.Echo,
	validator *goValidator.Validate,
	service *service.Service,
	gatherer prometheus.Gatherer,
) *HttpAPIHandler {
	return &HttpAPIHandler{
		ctx:       ctx,
		cfg:       cfg,
		echo:      echo,
		validator: validator,
		service:   service,
		gatherer:  gatherer,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(echoMiddleware.Recover())
	h.echo.Use(middleware.NewRateLimiterMiddleware(h.cfg.API))

	h.echo.GET("/healthz", h.Health)
	if h.gatherer != nil {
		h.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	base := h.echo.Group("/api")
	h.SetupAssets(base)
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
