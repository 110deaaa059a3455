package http

import (
	"errors"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAssets(base *echo.Group) {
	v1 := base.Group("/v1/assets")
	{
		v1.GET("", h.ListAssets)
		v1.GET("/:symbol/forecast", h.GetForecast)
		v1.GET("/:symbol/history", h.GetHistory)
		v1.DELETE("/:symbol/history", h.ClearHistory)
		v1.POST("/:symbol/evaluate", h.Evaluate)
	}
}

func (h *HttpAPIHandler) ListAssets(c echo.Context) error {
	assets := h.service.AssetService.List(c.Request().Context())
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", assets))
}

func (h *HttpAPIHandler) GetForecast(c echo.Context) error {
	symbol, err := h.bindSymbol(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	forecast, err := h.service.AssetService.Forecast(c.Request().Context(), symbol)
	if err != nil {
		return h.errorResponse(c, err)
	}
	if forecast == nil {
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("No fresh forecast for "+symbol))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", forecast))
}

func (h *HttpAPIHandler) GetHistory(c echo.Context) error {
	symbol, err := h.bindSymbol(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	history, err := h.service.AssetService.History(c.Request().Context(), symbol)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", history))
}

func (h *HttpAPIHandler) ClearHistory(c echo.Context) error {
	symbol, err := h.bindSymbol(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	if err := h.service.AssetService.ClearHistory(c.Request().Context(), symbol); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("History cleared", nil))
}

func (h *HttpAPIHandler) Evaluate(c echo.Context) error {
	symbol, err := h.bindSymbol(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	eval, err := h.service.AssetService.Evaluate(c.Request().Context(), symbol)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Evaluated", dto.EvaluationResponse{
		Symbol:          eval.Symbol,
		Skipped:         eval.Skipped,
		Forecast:        eval.Forecast,
		FromCache:       eval.FromCache,
		HistoryAppended: eval.HistoryAppended,
		Notified:        eval.Notified,
		PriceSource:     eval.PriceSource,
	}))
}

func (h *HttpAPIHandler) bindSymbol(c echo.Context) (string, error) {
	var req dto.SymbolParam
	if err := c.Bind(&req); err != nil {
		return "", err
	}
	if err := h.validator.Struct(req); err != nil {
		return "", err
	}
	return req.Symbol, nil
}

func (h *HttpAPIHandler) errorResponse(c echo.Context, err error) error {
	if errors.Is(err, service.ErrUnknownAsset) {
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
	}
	return c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, err.Error()))
}
