package dto

import "gold-pulse/internal/model"

// AssetOverview is one row of the dashboard listing.
type AssetOverview struct {
	model.Asset
	Quote    *model.Quote    `json:"quote,omitempty"`
	Forecast *model.Forecast `json:"forecast,omitempty"`
	Proxied  bool            `json:"proxied"`
}

type EvaluationResponse struct {
	Symbol          string          `json:"symbol"`
	Skipped         bool            `json:"skipped"`
	Forecast        *model.Forecast `json:"forecast,omitempty"`
	FromCache       bool            `json:"fromCache"`
	HistoryAppended bool            `json:"historyAppended"`
	Notified        bool            `json:"notified"`
	PriceSource     string          `json:"priceSource,omitempty"`
}

type SymbolParam struct {
	Symbol string `param:"symbol" validate:"required,alphanum,max=10"`
}
