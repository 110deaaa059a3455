package model

import (
	"strconv"
	"strings"
	"time"
)

type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// NormalizeRecommendation maps free text onto BUY, SELL or HOLD by substring.
func NormalizeRecommendation(text string) Recommendation {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, string(RecommendationBuy)):
		return RecommendationBuy
	case strings.Contains(upper, string(RecommendationSell)):
		return RecommendationSell
	default:
		return RecommendationHold
	}
}

const DefaultConfidence = 50

// NormalizeConfidence keeps values in 1..100 and falls back to 50 otherwise.
func NormalizeConfidence(c int) int {
	if c <= 0 || c > 100 {
		return DefaultConfidence
	}
	return c
}

// Forecast is one analysis run for an asset.
type Forecast struct {
	Recommendation Recommendation `json:"recommendation"`
	Confidence     int            `json:"confidence"`
	Reason         string         `json:"reason"`
	TargetPrice    Price          `json:"targetPrice"`
	TargetPriceTHB Price          `json:"targetPriceTHB"`
	Factors        []string       `json:"factors,omitempty"`
	Strategy       string         `json:"strategy,omitempty"`
	Support        *Price         `json:"support,omitempty"`
	Resistance     *Price         `json:"resistance,omitempty"`
	// Timestamp is epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// ProducedAt is Timestamp as a time.
func (f Forecast) ProducedAt() time.Time {
	return time.UnixMilli(f.Timestamp)
}

// Signature identifies a forecast for duplicate alert suppression.
func (f Forecast) Signature() string {
	return strconv.FormatInt(f.Timestamp, 10) + string(f.Recommendation)
}

// HistoryRecord is an accepted forecast with the price seen when it was saved.
type HistoryRecord struct {
	Forecast
	ID          string `json:"id"`
	AssetSymbol string `json:"assetSymbol"`
	PriceAtTime Price  `json:"priceAtTime"`
}

// CachedForecast is a forecast plus the instant it entered the cache.
type CachedForecast struct {
	Forecast
	CachedAt int64 `json:"cachedAt"`
}

// AlertState records the last alert dispatched for an asset.
type AlertState struct {
	LastSentAt             int64          `json:"lastSentAt"`
	LastSentRecommendation Recommendation `json:"lastSentRecommendation"`
	Signature              string         `json:"signature"`
}

const (
	DefaultReason    = "ตลาดมีความผันผวน ควรติดตามข่าวสารอย่างใกล้ชิด"
	ProcessingReason = "กำลังประมวลผลข้อมูลตลาด (AI Busy)..."
)

// DefaultForecast is used whenever the provider fails or answers garbage.
func DefaultForecast(at time.Time) Forecast {
	return Forecast{
		Recommendation: RecommendationHold,
		Confidence:     DefaultConfidence,
		Reason:         ProcessingReason,
		TargetPrice:    ParsePrice("-", "USD"),
		TargetPriceTHB: ParsePrice("-", "THB"),
		Timestamp:      at.UnixMilli(),
	}
}
