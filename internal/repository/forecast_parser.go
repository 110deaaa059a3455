package repository

import (
	"errors"
	"fmt"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/common"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var ErrInvalidForecast = errors.New("invalid forecast response")

// ExtractJSONObject strips markdown fences and keeps the outermost {...} span.
func ExtractJSONObject(raw string) string {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		text = text[first : last+1]
	}
	return strings.TrimSpace(text)
}

// ParseForecast reads a provider answer into a Forecast stamped at now.
// refUnit is the unit of the asset's reference price and applies to support
// and resistance levels.
func ParseForecast(raw string, refUnit string, now time.Time) (*model.Forecast, error) {
	text := ExtractJSONObject(raw)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: not json", ErrInvalidForecast)
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidForecast)
	}

	forecast := &model.Forecast{
		Recommendation: model.NormalizeRecommendation(doc.Get("recommendation").String()),
		Confidence:     model.NormalizeConfidence(parseConfidence(doc.Get("confidence"))),
		Reason:         stringOr(doc.Get("reason"), model.DefaultReason),
		TargetPrice:    model.ParsePrice(stringOr(doc.Get("targetPrice"), "N/A"), common.UNIT_USD),
		TargetPriceTHB: model.ParsePrice(stringOr(doc.Get("targetPriceTHB"), "-"), common.UNIT_THB),
		Strategy:       strings.TrimSpace(doc.Get("strategy").String()),
		Timestamp:      now.UnixMilli(),
	}

	for _, f := range doc.Get("factors").Array() {
		if s := strings.TrimSpace(f.String()); s != "" {
			forecast.Factors = append(forecast.Factors, s)
		}
	}
	if s := stringOr(doc.Get("support"), ""); s != "" {
		p := model.ParsePrice(s, refUnit)
		forecast.Support = &p
	}
	if s := stringOr(doc.Get("resistance"), ""); s != "" {
		p := model.ParsePrice(s, refUnit)
		forecast.Resistance = &p
	}

	return forecast, nil
}

func parseConfidence(r gjson.Result) int {
	switch r.Type {
	case gjson.Number:
		return int(math.Round(r.Float()))
	case gjson.String:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(r.String()), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return int(math.Round(f))
	default:
		return 0
	}
}

// stringOr returns the value as text (numbers keep their raw form) or def
// when it is missing or blank.
func stringOr(r gjson.Result, def string) string {
	var s string
	switch r.Type {
	case gjson.String:
		s = r.String()
	case gjson.Number:
		s = r.Raw
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
