package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"gold-pulse/pkg/utils"
)

// ForecastAlert is everything the alert message shows.
type ForecastAlert struct {
	Symbol         string
	Name           string
	IsGold         bool
	Provider       string
	Recommendation string
	Confidence     int
	CurrentPrice   string
	PriceUnit      string
	TargetPrice    string
	TargetPriceTHB string
	Reason         string
	Factors        []string
	Timestamp      time.Time
}

func recommendationLine(rec string) string {
	switch rec {
	case "BUY":
		return "🟢 <b>BUY (ขาขึ้น)</b> 🚀"
	case "SELL":
		return "🔴 <b>SELL (ขาลง)</b> 📉"
	default:
		return "🟡 <b>HOLD (รอดูท่าที)</b> 👀"
	}
}

func confidenceFlames(confidence int) string {
	switch {
	case confidence > 80:
		return "🔥🔥🔥"
	case confidence > 50:
		return "🔥🔥"
	default:
		return "🔥"
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// FormatForecastAlert renders the alert as Telegram HTML.
func FormatForecastAlert(a ForecastAlert) string {
	var sb strings.Builder
	esc := html.EscapeString

	title := "สัญญาณชีพจรทองคำ (Hi'Mootu Gold Pulse)"
	tag := "#Gold"
	unit := "บาท"
	if !a.IsGold {
		title = fmt.Sprintf("สัญญาณหุ้น %s (%s)", a.Symbol, a.Name)
		tag = "#" + a.Symbol
		unit = orDefault(a.PriceUnit, "USD")
	}

	sb.WriteString(fmt.Sprintf("🔔 <b>%s</b> 🔔\n", esc(title)))
	sb.WriteString(fmt.Sprintf("📅 %s\n\n", utils.PrettyDate(a.Timestamp)))

	sb.WriteString(recommendationLine(a.Recommendation) + "\n")
	sb.WriteString(fmt.Sprintf("%s <b>ความมั่นใจ:</b> %d%%\n\n", confidenceFlames(a.Confidence), a.Confidence))

	sb.WriteString(fmt.Sprintf("📊 <b>ราคาตลาดปัจจุบัน:</b> %s %s\n\n", esc(orDefault(a.CurrentPrice, "-")), unit))

	sb.WriteString("🎯 <b>เป้าหมายราคา (Targets):</b>\n")
	sb.WriteString(fmt.Sprintf("🇺🇸 <b>Spot:</b> %s\n", esc(orDefault(a.TargetPrice, "-"))))
	if a.IsGold {
		sb.WriteString(fmt.Sprintf("🇹🇭 <b>ทองไทย:</b> %s\n", esc(orDefault(a.TargetPriceTHB, "รอประเมิน"))))
	}
	sb.WriteString("\n")

	sb.WriteString("💡 <b>เหตุผลการวิเคราะห์:</b>\n")
	sb.WriteString(fmt.Sprintf("<i>\"%s\"</i>\n", esc(a.Reason)))
	for _, f := range a.Factors {
		sb.WriteString(fmt.Sprintf("• %s\n", esc(f)))
	}

	sb.WriteString("\n--------------------------------\n")
	sb.WriteString(fmt.Sprintf("🤖 <i>Analysis by Hi'Mootu %s AI</i>\n", esc(orDefault(a.Provider, "Mistral"))))
	sb.WriteString(tag + " #Analysis #TradeSignal")

	return sb.String()
}
