package repository

import (
	"fmt"
	"gold-pulse/internal/dto"
	"gold-pulse/pkg/utils"
	"strings"
)

const (
	maxHeadlineChars = 2000
	jsonOnlySuffix   = " Reply strictly in JSON format only. Do not add any explanation or markdown code blocks."
)

func promptAnalyzeMarket(req dto.AnalyzeRequest, language string) string {
	var sb strings.Builder

	subject := fmt.Sprintf("หุ้น %s (%s, ตลาดสหรัฐฯ)", req.Asset.Symbol, req.Asset.Name)
	thbTarget := "ถ้าเป็นหุ้นให้ใส่ -"
	if req.Asset.IsGold() {
		subject = "ราคาทองคำ (XAUUSD) และราคาทองคำแท่งไทย"
		thbTarget = "ราคาเป้าหมายทองคำแท่งไทย (เช่น 44,500 บาท)"
	}

	sb.WriteString("คุณคือนักวิเคราะห์การลงทุนอัจฉริยะ \"Hi'Mootu\"\n")
	sb.WriteString(fmt.Sprintf("วิเคราะห์แนวโน้ม: %s\n", subject))
	if req.CurrentPrice.Valid() {
		sb.WriteString(fmt.Sprintf("ราคาปัจจุบัน: %s %s\n", req.CurrentPrice.String(), req.CurrentPrice.Unit))
	}
	sb.WriteString(fmt.Sprintf("จากหัวข้อข่าวล่าสุด: %s\n\n", utils.Truncate(strings.Join(req.Headlines, " | "), maxHeadlineChars)))

	sb.WriteString("**คำสั่งสำคัญ**: ตอบกลับเป็น JSON เท่านั้น โดยใช้โครงสร้างนี้:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "recommendation": "BUY" หรือ "SELL" หรือ "HOLD",` + "\n")
	sb.WriteString(`  "confidence": (ตัวเลข 0-100),` + "\n")
	sb.WriteString(fmt.Sprintf(`  "reason": "เหตุผลสั้นๆ 1 ประโยค ภาษา%s (กระชับ ได้ใจความ)",`+"\n", languageName(language)))
	sb.WriteString(`  "targetPrice": "ราคาเป้าหมาย USD (เช่น $2,750)",` + "\n")
	sb.WriteString(fmt.Sprintf(`  "targetPriceTHB": "%s",`+"\n", thbTarget))
	sb.WriteString(`  "factors": ["ปัจจัยสำคัญไม่เกิน 3 ข้อ"],` + "\n")
	sb.WriteString(`  "strategy": "กลยุทธ์สั้นๆ 1 ประโยค",` + "\n")
	sb.WriteString(`  "support": "แนวรับ",` + "\n")
	sb.WriteString(`  "resistance": "แนวต้าน"` + "\n")
	sb.WriteString("}\n")

	return sb.String() + jsonOnlySuffix
}

func languageName(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "thai", "th":
		return "ไทย"
	default:
		return " " + language
	}
}
