package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var priceNumber = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

// Price is an optional decimal amount tagged with its unit. Text keeps the
// representation the source gave us ("42,000", "$2,750", "N/A").
type Price struct {
	Amount decimal.NullDecimal
	Unit   string
	Text   string
}

// ParsePrice extracts the first number from text. Sentinels such as "-" or
// "N/A" yield a price without an amount.
func ParsePrice(text, unit string) Price {
	text = strings.TrimSpace(text)
	p := Price{Unit: unit, Text: text}
	match := priceNumber.FindString(text)
	if match == "" {
		return p
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return p
	}
	p.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
	return p
}

// NewPrice builds a price from a number, rendering Text with two decimals.
func NewPrice(amount float64, unit string) Price {
	d := decimal.NewFromFloat(amount)
	return Price{
		Amount: decimal.NullDecimal{Decimal: d, Valid: true},
		Unit:   unit,
		Text:   d.StringFixed(2),
	}
}

// Valid reports whether an amount is present.
func (p Price) Valid() bool {
	return p.Amount.Valid
}

// Float returns the amount, or 0 when absent.
func (p Price) Float() float64 {
	if !p.Amount.Valid {
		return 0
	}
	f, _ := p.Amount.Decimal.Float64()
	return f
}

func (p Price) String() string {
	if p.Text != "" {
		return p.Text
	}
	if p.Amount.Valid {
		return p.Amount.Decimal.String()
	}
	return "-"
}

type priceJSON struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Unit   string           `json:"unit,omitempty"`
	Text   string           `json:"text,omitempty"`
}

func (p Price) MarshalJSON() ([]byte, error) {
	out := priceJSON{Unit: p.Unit, Text: p.Text}
	if p.Amount.Valid {
		d := p.Amount.Decimal
		out.Amount = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the object form as well as a bare string or number.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = Price{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParsePrice(s, "")
		return nil
	case data[0] == '{':
		var in priceJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return err
		}
		*p = Price{Unit: in.Unit, Text: in.Text}
		if in.Amount != nil {
			p.Amount = decimal.NullDecimal{Decimal: *in.Amount, Valid: true}
		}
		return nil
	default:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return fmt.Errorf("invalid price %s: %w", data, err)
		}
		*p = Price{Amount: decimal.NullDecimal{Decimal: d, Valid: true}, Text: d.String()}
		return nil
	}
}
