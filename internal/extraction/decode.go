package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Wire shapes for the model's JSON output. Everything is a pointer so that
// null and absent both decode to nil; conversion to RawExtraction validates
// at this boundary and nothing downstream touches loose JSON.
type wireScalar struct {
	Text       *string  `json:"text"`
	Value      *float64 `json:"value"`
	Confidence *float64 `json:"confidence"`
}

type wireItem struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Amount      *float64 `json:"amount"`
	Confidence  *float64 `json:"confidence"`
}

type wireExtraction struct {
	Vendor     *wireScalar `json:"vendor"`
	Total      *wireScalar `json:"total"`
	Subtotal   *wireScalar `json:"subtotal"`
	Tax        *wireScalar `json:"tax"`
	Date       *wireScalar `json:"date"`
	Items      []wireItem  `json:"items"`
	Transcript *string     `json:"transcript"`
}

// decodeExtraction parses the model's raw text into a RawExtraction.
// Threshold filtering happens later; this only converts and validates shape.
func decodeExtraction(raw string) (RawExtraction, error) {
	clean := cleanModelJSON(raw)

	var wire wireExtraction
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return RawExtraction{}, fmt.Errorf("unmarshal model JSON: %w", err)
	}

	out := RawExtraction{}
	if wire.Transcript != nil {
		out.Transcript = strings.TrimSpace(*wire.Transcript)
	}
	out.Merchant = toField(wire.Vendor)
	out.Date = toField(wire.Date)
	out.Total = toAmount(wire.Total)
	out.Subtotal = toAmount(wire.Subtotal)
	out.Tax = toAmount(wire.Tax)

	for _, item := range wire.Items {
		if item.Description == nil || strings.TrimSpace(*item.Description) == "" {
			continue
		}
		out.Items = append(out.Items, RawLineItem{
			Description: strings.TrimSpace(*item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			Confidence:  confidenceOf(item.Confidence),
		})
	}

	return out, nil
}

func toField(s *wireScalar) *RawField {
	if s == nil || s.Text == nil || strings.TrimSpace(*s.Text) == "" {
		return nil
	}
	return &RawField{
		Text:       strings.TrimSpace(*s.Text),
		Confidence: confidenceOf(s.Confidence),
	}
}

func toAmount(s *wireScalar) *RawAmount {
	if s == nil || s.Value == nil {
		return nil
	}
	return &RawAmount{
		Value:      *s.Value,
		Confidence: confidenceOf(s.Confidence),
	}
}

func confidenceOf(c *float64) float64 {
	if c == nil {
		return 0
	}
	if *c < 0 {
		return 0
	}
	if *c > 100 {
		return 100
	}
	return *c
}

// cleanModelJSON strips Markdown fences and surrounding noise if the model
// ignored the strict-JSON instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
