// Package reconcile repairs and normalizes raw extraction output into a
// consistent receipt record. Reconcile is deterministic and side-effect-free;
// data-quality findings come back as Anomaly values for the caller to log.
package reconcile

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dmaksimov/expense-pipeline/internal/extraction"
)

// UnknownMerchant is the sentinel merchant name for receipts where no
// vendor could be read.
const UnknownMerchant = "Unknown Merchant"

// Rules are the tunable bounds applied during reconciliation.
type Rules struct {
	// AmountCeiling is the largest monetary value considered trustworthy.
	// Values above it are discarded as extraction noise, not clamped.
	AmountCeiling float64
	// TotalTolerance is the relative tolerance for total vs subtotal+tax.
	TotalTolerance float64
	// OldReceiptYears is the age past which a receipt date is flagged.
	OldReceiptYears int
}

func DefaultRules() Rules {
	return Rules{
		AmountCeiling:   999999.99,
		TotalTolerance:  0.10,
		OldReceiptYears: 10,
	}
}

// LineItem is a reconciled line item. Description is always non-empty.
type LineItem struct {
	Description string
	Quantity    *float64
	UnitPrice   *float64
	Amount      *float64
}

// ReconciledReceipt is the normalized form of a raw extraction. Total is
// synthesized from subtotal and tax before the record leaves this package;
// a total that was extracted directly is trusted and never corrected.
type ReconciledReceipt struct {
	Merchant   string
	Total      *float64
	Subtotal   *float64
	Tax        *float64
	Date       civil.Date
	Items      []LineItem
	Transcript string
	// Confidence is the mean of the accepted field confidences, 0-100.
	Confidence float64
}

// AnomalyKind labels a data-quality finding. Anomalies never block
// processing; they exist so the orchestrator can log them.
type AnomalyKind string

const (
	AnomalyAmountMismatch  AnomalyKind = "amount_mismatch"
	AnomalyAmountDiscarded AnomalyKind = "amount_discarded"
	AnomalyFutureDate      AnomalyKind = "future_date"
	AnomalyVeryOldDate     AnomalyKind = "very_old_date"
	AnomalyUnparsableDate  AnomalyKind = "unparsable_date"
)

type Anomaly struct {
	Kind   AnomalyKind
	Detail string
}

// Reconcile validates and repairs raw in the fixed rule order: amounts,
// total cross-check and synthesis, date, merchant, line items.
func Reconcile(raw extraction.RawExtraction, processingDate civil.Date, rules Rules) (ReconciledReceipt, []Anomaly) {
	var anomalies []Anomaly

	rec := ReconciledReceipt{
		Transcript: raw.Transcript,
	}

	rec.Total, anomalies = normalizeAmount(amountValue(raw.Total), "total", rules, anomalies)
	rec.Subtotal, anomalies = normalizeAmount(amountValue(raw.Subtotal), "subtotal", rules, anomalies)
	rec.Tax, anomalies = normalizeAmount(amountValue(raw.Tax), "tax", rules, anomalies)

	// Cross-check total against subtotal + tax. A mismatch is a signal, never
	// fatal, and an extracted total is trusted over the derived one.
	if rec.Total != nil && rec.Subtotal != nil && rec.Tax != nil && *rec.Total > 0 {
		expected := *rec.Subtotal + *rec.Tax
		if math.Abs(*rec.Total-expected)/(*rec.Total) > rules.TotalTolerance {
			anomalies = append(anomalies, Anomaly{
				Kind:   AnomalyAmountMismatch,
				Detail: fmt.Sprintf("total=%.2f subtotal=%.2f tax=%.2f", *rec.Total, *rec.Subtotal, *rec.Tax),
			})
		}
	}

	// Fill a missing total; only the first applicable rule fires.
	if rec.Total == nil {
		switch {
		case rec.Subtotal != nil && rec.Tax != nil:
			total := round2(*rec.Subtotal + *rec.Tax)
			rec.Total = &total
		case rec.Subtotal != nil:
			total := *rec.Subtotal
			rec.Total = &total
		}
	}

	rec.Date, anomalies = normalizeDate(raw.Date, processingDate, rules, anomalies)
	rec.Merchant = NormalizeMerchant(merchantText(raw.Merchant))
	rec.Items, anomalies = reconcileItems(raw.Items, rules, anomalies)
	rec.Confidence = aggregateConfidence(raw)

	return rec, anomalies
}

func amountValue(a *extraction.RawAmount) *float64 {
	if a == nil {
		return nil
	}
	v := a.Value
	return &v
}

func merchantText(f *extraction.RawField) string {
	if f == nil {
		return ""
	}
	return f.Text
}

// normalizeAmount mirrors negative values to positive (the sign is assumed
// to be an extraction artifact) and discards values above the ceiling.
func normalizeAmount(v *float64, field string, rules Rules, anomalies []Anomaly) (*float64, []Anomaly) {
	if v == nil {
		return nil, anomalies
	}
	val := *v
	if val < 0 {
		val = math.Abs(val)
	}
	if val > rules.AmountCeiling {
		anomalies = append(anomalies, Anomaly{
			Kind:   AnomalyAmountDiscarded,
			Detail: fmt.Sprintf("%s=%.2f exceeds ceiling %.2f", field, val, rules.AmountCeiling),
		})
		return nil, anomalies
	}
	val = round2(val)
	return &val, anomalies
}

func normalizeDate(f *extraction.RawField, processingDate civil.Date, rules Rules, anomalies []Anomaly) (civil.Date, []Anomaly) {
	if f == nil {
		return processingDate, anomalies
	}

	d, err := civil.ParseDate(f.Text)
	if err != nil {
		anomalies = append(anomalies, Anomaly{
			Kind:   AnomalyUnparsableDate,
			Detail: fmt.Sprintf("date %q", f.Text),
		})
		return processingDate, anomalies
	}

	// A future date is extraction noise, not fraud.
	if d.After(processingDate) {
		anomalies = append(anomalies, Anomaly{
			Kind:   AnomalyFutureDate,
			Detail: fmt.Sprintf("date %s is in the future", d),
		})
		return processingDate, anomalies
	}

	// Receipts can legitimately be old; flag but accept.
	cutoff := civil.Date{Year: processingDate.Year - rules.OldReceiptYears, Month: processingDate.Month, Day: processingDate.Day}
	if d.Before(cutoff) {
		anomalies = append(anomalies, Anomaly{
			Kind:   AnomalyVeryOldDate,
			Detail: fmt.Sprintf("date %s is more than %d years old", d, rules.OldReceiptYears),
		})
	}

	return d, anomalies
}

// NormalizeMerchant collapses whitespace, title-cases the name and strips
// trailing corporate-entity suffixes. Empty input yields UnknownMerchant.
func NormalizeMerchant(merchant string) string {
	words := strings.Fields(merchant)
	if len(words) == 0 {
		return UnknownMerchant
	}

	for i, w := range words {
		words[i] = titleWord(w)
	}
	cleaned := strings.Join(words, " ")

	// Suffix list is in title case because stripping runs after title-casing.
	suffixes := []string{" Inc.", " Inc", " Llc", " Ltd.", " Ltd", " Corp.", " Corp", " Corporation"}
	for _, suffix := range suffixes {
		if strings.HasSuffix(cleaned, suffix) {
			cleaned = strings.TrimSuffix(cleaned, suffix)
			break
		}
	}

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return UnknownMerchant
	}
	return cleaned
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	first := strings.ToUpper(string(runes[0]))
	return first + string(runes[1:])
}

// reconcileItems drops items without a description, runs the monetary
// fields through the same normalization as the receipt-level amounts and
// derives a missing amount from quantity times unit price.
func reconcileItems(items []extraction.RawLineItem, rules Rules, anomalies []Anomaly) ([]LineItem, []Anomaly) {
	var out []LineItem
	for _, item := range items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			continue
		}
		li := LineItem{
			Description: desc,
			Quantity:    item.Quantity,
		}
		li.UnitPrice, anomalies = normalizeAmount(item.UnitPrice, fmt.Sprintf("item %q unit price", desc), rules, anomalies)
		li.Amount, anomalies = normalizeAmount(item.Amount, fmt.Sprintf("item %q amount", desc), rules, anomalies)
		if li.Amount == nil && li.Quantity != nil && li.UnitPrice != nil {
			amount := round2(*li.Quantity * *li.UnitPrice)
			li.Amount = &amount
		}
		out = append(out, li)
	}
	return out, anomalies
}

// aggregateConfidence is the mean of the accepted scalar field confidences.
func aggregateConfidence(raw extraction.RawExtraction) float64 {
	var scores []float64
	if raw.Merchant != nil {
		scores = append(scores, raw.Merchant.Confidence)
	}
	if raw.Total != nil {
		scores = append(scores, raw.Total.Confidence)
	}
	if raw.Subtotal != nil {
		scores = append(scores, raw.Subtotal.Confidence)
	}
	if raw.Tax != nil {
		scores = append(scores, raw.Tax.Confidence)
	}
	if raw.Date != nil {
		scores = append(scores, raw.Date.Confidence)
	}
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return round2(sum / float64(len(scores)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
