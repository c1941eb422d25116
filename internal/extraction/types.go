package extraction

import (
	"context"
	"fmt"
)

// RawField is a scalar field read off the document, with the model's
// confidence for it as a percentage in [0,100].
type RawField struct {
	Text       string
	Confidence float64
}

// RawAmount is a monetary field with its confidence percentage.
type RawAmount struct {
	Value      float64
	Confidence float64
}

// RawLineItem is one purchased item as extracted. Only Description is
// required downstream; the numeric fields may all be absent.
type RawLineItem struct {
	Description string
	Quantity    *float64
	UnitPrice   *float64
	Amount      *float64
	Confidence  float64
}

// RawExtraction is the output of the document-understanding call. It is
// transient: the reconciler turns it into a persistable record. Fields below
// the acceptance threshold have already been dropped by the adapter.
type RawExtraction struct {
	Merchant   *RawField
	Total      *RawAmount
	Subtotal   *RawAmount
	Tax        *RawAmount
	Date       *RawField
	Items      []RawLineItem
	Transcript string
}

// Empty reports whether the extraction carries no structured fields at all.
func (r RawExtraction) Empty() bool {
	return r.Merchant == nil &&
		r.Total == nil &&
		r.Subtotal == nil &&
		r.Tax == nil &&
		r.Date == nil &&
		len(r.Items) == 0
}

// Document is the stored receipt image or PDF handed to the extractor.
type Document struct {
	Bytes    []byte
	MIMEType string
}

// Extractor is the document-understanding capability. Zero structured
// fields is a valid outcome (empty RawExtraction, nil error); an Error is
// returned only when the call itself cannot produce a result.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (RawExtraction, error)
}

// Error wraps failures of the extraction call: the capability being
// unreachable, the document being unreadable, or an unusable response.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}
