package domain

import (
	"time"
)

// LineItem is a single purchased item on a receipt. Amount is either
// extracted directly or derived from quantity and unit price.
type LineItem struct {
	Description string   `firestore:"description"`
	Quantity    *float64 `firestore:"quantity,omitempty"`
	UnitPrice   *float64 `firestore:"unit_price,omitempty"`
	Amount      *float64 `firestore:"amount,omitempty"`
}

// ExpenseMetadata carries derived facts about how the expense was built.
type ExpenseMetadata struct {
	ItemCount      int    `firestore:"item_count"`
	HasItems       bool   `firestore:"has_items"`
	CategoryMethod string `firestore:"category_method"`
}

// Expense is the financial record produced by a successful pipeline run.
// Its identity is fixed once created; later edits are a CRUD concern and
// operate on the same record. Dates are stored as ISO strings (YYYY-MM-DD).
type Expense struct {
	UserID    string `firestore:"user_id"`
	ExpenseID string `firestore:"expense_id"`
	ReceiptID string `firestore:"receipt_id"`

	Amount   float64  `firestore:"amount"`
	Subtotal *float64 `firestore:"subtotal,omitempty"`
	Tax      *float64 `firestore:"tax,omitempty"`
	Merchant string   `firestore:"merchant"`
	Category string   `firestore:"category"`
	Date     string   `firestore:"date"`

	Items      []LineItem `firestore:"items"`
	ObjectPath string     `firestore:"object_path"`
	RawText    string     `firestore:"raw_text"`

	OCRConfidence      float64 `firestore:"ocr_confidence"`
	CategoryConfidence float64 `firestore:"category_confidence"`

	Metadata ExpenseMetadata `firestore:"metadata"`

	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}
