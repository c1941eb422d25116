// Package expense builds the persisted Expense record from reconciled and
// categorized receipt data.
package expense

import (
	"time"

	"github.com/dmaksimov/expense-pipeline/internal/categorize"
	"github.com/dmaksimov/expense-pipeline/internal/domain"
	"github.com/dmaksimov/expense-pipeline/internal/reconcile"
)

// Input identifies the run and carries the pipeline's intermediate results.
type Input struct {
	UserID     string
	ReceiptID  string
	ExpenseID  string
	ObjectPath string

	Reconciled reconcile.ReconciledReceipt
	Decision   categorize.Decision

	Now time.Time
}

// Assemble is a pure combine: it computes the final Expense shape and its
// derived metadata. It runs only after categorization succeeded; persistence
// is the orchestrator's job.
func Assemble(in Input) domain.Expense {
	amount := 0.0
	if in.Reconciled.Total != nil {
		amount = *in.Reconciled.Total
	}

	items := make([]domain.LineItem, 0, len(in.Reconciled.Items))
	for _, item := range in.Reconciled.Items {
		items = append(items, domain.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	now := in.Now.UTC()

	return domain.Expense{
		UserID:    in.UserID,
		ExpenseID: in.ExpenseID,
		ReceiptID: in.ReceiptID,

		Amount:   amount,
		Subtotal: in.Reconciled.Subtotal,
		Tax:      in.Reconciled.Tax,
		Merchant: in.Reconciled.Merchant,
		Category: in.Decision.Category,
		Date:     in.Reconciled.Date.String(),

		Items:      items,
		ObjectPath: in.ObjectPath,
		RawText:    in.Reconciled.Transcript,

		OCRConfidence:      in.Reconciled.Confidence,
		CategoryConfidence: in.Decision.Confidence,

		Metadata: domain.ExpenseMetadata{
			ItemCount:      len(items),
			HasItems:       len(items) > 0,
			CategoryMethod: string(in.Decision.Method),
		},

		CreatedAt: now,
		UpdatedAt: now,
	}
}
