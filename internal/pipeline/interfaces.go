package pipeline

import (
	"context"

	"github.com/dmaksimov/expense-pipeline/internal/categorize"
	"github.com/dmaksimov/expense-pipeline/internal/domain"
)

// ReceiptStore is the lifecycle-record side of the key-value store.
type ReceiptStore interface {
	// Get returns domain.ErrReceiptNotFound when no record exists.
	Get(ctx context.Context, userID, receiptID string) (*domain.Receipt, error)
	// UpdateStatus applies a conditional field update to one receipt.
	UpdateStatus(ctx context.Context, userID, receiptID string, upd domain.StatusUpdate) error
}

// ExpenseStore writes expense records. Put must overwrite an existing
// record with the same expense id.
type ExpenseStore interface {
	Put(ctx context.Context, exp *domain.Expense) error
}

// DocumentFetcher reads the uploaded document from the object store.
type DocumentFetcher interface {
	Fetch(ctx context.Context, bucket, object string) (data []byte, contentType string, err error)
}

// Categorizer decides a spending category; it never fails, degrading to a
// default decision instead.
type Categorizer interface {
	Categorize(ctx context.Context, merchant string, items []string, transcript string) categorize.Decision
}
