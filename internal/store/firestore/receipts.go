// Package firestore persists Receipt and Expense records. Records are keyed
// by (user id, record id); each document write is atomic, nothing here is
// cross-document transactional.
package firestore

import (
	"context"
	"fmt"
	"time"

	firestorelib "cloud.google.com/go/firestore"

	"github.com/dmaksimov/expense-pipeline/internal/domain"
)

const (
	receiptsSubcollection = "receipts"
	expensesSubcollection = "expenses"
)

// ReceiptRepository reads and updates receipt lifecycle records.
type ReceiptRepository struct {
	client          *firestorelib.Client
	usersCollection string
}

func NewReceiptRepository(client *firestorelib.Client, usersCollection string) *ReceiptRepository {
	return &ReceiptRepository{
		client:          client,
		usersCollection: usersCollection,
	}
}

func (r *ReceiptRepository) doc(userID, receiptID string) *firestorelib.DocumentRef {
	return r.client.Collection(r.usersCollection).
		Doc(userID).
		Collection(receiptsSubcollection).
		Doc(receiptID)
}

// Get fetches one receipt; domain.ErrReceiptNotFound when no record exists.
func (r *ReceiptRepository) Get(ctx context.Context, userID, receiptID string) (*domain.Receipt, error) {
	snap, err := r.doc(userID, receiptID).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("get receipt %s/%s: %w", userID, receiptID, err)
	}

	var receipt domain.Receipt
	if err := snap.DataTo(&receipt); err != nil {
		return nil, fmt.Errorf("decode receipt %s/%s: %w", userID, receiptID, err)
	}
	return &receipt, nil
}

// UpdateStatus applies a conditional field update: only the fields set on
// upd are written, plus the refreshed processing timestamp.
func (r *ReceiptRepository) UpdateStatus(ctx context.Context, userID, receiptID string, upd domain.StatusUpdate) error {
	updates := []firestorelib.Update{
		{Path: "status", Value: string(upd.Status)},
		{Path: "processed_at", Value: time.Now().UTC()},
	}
	if upd.ExpenseID != "" {
		updates = append(updates, firestorelib.Update{Path: "expense_id", Value: upd.ExpenseID})
	}
	if upd.ErrorMessage != "" {
		updates = append(updates, firestorelib.Update{Path: "error_message", Value: upd.ErrorMessage})
	}

	if _, err := r.doc(userID, receiptID).Update(ctx, updates); err != nil {
		return fmt.Errorf("update receipt %s/%s to %s: %w", userID, receiptID, upd.Status, err)
	}
	return nil
}
