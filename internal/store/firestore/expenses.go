package firestore

import (
	"context"
	"fmt"

	firestorelib "cloud.google.com/go/firestore"

	"github.com/dmaksimov/expense-pipeline/internal/domain"
)

// ExpenseRepository writes expense records.
type ExpenseRepository struct {
	client          *firestorelib.Client
	usersCollection string
}

func NewExpenseRepository(client *firestorelib.Client, usersCollection string) *ExpenseRepository {
	return &ExpenseRepository{
		client:          client,
		usersCollection: usersCollection,
	}
}

// Put writes the expense under its fixed id. Set semantics make re-runs of
// the same receipt overwrite the linked expense instead of duplicating it.
func (r *ExpenseRepository) Put(ctx context.Context, exp *domain.Expense) error {
	ref := r.client.Collection(r.usersCollection).
		Doc(exp.UserID).
		Collection(expensesSubcollection).
		Doc(exp.ExpenseID)

	if _, err := ref.Set(ctx, exp); err != nil {
		return fmt.Errorf("put expense %s/%s: %w", exp.UserID, exp.ExpenseID, err)
	}
	return nil
}
