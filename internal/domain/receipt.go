package domain

import (
	"errors"
	"time"
)

// ReceiptStatus tracks a receipt through the processing lifecycle.
// pending is set at upload time; the pipeline owns every later transition.
type ReceiptStatus string

const (
	ReceiptStatusPending    ReceiptStatus = "pending"
	ReceiptStatusProcessing ReceiptStatus = "processing"
	ReceiptStatusProcessed  ReceiptStatus = "processed"
	ReceiptStatusFailed     ReceiptStatus = "failed"
)

// ErrReceiptNotFound is returned by receipt stores when no record exists
// for the given (user id, receipt id) pair.
var ErrReceiptNotFound = errors.New("receipt not found")

// Receipt is the lifecycle record for one uploaded document. It is created
// by the upload service in status pending and mutated only by the pipeline
// afterwards; deletion is handled elsewhere.
type Receipt struct {
	UserID           string        `firestore:"user_id"`
	ReceiptID        string        `firestore:"receipt_id"`
	ObjectPath       string        `firestore:"object_path"`
	OriginalFilename string        `firestore:"original_filename"`
	Status           ReceiptStatus `firestore:"status"`
	UploadedAt       time.Time     `firestore:"uploaded_at"`
	ProcessedAt      *time.Time    `firestore:"processed_at,omitempty"`
	ExpenseID        string        `firestore:"expense_id,omitempty"`
	ErrorMessage     string        `firestore:"error_message,omitempty"`
}

// StatusUpdate describes a conditional receipt update. Only non-empty
// fields are written; the processing timestamp is always refreshed.
type StatusUpdate struct {
	Status       ReceiptStatus
	ExpenseID    string
	ErrorMessage string
}
