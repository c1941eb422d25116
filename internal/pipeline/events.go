package pipeline

import (
	"fmt"
	"path"
	"strings"
)

// Trigger identifies one pipeline run: which user's receipt to process and
// where the uploaded document lives.
type Trigger struct {
	Bucket     string
	ObjectPath string
	UserID     string
	ReceiptID  string
	Filename   string
}

// ParseTrigger maps an object-finalize event onto a Trigger. The upload
// service writes documents as "receipts/{userID}/{receiptID}.{ext}"; any
// other shape is a structural failure and the run is abandoned before any
// status write, because there is no record to update.
func ParseTrigger(bucket, objectPath string) (Trigger, error) {
	parts := strings.Split(objectPath, "/")
	if len(parts) != 3 || parts[0] != "receipts" {
		return Trigger{}, fmt.Errorf("unexpected object path %q, want receipts/{user}/{receipt}.{ext}", objectPath)
	}

	userID := parts[1]
	filename := parts[2]
	receiptID := strings.TrimSuffix(filename, path.Ext(filename))
	if userID == "" || receiptID == "" {
		return Trigger{}, fmt.Errorf("object path %q has empty user or receipt id", objectPath)
	}

	return Trigger{
		Bucket:     bucket,
		ObjectPath: objectPath,
		UserID:     userID,
		ReceiptID:  receiptID,
		Filename:   filename,
	}, nil
}
