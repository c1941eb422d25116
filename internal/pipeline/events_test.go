package pipeline_test

import (
	"testing"

	"github.com/dmaksimov/expense-pipeline/internal/pipeline"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		name       string
		objectPath string
		want       pipeline.Trigger
		wantErr    bool
	}{
		{
			name:       "valid key",
			objectPath: "receipts/user-42/rcpt-7.jpg",
			want: pipeline.Trigger{
				Bucket:     "uploads",
				ObjectPath: "receipts/user-42/rcpt-7.jpg",
				UserID:     "user-42",
				ReceiptID:  "rcpt-7",
				Filename:   "rcpt-7.jpg",
			},
		},
		{
			name:       "no extension",
			objectPath: "receipts/user-42/rcpt-7",
			want: pipeline.Trigger{
				Bucket:     "uploads",
				ObjectPath: "receipts/user-42/rcpt-7",
				UserID:     "user-42",
				ReceiptID:  "rcpt-7",
				Filename:   "rcpt-7",
			},
		},
		{
			name:       "wrong prefix",
			objectPath: "thumbnails/user-42/rcpt-7.jpg",
			wantErr:    true,
		},
		{
			name:       "too shallow",
			objectPath: "receipts/rcpt-7.jpg",
			wantErr:    true,
		},
		{
			name:       "too deep",
			objectPath: "receipts/user-42/2026/rcpt-7.jpg",
			wantErr:    true,
		},
		{
			name:       "empty user",
			objectPath: "receipts//rcpt-7.jpg",
			wantErr:    true,
		},
		{
			name:       "empty filename",
			objectPath: "receipts/user-42/",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pipeline.ParseTrigger("uploads", tt.objectPath)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTrigger(%q) succeeded, want error", tt.objectPath)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTrigger(%q) failed: %v", tt.objectPath, err)
			}
			if got != tt.want {
				t.Errorf("ParseTrigger(%q) = %+v, want %+v", tt.objectPath, got, tt.want)
			}
		})
	}
}
