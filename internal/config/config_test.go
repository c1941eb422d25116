package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.ReceiptsBucket != "receipts" {
		t.Errorf("ReceiptsBucket = %q, want receipts", cfg.ReceiptsBucket)
	}
	if cfg.UsersCollection != "users" {
		t.Errorf("UsersCollection = %q, want users", cfg.UsersCollection)
	}
	if cfg.ExtractAcceptThreshold != 80 {
		t.Errorf("ExtractAcceptThreshold = %v, want 80", cfg.ExtractAcceptThreshold)
	}
	if cfg.LexicalFallbackThreshold != 80 {
		t.Errorf("LexicalFallbackThreshold = %v, want 80", cfg.LexicalFallbackThreshold)
	}
	if cfg.EntityAcceptThreshold != 70 {
		t.Errorf("EntityAcceptThreshold = %v, want 70", cfg.EntityAcceptThreshold)
	}
	if cfg.EntityTextLimit != 5000 {
		t.Errorf("EntityTextLimit = %d, want 5000", cfg.EntityTextLimit)
	}
	if cfg.AmountCeiling != 999999.99 {
		t.Errorf("AmountCeiling = %v, want 999999.99", cfg.AmountCeiling)
	}
	if cfg.OldReceiptYears != 10 {
		t.Errorf("OldReceiptYears = %d, want 10", cfg.OldReceiptYears)
	}
	if cfg.TotalTolerance != 0.10 {
		t.Errorf("TotalTolerance = %v, want 0.10", cfg.TotalTolerance)
	}
	if cfg.ExtractTimeout != 60*time.Second {
		t.Errorf("ExtractTimeout = %v, want 60s", cfg.ExtractTimeout)
	}
	if cfg.NATSSubject != "receipts.uploaded" {
		t.Errorf("NATSSubject = %q, want receipts.uploaded", cfg.NATSSubject)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "proj-x")
	t.Setenv("RECEIPTS_BUCKET", "uploads-eu")
	t.Setenv("EXTRACT_ACCEPT_THRESHOLD", "90")
	t.Setenv("ENTITY_TEXT_LIMIT", "2500")
	t.Setenv("EXTRACT_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.ProjectID != "proj-x" {
		t.Errorf("ProjectID = %q, want proj-x", cfg.ProjectID)
	}
	if cfg.ReceiptsBucket != "uploads-eu" {
		t.Errorf("ReceiptsBucket = %q, want uploads-eu", cfg.ReceiptsBucket)
	}
	if cfg.ExtractAcceptThreshold != 90 {
		t.Errorf("ExtractAcceptThreshold = %v, want 90", cfg.ExtractAcceptThreshold)
	}
	if cfg.EntityTextLimit != 2500 {
		t.Errorf("EntityTextLimit = %d, want 2500", cfg.EntityTextLimit)
	}
	if cfg.ExtractTimeout != 30*time.Second {
		t.Errorf("ExtractTimeout = %v, want 30s", cfg.ExtractTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("EXTRACT_ACCEPT_THRESHOLD", "not-a-number")
	t.Setenv("ENTITY_TEXT_LIMIT", "5k")
	t.Setenv("EXTRACT_TIMEOUT", "soon")

	cfg := Load()

	if cfg.ExtractAcceptThreshold != 80 {
		t.Errorf("ExtractAcceptThreshold = %v, want default 80", cfg.ExtractAcceptThreshold)
	}
	if cfg.EntityTextLimit != 5000 {
		t.Errorf("EntityTextLimit = %d, want default 5000", cfg.EntityTextLimit)
	}
	if cfg.ExtractTimeout != 60*time.Second {
		t.Errorf("ExtractTimeout = %v, want default 60s", cfg.ExtractTimeout)
	}
}
