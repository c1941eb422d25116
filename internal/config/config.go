package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full configuration surface for the receipt pipeline.
// Everything is read from the environment with sensible defaults so the
// worker and the function host share one loading path.
type Config struct {
	ProjectID       string
	ReceiptsBucket  string
	UsersCollection string

	GeminiModel            string
	ExtractAcceptThreshold float64
	ExtractTimeout         time.Duration

	LexicalFallbackThreshold float64
	EntityAcceptThreshold    float64
	EntityTextLimit          int
	EntityTimeout            time.Duration

	AmountCeiling   float64
	OldReceiptYears int
	TotalTolerance  float64

	NATSURL     string
	NATSSubject string

	MetricsPort string
	LogLevel    string
}

func Load() Config {
	return Config{
		ProjectID:       mustEnv("GCP_PROJECT_ID", ""),
		ReceiptsBucket:  mustEnv("RECEIPTS_BUCKET", "receipts"),
		UsersCollection: mustEnv("FIRESTORE_USERS_COLLECTION", "users"),

		GeminiModel:            mustEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ExtractAcceptThreshold: mustEnvFloat("EXTRACT_ACCEPT_THRESHOLD", 80),
		ExtractTimeout:         mustEnvDuration("EXTRACT_TIMEOUT", 60*time.Second),

		LexicalFallbackThreshold: mustEnvFloat("LEXICAL_FALLBACK_THRESHOLD", 80),
		EntityAcceptThreshold:    mustEnvFloat("ENTITY_ACCEPT_THRESHOLD", 70),
		EntityTextLimit:          mustEnvInt("ENTITY_TEXT_LIMIT", 5000),
		EntityTimeout:            mustEnvDuration("ENTITY_TIMEOUT", 10*time.Second),

		AmountCeiling:   mustEnvFloat("AMOUNT_CEILING", 999999.99),
		OldReceiptYears: mustEnvInt("OLD_RECEIPT_YEARS", 10),
		TotalTolerance:  mustEnvFloat("TOTAL_TOLERANCE", 0.10),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "receipts.uploaded"),

		MetricsPort: mustEnv("METRICS_PORT", "9090"),
		LogLevel:    mustEnv("LOG_LEVEL", "info"),
	}
}

func mustEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func mustEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
