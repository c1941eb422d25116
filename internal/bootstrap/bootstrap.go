// Package bootstrap wires configuration into a ready-to-run pipeline. Both
// the long-running worker and the event-driven function host use it so the
// two deployments cannot drift apart.
package bootstrap

import (
	"context"
	"fmt"

	firestorelib "cloud.google.com/go/firestore"
	"github.com/rs/zerolog"

	"github.com/dmaksimov/expense-pipeline/internal/categorize"
	"github.com/dmaksimov/expense-pipeline/internal/config"
	"github.com/dmaksimov/expense-pipeline/internal/extraction"
	"github.com/dmaksimov/expense-pipeline/internal/gcs"
	"github.com/dmaksimov/expense-pipeline/internal/pipeline"
	"github.com/dmaksimov/expense-pipeline/internal/reconcile"
	"github.com/dmaksimov/expense-pipeline/internal/store/firestore"
)

// App holds the assembled pipeline and the clients it owns.
type App struct {
	Config    config.Config
	Log       zerolog.Logger
	Processor *pipeline.Processor

	firestore *firestorelib.Client
	storage   *gcs.Client
}

// New builds the full dependency graph. The entity recognizer is optional:
// if the Natural Language client cannot be created, categorization runs
// lexical-only and the degradation is logged once here.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required")
	}

	fsClient, err := firestorelib.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	storageClient, err := gcs.NewClient(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	extractor := extraction.NewGeminiExtractor(cfg.GeminiModel, cfg.ExtractAcceptThreshold, cfg.ExtractTimeout)

	var recognizer categorize.EntityRecognizer
	if rec, err := categorize.NewLanguageRecognizer(ctx, cfg.EntityTimeout); err != nil {
		log.Warn().Err(err).Msg("entity recognition unavailable, categorization is lexical-only")
	} else {
		recognizer = rec
	}

	categorizer := categorize.New(
		categorize.DefaultKeywords(),
		recognizer,
		categorize.Config{
			FallbackThreshold:     cfg.LexicalFallbackThreshold,
			EntityAcceptThreshold: cfg.EntityAcceptThreshold,
			TextLimit:             cfg.EntityTextLimit,
		},
		log,
	)

	processor := pipeline.New(
		firestore.NewReceiptRepository(fsClient, cfg.UsersCollection),
		firestore.NewExpenseRepository(fsClient, cfg.UsersCollection),
		storageClient,
		extractor,
		categorizer,
		reconcile.Rules{
			AmountCeiling:   cfg.AmountCeiling,
			TotalTolerance:  cfg.TotalTolerance,
			OldReceiptYears: cfg.OldReceiptYears,
		},
		log,
	)

	return &App{
		Config:    cfg,
		Log:       log,
		Processor: processor,
		firestore: fsClient,
		storage:   storageClient,
	}, nil
}

// HandleUpload maps an object-finalize notification onto one pipeline run.
// Malformed object paths are logged and dropped; there is no receipt
// record to fail.
func (a *App) HandleUpload(ctx context.Context, bucket, objectPath string) error {
	trg, err := pipeline.ParseTrigger(bucket, objectPath)
	if err != nil {
		a.Log.Error().Err(err).Str("object", objectPath).Msg("ignoring unrecognized upload")
		return nil
	}
	return a.Processor.Process(ctx, trg)
}

// Close releases the clients the app owns.
func (a *App) Close() {
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("close storage client")
		}
	}
	if a.firestore != nil {
		if err := a.firestore.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("close firestore client")
		}
	}
}
