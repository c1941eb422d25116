// Package pipeline orchestrates receipt processing: extract, reconcile,
// categorize, assemble, persist. It owns the receipt status state machine
// (pending -> processing -> processed|failed) and its failure containment.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmaksimov/expense-pipeline/internal/domain"
	"github.com/dmaksimov/expense-pipeline/internal/expense"
	"github.com/dmaksimov/expense-pipeline/internal/extraction"
	"github.com/dmaksimov/expense-pipeline/internal/reconcile"
)

// maxErrorMessageLen bounds the error text stored on a failed receipt.
const maxErrorMessageLen = 2000

// Processor drives the full pipeline for one trigger at a time. Runs for
// different receipts are independent and may execute in parallel; the only
// shared state is the underlying stores.
type Processor struct {
	receipts    ReceiptStore
	expenses    ExpenseStore
	fetcher     DocumentFetcher
	extractor   extraction.Extractor
	categorizer Categorizer
	rules       reconcile.Rules
	log         zerolog.Logger
	now         func() time.Time
}

func New(
	receipts ReceiptStore,
	expenses ExpenseStore,
	fetcher DocumentFetcher,
	extractor extraction.Extractor,
	categorizer Categorizer,
	rules reconcile.Rules,
	log zerolog.Logger,
) *Processor {
	return &Processor{
		receipts:    receipts,
		expenses:    expenses,
		fetcher:     fetcher,
		extractor:   extractor,
		categorizer: categorizer,
		rules:       rules,
		log:         log,
		now:         time.Now,
	}
}

// Process runs the pipeline for one uploaded document. Trigger events are
// delivered at least once, so Process is idempotent: a receipt already in
// processed is skipped, and a re-run reuses the linked expense id so the
// expense record is overwritten rather than duplicated.
func (p *Processor) Process(ctx context.Context, trg Trigger) error {
	log := p.log.With().
		Str("user_id", trg.UserID).
		Str("receipt_id", trg.ReceiptID).
		Logger()

	receipt, err := p.receipts.Get(ctx, trg.UserID, trg.ReceiptID)
	if errors.Is(err, domain.ErrReceiptNotFound) {
		// Structural failure: there is no record to update. Abandon.
		log.Error().Str("object", trg.ObjectPath).Msg("no receipt record for uploaded object, abandoning run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load receipt: %w", err)
	}

	if receipt.Status == domain.ReceiptStatusProcessed {
		log.Info().Str("expense_id", receipt.ExpenseID).Msg("receipt already processed, skipping redelivery")
		return nil
	}

	// Enter processing before the first external call.
	if err := p.receipts.UpdateStatus(ctx, trg.UserID, trg.ReceiptID, domain.StatusUpdate{
		Status: domain.ReceiptStatusProcessing,
	}); err != nil {
		err = fmt.Errorf("mark receipt processing: %w", err)
		p.markFailed(ctx, log, trg, err)
		return err
	}

	expenseID, err := p.run(ctx, log, trg, receipt)
	if err != nil {
		p.markFailed(ctx, log, trg, err)
		return err
	}

	if err := p.receipts.UpdateStatus(ctx, trg.UserID, trg.ReceiptID, domain.StatusUpdate{
		Status:    domain.ReceiptStatusProcessed,
		ExpenseID: expenseID,
	}); err != nil {
		err = fmt.Errorf("mark receipt processed: %w", err)
		p.markFailed(ctx, log, trg, err)
		return err
	}

	log.Info().Str("expense_id", expenseID).Msg("receipt processed")
	return nil
}

// run executes the stages between the processing and terminal transitions
// and returns the id of the created expense.
func (p *Processor) run(ctx context.Context, log zerolog.Logger, trg Trigger, receipt *domain.Receipt) (string, error) {
	// Stage 1: fetch the document from the object store.
	data, contentType, err := p.fetcher.Fetch(ctx, trg.Bucket, trg.ObjectPath)
	if err != nil {
		return "", fmt.Errorf("fetch document: %w", err)
	}

	// Stage 2: extract structured fields. An empty result is valid and is
	// handled by reconciliation, not treated as an error.
	raw, err := p.extractor.Extract(ctx, extraction.Document{Bytes: data, MIMEType: contentType})
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	if raw.Empty() {
		log.Warn().Msg("extraction returned no structured fields")
	}

	// Stage 3: reconcile. Anomalies are data-quality signals, never fatal.
	processingDate := civil.DateOf(p.now().UTC())
	rec, anomalies := reconcile.Reconcile(raw, processingDate, p.rules)
	for _, a := range anomalies {
		log.Warn().
			Str("kind", string(a.Kind)).
			Str("detail", a.Detail).
			Msg("reconciliation anomaly")
	}

	// Stage 4: categorize. The categorizer never fails.
	descriptions := make([]string, 0, len(rec.Items))
	for _, item := range rec.Items {
		descriptions = append(descriptions, item.Description)
	}
	decision := p.categorizer.Categorize(ctx, rec.Merchant, descriptions, rec.Transcript)
	log.Info().
		Str("category", decision.Category).
		Float64("confidence", decision.Confidence).
		Str("method", string(decision.Method)).
		Msg("receipt categorized")

	// Stage 5: assemble and persist the expense. Reusing an expense id
	// linked by an earlier run keeps re-processing idempotent.
	expenseID := receipt.ExpenseID
	if expenseID == "" {
		expenseID = uuid.NewString()
	}
	exp := expense.Assemble(expense.Input{
		UserID:     trg.UserID,
		ReceiptID:  trg.ReceiptID,
		ExpenseID:  expenseID,
		ObjectPath: trg.ObjectPath,
		Reconciled: rec,
		Decision:   decision,
		Now:        p.now(),
	})
	if err := p.expenses.Put(ctx, &exp); err != nil {
		return "", fmt.Errorf("persist expense: %w", err)
	}

	return expenseID, nil
}

// markFailed is a best-effort terminal status write. A secondary failure
// while recording failed must never mask the primary error or crash the
// trigger handler, so it is logged distinctly and swallowed.
func (p *Processor) markFailed(ctx context.Context, log zerolog.Logger, trg Trigger, cause error) {
	msg := cause.Error()
	if len(msg) > maxErrorMessageLen {
		cut := maxErrorMessageLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}

	err := p.receipts.UpdateStatus(ctx, trg.UserID, trg.ReceiptID, domain.StatusUpdate{
		Status:       domain.ReceiptStatusFailed,
		ErrorMessage: msg,
	})
	if err != nil {
		log.Error().
			Err(err).
			AnErr("primary_error", cause).
			Msg("best-effort failed-status write did not stick")
	}
}
