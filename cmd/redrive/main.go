// Redrive publishes an upload event for an already-stored receipt object,
// re-running the pipeline for it. Useful after a failed run or a pipeline
// fix: re-processing is idempotent and overwrites the linked expense.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/dmaksimov/expense-pipeline/internal/config"
	"github.com/dmaksimov/expense-pipeline/internal/logger"
	"github.com/dmaksimov/expense-pipeline/internal/queue"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	var (
		bucket string
		object string
	)
	flag.StringVar(&bucket, "bucket", cfg.ReceiptsBucket, "bucket holding the receipt document")
	flag.StringVar(&object, "object", "", "object path, receipts/{user}/{receipt}.{ext} (required)")
	flag.Parse()

	if object == "" {
		log.Fatal().Msg("usage: redrive -object receipts/USER/RECEIPT.jpg [-bucket BUCKET]")
	}

	uploads, err := queue.NewNATSQueue(cfg.NATSURL, cfg.NATSSubject, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect upload queue")
	}
	defer uploads.Close()

	ctx := logger.WithContext(context.Background(), log)

	evt := queue.UploadEvent{Bucket: bucket, ObjectPath: object}
	if err := uploads.Publish(ctx, evt); err != nil {
		log.Fatal().Err(err).Str("object", object).Msg("publish upload event")
	}

	fmt.Printf("republished gs://%s/%s to %s\n", bucket, object, cfg.NATSSubject)
}
