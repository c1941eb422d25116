// Function is the event-driven deployment: Cloud Functions invokes it with
// an object-finalize CloudEvent for each uploaded receipt document.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/dmaksimov/expense-pipeline/internal/bootstrap"
	"github.com/dmaksimov/expense-pipeline/internal/config"
	"github.com/dmaksimov/expense-pipeline/internal/logger"
)

// gcsEvent is the object-finalize notification payload.
type gcsEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

var (
	app     *bootstrap.App
	once    sync.Once
	initErr error
)

func init() {
	functions.CloudEvent("ProcessReceipt", processReceipt)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		fmt.Fprintf(os.Stderr, "funcframework start: %v\n", err)
		os.Exit(1)
	}
}

// processReceipt is the CloudEvent entry point. Clients are initialized on
// the first invocation and reused across warm invocations.
func processReceipt(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		cfg := config.Load()
		log := logger.New(cfg.LogLevel)
		app, initErr = bootstrap.New(context.Background(), cfg, log)
	})
	if initErr != nil {
		return fmt.Errorf("function initialization: %w", initErr)
	}

	var evt gcsEvent
	if err := json.Unmarshal(e.Data(), &evt); err != nil {
		app.Log.Error().Err(err).Str("data", string(e.Data())).Msg("malformed storage event")
		return fmt.Errorf("unmarshal storage event: %w", err)
	}

	ctx = logger.WithContext(ctx, app.Log)
	return app.HandleUpload(ctx, evt.Bucket, evt.Name)
}
