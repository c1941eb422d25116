package categorize

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	language "google.golang.org/api/language/v1"
)

// LanguageRecognizer implements EntityRecognizer with the Cloud Natural
// Language API. Entity salience is reported as the recognition score. The
// call runs behind a circuit breaker and a bounded timeout so a flapping
// service degrades to the lexical tier instead of stalling the worker.
type LanguageRecognizer struct {
	svc     *language.Service
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]Entity]
}

func NewLanguageRecognizer(ctx context.Context, timeout time.Duration) (*LanguageRecognizer, error) {
	svc, err := language.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create language service: %w", err)
	}

	settings := gobreaker.Settings{
		Name:    "language.analyze_entities",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	}

	return &LanguageRecognizer{
		svc:     svc,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[[]Entity](settings),
	}, nil
}

func (r *LanguageRecognizer) RecognizeEntities(ctx context.Context, text string) ([]Entity, error) {
	return r.breaker.Execute(func() ([]Entity, error) {
		callCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		req := &language.AnalyzeEntitiesRequest{
			Document: &language.Document{
				Content: text,
				Type:    "PLAIN_TEXT",
			},
			EncodingType: "UTF8",
		}

		resp, err := r.svc.Documents.AnalyzeEntities(req).Context(callCtx).Do()
		if err != nil {
			return nil, fmt.Errorf("analyze entities: %w", err)
		}

		entities := make([]Entity, 0, len(resp.Entities))
		for _, e := range resp.Entities {
			entities = append(entities, Entity{
				Text:  e.Name,
				Type:  e.Type,
				Score: e.Salience,
			})
		}
		return entities, nil
	})
}
