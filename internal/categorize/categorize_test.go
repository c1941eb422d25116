package categorize

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// fakeRecognizer is a func-field mock for the external tier.
type fakeRecognizer struct {
	RecognizeEntitiesFunc func(ctx context.Context, text string) ([]Entity, error)
	calls                 int
	lastText              string
}

func (f *fakeRecognizer) RecognizeEntities(ctx context.Context, text string) ([]Entity, error) {
	f.calls++
	f.lastText = text
	if f.RecognizeEntitiesFunc != nil {
		return f.RecognizeEntitiesFunc(ctx, text)
	}
	return nil, nil
}

func newTestCategorizer(recognizer EntityRecognizer) *Categorizer {
	return New(DefaultKeywords(), recognizer, DefaultConfig(), zerolog.Nop())
}

func TestCategorize_LexicalStarbucks(t *testing.T) {
	rec := &fakeRecognizer{}
	c := newTestCategorizer(rec)

	got := c.Categorize(context.Background(), "STARBUCKS COFFEE #1234", nil, "starbucks coffee grande latte cafe")

	if got.Category != CategoryFoodDining {
		t.Errorf("category = %q, want %q", got.Category, CategoryFoodDining)
	}
	if got.Method != MethodLexical {
		t.Errorf("method = %q, want lexical", got.Method)
	}
	if got.Confidence < 80 {
		t.Errorf("confidence = %v, want >= 80", got.Confidence)
	}
	if rec.calls != 0 {
		t.Error("high-confidence lexical result must not invoke the external tier")
	}
}

func TestCategorize_MerchantHitsWeighHeavier(t *testing.T) {
	c := newTestCategorizer(nil)

	// "walmart" in the merchant name scores 3; same keyword only in the
	// transcript would score 1.
	inMerchant := c.Categorize(context.Background(), "Walmart", nil, "")
	inTranscript := c.Categorize(context.Background(), "", nil, "walmart")

	if inMerchant.Category != CategoryGroceries || inTranscript.Category != CategoryGroceries {
		t.Fatalf("categories = %q/%q, want Groceries", inMerchant.Category, inTranscript.Category)
	}
	if inMerchant.Confidence <= inTranscript.Confidence {
		t.Errorf("merchant hit confidence %v should exceed transcript hit %v",
			inMerchant.Confidence, inTranscript.Confidence)
	}
}

func TestCategorize_ConfidenceCap(t *testing.T) {
	c := newTestCategorizer(nil)

	// Pile up enough keyword hits to blow past the cap.
	got := c.Categorize(context.Background(), "Coffee Cafe Restaurant Diner", nil,
		"pizza burger sushi bakery food dining grill kitchen")

	if got.Confidence != 95 {
		t.Errorf("confidence = %v, want capped at 95", got.Confidence)
	}
}

func TestCategorize_NoMatchDefault(t *testing.T) {
	rec := &fakeRecognizer{
		RecognizeEntitiesFunc: func(ctx context.Context, text string) ([]Entity, error) {
			return nil, errors.New("unreachable")
		},
	}
	c := newTestCategorizer(rec)

	got := c.Categorize(context.Background(), "Zzyzx Holdings", nil, "illegible")

	if got.Category != CategoryOther || got.Method != MethodDefault || got.Confidence != 50 {
		t.Errorf("got %+v, want Other/50/default", got)
	}
}

func TestCategorize_ExternalTierWins(t *testing.T) {
	rec := &fakeRecognizer{
		RecognizeEntitiesFunc: func(ctx context.Context, text string) ([]Entity, error) {
			return []Entity{
				{Text: "Hilton Garden Inn", Type: EntityTypeOrganization, Score: 0.92},
				{Text: "Tuesday", Type: "DATE", Score: 0.99},
			}, nil
		},
	}
	c := newTestCategorizer(rec)

	got := c.Categorize(context.Background(), "HGI Downtown", nil, "room night charge")

	if got.Category != CategoryTravel {
		t.Errorf("category = %q, want Travel", got.Category)
	}
	if got.Method != MethodExternal {
		t.Errorf("method = %q, want external", got.Method)
	}
	if got.Confidence != 92 {
		t.Errorf("confidence = %v, want 92", got.Confidence)
	}
	if rec.calls != 1 {
		t.Errorf("recognizer calls = %d, want 1", rec.calls)
	}
}

func TestCategorize_ExternalFailureAbsorbed(t *testing.T) {
	rec := &fakeRecognizer{
		RecognizeEntitiesFunc: func(ctx context.Context, text string) ([]Entity, error) {
			return nil, errors.New("deadline exceeded")
		},
	}
	c := newTestCategorizer(rec)

	// Lexical score is low (single transcript hit) so tier 2 is consulted;
	// its failure must never surface.
	got := c.Categorize(context.Background(), "Quik Stop", nil, "fuel")

	if got.Method != MethodLexical {
		t.Errorf("method = %q, want lexical fallback", got.Method)
	}
	if got.Category != CategoryTransportation {
		t.Errorf("category = %q, want Transportation from lexical tier", got.Category)
	}
	if rec.calls != 1 {
		t.Errorf("recognizer calls = %d, want 1", rec.calls)
	}
}

func TestCategorize_EntityBelowThresholdYieldsExternalDefault(t *testing.T) {
	rec := &fakeRecognizer{
		RecognizeEntitiesFunc: func(ctx context.Context, text string) ([]Entity, error) {
			return []Entity{
				{Text: "Hilton", Type: EntityTypeOrganization, Score: 0.45},
			}, nil
		},
	}
	c := newTestCategorizer(rec)

	got := c.Categorize(context.Background(), "Zzyzx Holdings", nil, "")

	// 60 beats the lexical default's 50, so the external default wins.
	if got.Category != CategoryOther || got.Method != MethodExternalDefault || got.Confidence != 60 {
		t.Errorf("got %+v, want Other/60/external-default", got)
	}
}

func TestCategorize_TextTruncatedForExternalTier(t *testing.T) {
	rec := &fakeRecognizer{}
	cfg := DefaultConfig()
	cfg.TextLimit = 10
	c := New(DefaultKeywords(), rec, cfg, zerolog.Nop())

	c.Categorize(context.Background(), "a very long merchant name well past the limit", nil, "")

	if len(rec.lastText) != 10 {
		t.Errorf("recognizer input length = %d, want 10", len(rec.lastText))
	}
}

func TestArbitrate(t *testing.T) {
	lex := Decision{Category: CategoryGroceries, Confidence: 60, Method: MethodLexical}
	ext := Decision{Category: CategoryShopping, Confidence: 75, Method: MethodExternal}

	if got := Arbitrate(lex, ext); got.Method != MethodExternal {
		t.Errorf("strictly higher external confidence should win, got %+v", got)
	}

	ext.Confidence = 60
	if got := Arbitrate(lex, ext); got.Method != MethodLexical {
		t.Errorf("ties must favor the lexical tier, got %+v", got)
	}

	ext.Confidence = 30
	if got := Arbitrate(lex, ext); got.Method != MethodLexical {
		t.Errorf("higher lexical confidence should win, got %+v", got)
	}
}

func TestCategorize_NilRecognizerStaysLexical(t *testing.T) {
	c := newTestCategorizer(nil)

	got := c.Categorize(context.Background(), "Zzyzx Holdings", nil, "")

	if got.Category != CategoryOther || got.Method != MethodDefault {
		t.Errorf("got %+v, want lexical default with nil recognizer", got)
	}
}
