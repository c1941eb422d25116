// Package categorize assigns a spending category using a two-tier strategy:
// lexical keyword matching first, an external entity-recognition fallback
// when the lexical confidence is too low. Arbitration between the tiers is a
// named function with a fixed tie-break, not inline conditional logic.
package categorize

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Method tags which tier produced a decision.
type Method string

const (
	MethodLexical         Method = "lexical"
	MethodExternal        Method = "external"
	MethodDefault         Method = "default"
	MethodExternalDefault Method = "external-default"
)

// Decision is a categorization outcome. Confidence is a percentage.
type Decision struct {
	Category   string
	Confidence float64
	Method     Method
}

// Entity is one recognized entity from the external capability.
// Score is the recognition score in [0,1].
type Entity struct {
	Text  string
	Type  string
	Score float64
}

// EntityTypeOrganization is the entity type considered a merchant signal.
const EntityTypeOrganization = "ORGANIZATION"

// EntityRecognizer is the external entity-recognition capability.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]Entity, error)
}

// Config bounds the two-tier strategy.
type Config struct {
	// FallbackThreshold is the lexical confidence below which tier 2 runs.
	FallbackThreshold float64
	// EntityAcceptThreshold is the minimum recognition score, as a
	// percentage, for an entity to be considered.
	EntityAcceptThreshold float64
	// TextLimit is the byte limit of the external service's input.
	TextLimit int
}

func DefaultConfig() Config {
	return Config{
		FallbackThreshold:     80,
		EntityAcceptThreshold: 70,
		TextLimit:             5000,
	}
}

// Categorizer owns an immutable keyword table and an optional external
// recognizer. With a nil recognizer it degrades to the lexical tier only.
type Categorizer struct {
	keywords   map[string][]string
	recognizer EntityRecognizer
	cfg        Config
	log        zerolog.Logger
}

func New(keywords map[string][]string, recognizer EntityRecognizer, cfg Config, log zerolog.Logger) *Categorizer {
	return &Categorizer{
		keywords:   keywords,
		recognizer: recognizer,
		cfg:        cfg,
		log:        log,
	}
}

// Categorize decides a category for the receipt. The external tier runs only
// when the lexical confidence is below the fallback threshold, and its
// failure is absorbed: the lexical result always survives.
func (c *Categorizer) Categorize(ctx context.Context, merchant string, items []string, transcript string) Decision {
	lexical := c.lexical(merchant, items, transcript)

	if lexical.Confidence >= c.cfg.FallbackThreshold || c.recognizer == nil {
		return lexical
	}

	external, ok := c.external(ctx, merchant, transcript)
	if !ok {
		return lexical
	}

	return Arbitrate(lexical, external)
}

// Arbitrate keeps the decision with the strictly higher confidence.
// Ties go to the lexical tier: it is cheaper and deterministic.
func Arbitrate(lexical, external Decision) Decision {
	if external.Confidence > lexical.Confidence {
		return external
	}
	return lexical
}

// lexical scores every category's keywords against a lowercase haystack of
// merchant, transcript and item descriptions. A keyword hit inside the
// merchant name counts 3, anywhere else 1.
func (c *Categorizer) lexical(merchant string, items []string, transcript string) Decision {
	parts := []string{merchant, transcript}
	parts = append(parts, items...)
	haystack := strings.ToLower(strings.Join(parts, " "))
	merchantLower := strings.ToLower(merchant)

	bestCategory := ""
	bestScore := 0
	for _, category := range sortedCategories(c.keywords) {
		score := 0
		for _, keyword := range c.keywords[category] {
			if !strings.Contains(haystack, keyword) {
				continue
			}
			if merchantLower != "" && strings.Contains(merchantLower, keyword) {
				score += 3
			} else {
				score++
			}
		}
		if score > bestScore {
			bestCategory = category
			bestScore = score
		}
	}

	if bestScore == 0 {
		return Decision{Category: CategoryOther, Confidence: 50, Method: MethodDefault}
	}

	confidence := float64(bestScore) * 15
	if confidence > 95 {
		confidence = 95
	}
	return Decision{Category: bestCategory, Confidence: confidence, Method: MethodLexical}
}

// external submits merchant-or-transcript text to the recognizer, keeps the
// best organization entity above the acceptance threshold and maps its text
// through the keyword table. Returns ok=false only when the call fails;
// a successful call that matches nothing still yields a default decision.
func (c *Categorizer) external(ctx context.Context, merchant, transcript string) (Decision, bool) {
	text := merchant
	if text == "" {
		text = transcript
	}
	if text == "" {
		text = "Unknown"
	}
	text = truncate(text, c.cfg.TextLimit)

	entities, err := c.recognizer.RecognizeEntities(ctx, text)
	if err != nil {
		c.log.Warn().Err(err).Msg("entity recognition failed; keeping lexical result")
		return Decision{}, false
	}

	var best *Entity
	for i, e := range entities {
		if e.Type != EntityTypeOrganization {
			continue
		}
		if e.Score*100 < c.cfg.EntityAcceptThreshold {
			continue
		}
		if best == nil || e.Score > best.Score {
			best = &entities[i]
		}
	}

	if best != nil {
		entityText := strings.ToLower(best.Text)
		for _, category := range sortedCategories(c.keywords) {
			for _, keyword := range c.keywords[category] {
				if strings.Contains(entityText, keyword) {
					return Decision{
						Category:   category,
						Confidence: best.Score * 100,
						Method:     MethodExternal,
					}, true
				}
			}
		}
	}

	return Decision{Category: CategoryOther, Confidence: 60, Method: MethodExternalDefault}, true
}

// sortedCategories fixes iteration order so scoring ties resolve the same
// way on every run.
func sortedCategories(keywords map[string][]string) []string {
	out := make([]string, 0, len(keywords))
	for category := range keywords {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
