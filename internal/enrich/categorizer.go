package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsbytes/internal/domain"
	"newsbytes/internal/ports"
)

// KeywordCategorizer scores title and body against the keyword table.
// The strictly highest count wins; ties and zero matches resolve to the
// default category.
type KeywordCategorizer struct{}

var _ ports.Categorizer = (*KeywordCategorizer)(nil)

// NewKeywordCategorizer builds the pure keyword-scoring classifier.
func NewKeywordCategorizer() *KeywordCategorizer {
	return &KeywordCategorizer{}
}

// Categorize picks the category with the strictly highest keyword count.
func (c *KeywordCategorizer) Categorize(_ context.Context, title, body string) domain.Category {
	counts := scoreKeywords(title + " " + body)

	best := domain.DefaultCategory
	bestCount := 0
	unique := true
	for _, cat := range domain.Categories() {
		switch {
		case counts[cat] > bestCount:
			best, bestCount, unique = cat, counts[cat], true
		case counts[cat] == bestCount && cat != best:
			unique = false
		}
	}

	if bestCount == 0 || !unique {
		return domain.DefaultCategory
	}
	return best
}

// AICategorizer asks an external model to pick the category and validates the
// answer against the closed set. Anything else, including timeouts and labels
// outside the set, defers to the keyword classifier.
type AICategorizer struct {
	gen      ports.TextGenerator
	fallback *KeywordCategorizer
	guard    aiGuard
}

var _ ports.Categorizer = (*AICategorizer)(nil)

// NewAICategorizer wires a model-backed classifier with its keyword fallback.
func NewAICategorizer(gen ports.TextGenerator, timeout time.Duration, logger *slog.Logger) *AICategorizer {
	return &AICategorizer{
		gen:      gen,
		fallback: NewKeywordCategorizer(),
		guard:    newAIGuard(timeout, logger),
	}
}

// Categorize returns the model's label when it is one of the fixed
// categories, otherwise the keyword classifier decides.
func (c *AICategorizer) Categorize(ctx context.Context, title, body string) domain.Category {
	raw, ok := c.guard.attempt(ctx, "categorize", func(ctx context.Context) (string, error) {
		return c.gen.Generate(ctx, c.prompt(title, body))
	})
	if ok {
		line, _, _ := strings.Cut(raw, "\n")
		if cat, valid := domain.ParseCategory(stripLabel(line, "CATEGORY:")); valid {
			return cat
		}
		c.guard.logger.Warn("ai label outside category set, using fallback", "label", raw)
	}
	return c.fallback.Categorize(ctx, title, body)
}

func (c *AICategorizer) prompt(title, body string) string {
	return fmt.Sprintf(
		"Categorize this news article as exactly one of: Technology, Business, Sports. Respond with the category name only.\n\nTitle: %s\n\nArticle: %s",
		title, truncateForPrompt(body),
	)
}
