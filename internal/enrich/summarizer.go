package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsbytes/internal/domain"
	"newsbytes/internal/ports"
)

// FallbackSummarizer builds the summary by truncating body text at a word
// boundary. It is the strategy of last resort and must always succeed on
// non-empty input.
type FallbackSummarizer struct {
	wordLimit int
}

var _ ports.Summarizer = (*FallbackSummarizer)(nil)

// NewFallbackSummarizer caps summaries at wordLimit words.
func NewFallbackSummarizer(wordLimit int) *FallbackSummarizer {
	if wordLimit <= 0 {
		wordLimit = 60
	}
	return &FallbackSummarizer{wordLimit: wordLimit}
}

// Summarize returns the first wordLimit words of body, with an ellipsis when
// the body was longer.
func (s *FallbackSummarizer) Summarize(_ context.Context, body string) (string, error) {
	summary := truncateWords(body, s.wordLimit)
	if summary == "" {
		return "", domain.ErrEmptyBody
	}
	return summary, nil
}

// AISummarizer asks an external model for the summary and silently degrades
// to truncation when the model times out, errors or produces unusable text.
type AISummarizer struct {
	gen       ports.TextGenerator
	fallback  *FallbackSummarizer
	guard     aiGuard
	wordLimit int
}

var _ ports.Summarizer = (*AISummarizer)(nil)

// NewAISummarizer wires a model-backed summarizer with its local fallback.
func NewAISummarizer(gen ports.TextGenerator, wordLimit int, timeout time.Duration, logger *slog.Logger) *AISummarizer {
	if wordLimit <= 0 {
		wordLimit = 60
	}
	return &AISummarizer{
		gen:       gen,
		fallback:  NewFallbackSummarizer(wordLimit),
		guard:     newAIGuard(timeout, logger),
		wordLimit: wordLimit,
	}
}

// Summarize prefers the model's summary, trimmed to the word limit. Any
// failure falls back to truncation; the article is summarized either way.
func (s *AISummarizer) Summarize(ctx context.Context, body string) (string, error) {
	raw, ok := s.guard.attempt(ctx, "summarize", func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, s.prompt(body))
	})
	if ok {
		if summary := truncateWords(stripLabel(raw, "SUMMARY:"), s.wordLimit); summary != "" {
			return summary, nil
		}
	}
	return s.fallback.Summarize(ctx, body)
}

func (s *AISummarizer) prompt(body string) string {
	return fmt.Sprintf(
		"Summarize the following news article in EXACTLY %d words (no more, no less). Respond with the summary text only.\n\nArticle: %s",
		s.wordLimit, truncateForPrompt(body),
	)
}
