// Package enrich turns extracted article text into the short summary and
// category shown in the admin panel. AI-backed strategies run under a
// deadline and hand over to local heuristics on any failure, so enrichment
// can degrade but never fails a scrape.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// promptBodyLimit caps how much article text goes into a model prompt.
const promptBodyLimit = 2000

// aiGuard is the one place that decides whether a model response is usable.
// Both the summarizer and the categorizer route their calls through it.
type aiGuard struct {
	timeout time.Duration
	logger  *slog.Logger
}

func newAIGuard(timeout time.Duration, logger *slog.Logger) aiGuard {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return aiGuard{timeout: timeout, logger: logger}
}

// attempt runs fn under the guard's deadline and absorbs every failure.
// The boolean reports whether out is usable; callers fall back when it is not.
func (g aiGuard) attempt(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := fn(ctx)
	if err != nil {
		g.logger.Warn("ai call failed, using fallback", "op", op, "error", err)
		return "", false
	}
	out = strings.TrimSpace(out)
	if out == "" {
		g.logger.Warn("ai call returned empty output, using fallback", "op", op)
		return "", false
	}
	return out, true
}

// truncateForPrompt keeps prompts bounded regardless of article length.
func truncateForPrompt(body string) string {
	runes := []rune(body)
	if len(runes) <= promptBodyLimit {
		return body
	}
	return string(runes[:promptBodyLimit])
}

// stripLabel removes a leading field label the model may echo back,
// such as "SUMMARY:".
func stripLabel(text, label string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= len(label) && strings.EqualFold(trimmed[:len(label)], label) {
		trimmed = strings.TrimSpace(trimmed[len(label):])
	}
	return trimmed
}

// truncateWords caps text at limit words, appending an ellipsis when trimmed.
func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "..."
}
