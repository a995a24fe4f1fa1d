package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsbytes/internal/domain"
)

func TestKeywordCategorizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		body  string
		want  domain.Category
	}{
		{
			name:  "technology",
			title: "Startup ships new AI software",
			body:  "The startup launched an app built on a novel algorithm for cloud workloads.",
			want:  domain.CategoryTechnology,
		},
		{
			name:  "sports",
			title: "Cup final goes to extra time",
			body:  "The match turned when the coach sent on a fresh player and the stadium erupted at the late goal.",
			want:  domain.CategorySports,
		},
		{
			name:  "business",
			title: "Shares rally on earnings",
			body:  "Investors pushed the stock higher after quarterly revenue and profit beat the market consensus.",
			want:  domain.CategoryBusiness,
		},
		{
			name:  "case insensitive",
			title: "AI CHIPS power new ROBOT",
			body:  "TECH everywhere.",
			want:  domain.CategoryTechnology,
		},
		{
			name:  "tie resolves to default",
			title: "Football club stock",
			body:  "The match moved the market.",
			want:  domain.CategoryBusiness,
		},
		{
			name:  "no keywords resolves to default",
			title: "A quiet day",
			body:  "Nothing in particular happened anywhere.",
			want:  domain.CategoryBusiness,
		},
		{
			name:  "substring does not match",
			title: "He said maintenance",
			body:  "Nobody mentioned anything relevant.",
			want:  domain.CategoryBusiness,
		},
	}

	c := NewKeywordCategorizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := c.Categorize(context.Background(), tt.title, tt.body); got != tt.want {
				t.Fatalf("Categorize(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestAICategorizerValidLabel(t *testing.T) {
	t.Parallel()

	// Text keyword-scores as Technology; the model label must win.
	gen := &fakeGenerator{response: "Sports"}
	c := NewAICategorizer(gen, time.Second, nil)

	got := c.Categorize(context.Background(), "New AI software", "A startup shipped an app.")
	if got != domain.CategorySports {
		t.Fatalf("Categorize = %q, want Sports from the model", got)
	}
}

func TestAICategorizerDecoratedLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		response string
		want     domain.Category
	}{
		{response: "CATEGORY: Technology.", want: domain.CategoryTechnology},
		{response: "business", want: domain.CategoryBusiness},
		{response: "\"Sports\"", want: domain.CategorySports},
		{response: "Technology\nbecause it mentions software", want: domain.CategoryTechnology},
	}

	for _, tt := range tests {
		gen := &fakeGenerator{response: tt.response}
		c := NewAICategorizer(gen, time.Second, nil)
		if got := c.Categorize(context.Background(), "title", "body"); got != tt.want {
			t.Fatalf("Categorize with response %q = %q, want %q", tt.response, got, tt.want)
		}
	}
}

func TestAICategorizerInvalidLabelFallsBack(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: "Entertainment"}
	c := NewAICategorizer(gen, time.Second, nil)

	got := c.Categorize(context.Background(), "Startup ships AI software", "A new app and algorithm.")
	if got != domain.CategoryTechnology {
		t.Fatalf("invalid label should fall back to keywords, got %q", got)
	}
}

func TestAICategorizerErrorFallsBack(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("model unavailable")}
	c := NewAICategorizer(gen, time.Second, nil)

	got := c.Categorize(context.Background(), "Cup final tonight", "The match and the league title.")
	if got != domain.CategorySports {
		t.Fatalf("model error should fall back to keywords, got %q", got)
	}
}

func TestAICategorizerTimeoutFallsBack(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: "Technology", delay: 200 * time.Millisecond}
	c := NewAICategorizer(gen, 10*time.Millisecond, nil)

	got := c.Categorize(context.Background(), "No keywords here", "Plain text.")
	if got != domain.DefaultCategory {
		t.Fatalf("timeout should fall back, got %q", got)
	}
}
