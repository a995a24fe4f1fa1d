package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"newsbytes/internal/domain"
	"newsbytes/internal/enrich"
)

type fetcherFunc func(ctx context.Context, pageURL string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	return f(ctx, pageURL)
}

type extractorFunc func(html []byte, pageURL string) (domain.PageContent, error)

func (f extractorFunc) Extract(html []byte, pageURL string) (domain.PageContent, error) {
	return f(html, pageURL)
}

type summarizerFunc func(ctx context.Context, body string) (string, error)

func (f summarizerFunc) Summarize(ctx context.Context, body string) (string, error) {
	return f(ctx, body)
}

type categorizerFunc func(ctx context.Context, title, body string) domain.Category

func (f categorizerFunc) Categorize(ctx context.Context, title, body string) domain.Category {
	return f(ctx, title, body)
}

// memRepo is an in-memory ports.ArticleRepository good enough for pipeline tests.
type memRepo struct {
	mu        sync.Mutex
	inserted  []domain.Article
	insertErr error
}

func (r *memRepo) Insert(_ context.Context, article domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, article)
	return nil
}

func (r *memRepo) List(context.Context, string, int64) ([]domain.Article, error) {
	return nil, nil
}

func (r *memRepo) GetByID(context.Context, string) (domain.Article, error) {
	return domain.Article{}, domain.ErrNotFound
}

func (r *memRepo) Delete(context.Context, string) error { return nil }

func passthroughDeps(repo *memRepo) PipelineDeps {
	return PipelineDeps{
		Fetcher: fetcherFunc(func(_ context.Context, pageURL string) ([]byte, error) {
			return []byte("<html>" + pageURL + "</html>"), nil
		}),
		Extractor: extractorFunc(func(_ []byte, pageURL string) (domain.PageContent, error) {
			return domain.PageContent{
				Title:      "Title for " + pageURL,
				Body:       "Body text for " + pageURL,
				SourceName: "Example",
			}, nil
		}),
		Summarizer: summarizerFunc(func(_ context.Context, body string) (string, error) {
			return "Summary: " + body, nil
		}),
		Categorizer: categorizerFunc(func(_ context.Context, _, _ string) domain.Category {
			return domain.CategoryTechnology
		}),
		Repository: repo,
		Workers:    4,
		HostRate:   1000,
	}
}

func TestScrapeBatchAllSucceed(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	p := NewPipeline(passthroughDeps(repo))

	urls := []string{
		"https://a.example.com/1",
		"https://b.example.com/2",
		"https://c.example.com/3",
	}
	report := p.ScrapeBatch(context.Background(), urls)

	if !report.Success {
		t.Fatal("report should always be successful")
	}
	if report.ScrapedCount != 3 || report.FailedCount != 0 {
		t.Fatalf("counts = %d/%d, want 3/0", report.ScrapedCount, report.FailedCount)
	}
	if len(report.Articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(report.Articles))
	}
	if report.Message != "Successfully scraped 3 article(s)." {
		t.Fatalf("unexpected message: %q", report.Message)
	}
	if len(repo.inserted) != 3 {
		t.Fatalf("expected 3 persisted articles, got %d", len(repo.inserted))
	}

	seen := map[string]bool{}
	for _, a := range report.Articles {
		if a.ID == "" {
			t.Fatal("article missing ID")
		}
		if a.PublishedAt.IsZero() || a.CreatedAt.IsZero() {
			t.Fatal("article missing timestamps")
		}
		if a.Category != domain.CategoryTechnology {
			t.Fatalf("unexpected category: %q", a.Category)
		}
		seen[a.SourceURL] = true
	}
	for _, u := range urls {
		if !seen[u] {
			t.Fatalf("no article for %s", u)
		}
	}
}

func TestScrapeBatchMixedOutcomes(t *testing.T) {
	t.Parallel()

	blockedURL := "https://blocked.example.com/article"
	repo := &memRepo{}
	deps := passthroughDeps(repo)
	deps.Fetcher = fetcherFunc(func(_ context.Context, pageURL string) ([]byte, error) {
		if pageURL == blockedURL {
			return nil, fmt.Errorf("fetch %s: %w", pageURL, &domain.BlockedError{Status: 403})
		}
		return []byte("<html>ok</html>"), nil
	})

	p := NewPipeline(deps)
	report := p.ScrapeBatch(context.Background(), []string{
		"https://ok.example.com/article",
		blockedURL,
	})

	if !report.Success {
		t.Fatal("batch result should stay successful despite per-URL failure")
	}
	if report.ScrapedCount != 1 || report.FailedCount != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", report.ScrapedCount, report.FailedCount)
	}
	if len(report.FailedURLs) != 1 || report.FailedURLs[0] != blockedURL {
		t.Fatalf("unexpected failed urls: %v", report.FailedURLs)
	}
	if got := report.ErrorDetails[blockedURL]; got != "Blocked (403)" {
		t.Fatalf("error detail = %q, want %q", got, "Blocked (403)")
	}
	if report.Message != "Successfully scraped 1 article(s). 1 URL(s) failed." {
		t.Fatalf("unexpected message: %q", report.Message)
	}
}

func TestScrapeBatchClassifiesFailures(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	deps := passthroughDeps(repo)
	deps.Fetcher = fetcherFunc(func(_ context.Context, pageURL string) ([]byte, error) {
		switch {
		case strings.Contains(pageURL, "timeout"):
			return nil, fmt.Errorf("fetch %s: %w", pageURL, domain.ErrFetchTimeout)
		case strings.Contains(pageURL, "nowhere"):
			return nil, fmt.Errorf("fetch %s: %w", pageURL, domain.ErrUnreachable)
		default:
			return []byte("<html>ok</html>"), nil
		}
	})
	deps.Extractor = extractorFunc(func(_ []byte, pageURL string) (domain.PageContent, error) {
		switch {
		case strings.Contains(pageURL, "untitled"):
			return domain.PageContent{}, fmt.Errorf("extract %s: %w", pageURL, domain.ErrNoTitle)
		case strings.Contains(pageURL, "hollow"):
			return domain.PageContent{}, fmt.Errorf("extract %s: %w", pageURL, domain.ErrEmptyBody)
		default:
			return domain.PageContent{Title: "T", Body: "B", SourceName: "S"}, nil
		}
	})

	p := NewPipeline(deps)
	report := p.ScrapeBatch(context.Background(), []string{
		"https://timeout.example.com/a",
		"https://nowhere.example.com/b",
		"https://untitled.example.com/c",
		"https://hollow.example.com/d",
	})

	want := map[string]string{
		"https://timeout.example.com/a":  "Timeout",
		"https://nowhere.example.com/b":  "Unreachable",
		"https://untitled.example.com/c": "No title found",
		"https://hollow.example.com/d":   "Empty body",
	}
	if report.FailedCount != len(want) {
		t.Fatalf("failed count = %d, want %d", report.FailedCount, len(want))
	}
	for u, reason := range want {
		if got := report.ErrorDetails[u]; got != reason {
			t.Fatalf("reason for %s = %q, want %q", u, got, reason)
		}
	}
}

func TestScrapeBatchStorageFailure(t *testing.T) {
	t.Parallel()

	repo := &memRepo{insertErr: fmt.Errorf("write concern violated")}
	p := NewPipeline(passthroughDeps(repo))

	report := p.ScrapeBatch(context.Background(), []string{"https://ok.example.com/a"})

	if report.FailedCount != 1 {
		t.Fatalf("failed count = %d, want 1", report.FailedCount)
	}
	if got := report.ErrorDetails["https://ok.example.com/a"]; got != "Internal error" {
		t.Fatalf("storage failures must not leak raw errors, got %q", got)
	}
}

func TestScrapeBatchEmptyInput(t *testing.T) {
	t.Parallel()

	p := NewPipeline(passthroughDeps(&memRepo{}))
	report := p.ScrapeBatch(context.Background(), nil)

	if !report.Success {
		t.Fatal("empty batch should succeed")
	}
	if report.ScrapedCount != 0 || report.FailedCount != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", report.ScrapedCount, report.FailedCount)
	}
	if report.Articles == nil || report.FailedURLs == nil || report.ErrorDetails == nil {
		t.Fatal("report collections must be initialized")
	}
	if report.Message != "Successfully scraped 0 article(s)." {
		t.Fatalf("unexpected message: %q", report.Message)
	}
}

func TestScrapeBatchCountsDuplicates(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	p := NewPipeline(passthroughDeps(repo))

	url := "https://dup.example.com/story"
	report := p.ScrapeBatch(context.Background(), []string{url, url})

	if report.ScrapedCount != 2 {
		t.Fatalf("scraped count = %d, want one entry per input URL", report.ScrapedCount)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(repo.inserted))
	}
	if repo.inserted[0].ID == repo.inserted[1].ID {
		t.Fatal("duplicate URLs must still get distinct article IDs")
	}
}

// hangingGenerator blocks until the caller's deadline expires.
type hangingGenerator struct{}

func (hangingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestScrapeBatchAIHangBehavesLikeFallback(t *testing.T) {
	t.Parallel()

	title := "Cup final goes to penalties"
	body := strings.Repeat("The match swung again as a player scored and the stadium roared. ", 10)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	run := func(deps PipelineDeps) domain.Article {
		repo := &memRepo{}
		deps.Repository = repo
		deps.Fetcher = fetcherFunc(func(context.Context, string) ([]byte, error) {
			return []byte("<html>irrelevant</html>"), nil
		})
		deps.Extractor = extractorFunc(func([]byte, string) (domain.PageContent, error) {
			return domain.PageContent{Title: title, Body: body, SourceName: "Example"}, nil
		})
		deps.Workers = 1
		deps.HostRate = 1000

		report := NewPipeline(deps).ScrapeBatch(context.Background(), []string{"https://example.com/final"})
		if report.ScrapedCount != 1 || report.FailedCount != 0 {
			t.Fatalf("counts = %d/%d, want 1/0: a hung model must not fail the URL", report.ScrapedCount, report.FailedCount)
		}
		if len(repo.inserted) != 1 {
			t.Fatalf("expected 1 persisted article, got %d", len(repo.inserted))
		}
		return repo.inserted[0]
	}

	fallbackOnly := run(PipelineDeps{
		Summarizer:  enrich.NewFallbackSummarizer(60),
		Categorizer: enrich.NewKeywordCategorizer(),
		Logger:      quiet,
	})
	aiHung := run(PipelineDeps{
		Summarizer:  enrich.NewAISummarizer(hangingGenerator{}, 60, 20*time.Millisecond, quiet),
		Categorizer: enrich.NewAICategorizer(hangingGenerator{}, 20*time.Millisecond, quiet),
		Logger:      quiet,
	})

	if aiHung.Summary != fallbackOnly.Summary {
		t.Fatalf("summary after AI hang = %q, want fallback summary %q", aiHung.Summary, fallbackOnly.Summary)
	}
	if aiHung.Category != fallbackOnly.Category {
		t.Fatalf("category after AI hang = %q, want %q", aiHung.Category, fallbackOnly.Category)
	}
	if got := len(strings.Fields(aiHung.Summary)); got > 60 {
		t.Fatalf("summary has %d words, want at most 60", got)
	}
}

func TestHostLimiterSpacesSameHost(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	deps := passthroughDeps(repo)
	deps.HostRate = 50 // 20ms between requests to one host
	p := NewPipeline(deps)

	start := time.Now()
	report := p.ScrapeBatch(context.Background(), []string{
		"https://same.example.com/1",
		"https://same.example.com/2",
	})
	elapsed := time.Since(start)

	if report.ScrapedCount != 2 {
		t.Fatalf("scraped count = %d, want 2", report.ScrapedCount)
	}
	if elapsed < 15*time.Millisecond {
		t.Fatalf("second request should have been rate limited, batch took %v", elapsed)
	}
}
