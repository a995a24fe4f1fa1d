package ports

import (
	"context"

	"newsbytes/internal/domain"
)

// PageFetcher downloads raw HTML for a single article URL.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// PageExtractor pulls title, body text and lead image out of fetched HTML.
type PageExtractor interface {
	Extract(html []byte, pageURL string) (domain.PageContent, error)
}

// Summarizer condenses article body text into the short admin panel summary.
type Summarizer interface {
	Summarize(ctx context.Context, body string) (string, error)
}

// Categorizer assigns one of the fixed categories to an article.
// Implementations never fail: anything ambiguous resolves to the default.
type Categorizer interface {
	Categorize(ctx context.Context, title, body string) domain.Category
}

// TextGenerator produces a completion for a prompt from an external model.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ArticleRepository persists articles for the admin panel feed.
type ArticleRepository interface {
	Insert(ctx context.Context, article domain.Article) error
	List(ctx context.Context, category string, limit int64) ([]domain.Article, error)
	GetByID(ctx context.Context, id string) (domain.Article, error)
	Delete(ctx context.Context, id string) error
}

// StatusRepository stores client heartbeat checks.
type StatusRepository interface {
	InsertStatus(ctx context.Context, check domain.StatusCheck) error
	ListStatus(ctx context.Context, limit int64) ([]domain.StatusCheck, error)
}
