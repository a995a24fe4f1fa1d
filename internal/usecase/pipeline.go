package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"newsbytes/internal/domain"
	"newsbytes/internal/ports"
)

// PipelineDeps wires all driven adapters into the scrape pipeline.
type PipelineDeps struct {
	Fetcher     ports.PageFetcher
	Extractor   ports.PageExtractor
	Summarizer  ports.Summarizer
	Categorizer ports.Categorizer
	Repository  ports.ArticleRepository
	Logger      *slog.Logger

	// Workers bounds concurrent URL processing; HostRate caps requests per
	// second against any single host.
	Workers  int
	HostRate float64
}

// Pipeline implements the batch scrape workflow: fetch, extract, enrich and
// persist each URL independently, then report per-URL outcomes.
type Pipeline struct {
	fetcher     ports.PageFetcher
	extractor   ports.PageExtractor
	summarizer  ports.Summarizer
	categorizer ports.Categorizer
	repository  ports.ArticleRepository
	logger      *slog.Logger
	workers     int
	limiters    *hostLimiters
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := deps.Workers
	if workers < 1 {
		workers = 4
	}
	return &Pipeline{
		fetcher:     deps.Fetcher,
		extractor:   deps.Extractor,
		summarizer:  deps.Summarizer,
		categorizer: deps.Categorizer,
		repository:  deps.Repository,
		logger:      logger,
		workers:     workers,
		limiters:    newHostLimiters(deps.HostRate),
	}
}

// ScrapeBatch processes every URL and aggregates the outcome. One URL failing
// never aborts the batch: it lands in FailedURLs with a classified reason
// while the rest continue.
func (p *Pipeline) ScrapeBatch(ctx context.Context, urls []string) domain.ScrapeReport {
	report := domain.ScrapeReport{
		Success:      true,
		Articles:     []domain.Article{},
		FailedURLs:   []string{},
		ErrorDetails: map[string]string{},
	}

	workers := p.workers
	if workers > len(urls) {
		workers = len(urls)
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range jobs {
				article, err := p.processURL(ctx, pageURL)

				mu.Lock()
				if err != nil {
					report.FailedCount++
					report.FailedURLs = append(report.FailedURLs, pageURL)
					report.ErrorDetails[pageURL] = domain.FailureReason(err)
				} else {
					report.ScrapedCount++
					report.Articles = append(report.Articles, article)
				}
				mu.Unlock()
			}
		}()
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)
	wg.Wait()

	report.Message = batchMessage(report.ScrapedCount, report.FailedCount)
	return report
}

func (p *Pipeline) processURL(ctx context.Context, pageURL string) (domain.Article, error) {
	if err := p.limiters.wait(ctx, pageURL); err != nil {
		return domain.Article{}, fmt.Errorf("host limiter: %w", err)
	}

	html, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		p.logger.Warn("fetch failed", "url", pageURL, "error", err)
		return domain.Article{}, err
	}

	page, err := p.extractor.Extract(html, pageURL)
	if err != nil {
		p.logger.Warn("extraction failed", "url", pageURL, "error", err)
		return domain.Article{}, err
	}

	summary, err := p.summarizer.Summarize(ctx, page.Body)
	if err != nil {
		p.logger.Warn("summarization failed", "url", pageURL, "error", err)
		return domain.Article{}, err
	}

	category := p.categorizer.Categorize(ctx, page.Title, page.Body)

	article := domain.NewArticle(page.Title, summary, category, pageURL, page.SourceName)
	article.ImageURL = page.ImageURL

	if err := p.repository.Insert(ctx, article); err != nil {
		p.logger.Error("persist article failed", "url", pageURL, "error", err)
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}

	p.logger.Info("scraped article", "url", pageURL, "title", article.Title, "category", category)
	return article, nil
}

func batchMessage(scraped, failed int) string {
	message := fmt.Sprintf("Successfully scraped %d article(s).", scraped)
	if failed > 0 {
		message += fmt.Sprintf(" %d URL(s) failed.", failed)
	}
	return message
}

// hostLimiters hands out one token-bucket limiter per target host, so a batch
// hammering a single site spaces its requests while mixed batches proceed in
// parallel.
type hostLimiters struct {
	mu      sync.Mutex
	perHost map[string]*rate.Limiter
	limit   rate.Limit
}

func newHostLimiters(perSecond float64) *hostLimiters {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &hostLimiters{
		perHost: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
	}
}

func (h *hostLimiters) wait(ctx context.Context, rawURL string) error {
	host := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Hostname() != "" {
		host = parsed.Hostname()
	}

	h.mu.Lock()
	limiter, ok := h.perHost[host]
	if !ok {
		limiter = rate.NewLimiter(h.limit, 1)
		h.perHost[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
