package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsbytes/internal/config"
	"newsbytes/internal/enrich"
	"newsbytes/internal/infrastructure/llm"
	"newsbytes/internal/infrastructure/scraper"
	"newsbytes/internal/infrastructure/storage"
	"newsbytes/internal/logging"
	"newsbytes/internal/ports"
	"newsbytes/internal/server"
	"newsbytes/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to adapters, use cases and the HTTP server.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	repo   *storage.MongoRepository
	server *http.Server
}

// New connects storage and assembles the scrape pipeline behind the HTTP API.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repo, err := storage.NewMongoRepository(ctx, cfg.Database, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}

	fetcher := scraper.NewFetcher(cfg.Scraper, baseLogger.With("component", "fetcher"))
	extractor := scraper.NewExtractor()

	var (
		summarizer  ports.Summarizer
		categorizer ports.Categorizer
	)
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gen := llm.NewChatGPTClient(cfg.AI)
		summarizer = enrich.NewAISummarizer(gen, cfg.Scraper.SummaryWords, cfg.AI.Timeout(), baseLogger.With("component", "summarizer"))
		categorizer = enrich.NewAICategorizer(gen, cfg.AI.Timeout(), baseLogger.With("component", "categorizer"))
		baseLogger.Info("AI enrichment enabled", "model", cfg.AI.Model)
	} else {
		if cfg.AI.Enabled {
			baseLogger.Warn("AI enrichment enabled without an API key, using fallbacks")
		}
		summarizer = enrich.NewFallbackSummarizer(cfg.Scraper.SummaryWords)
		categorizer = enrich.NewKeywordCategorizer()
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:     fetcher,
		Extractor:   extractor,
		Summarizer:  summarizer,
		Categorizer: categorizer,
		Repository:  repo,
		Logger:      baseLogger.With("component", "pipeline"),
		Workers:     cfg.Scraper.Workers,
		HostRate:    cfg.Scraper.HostRatePerSec,
	})

	srv := server.New(repo, repo, pipeline, baseLogger.With("component", "http"))

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		repo:   repo,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests and
// closes the storage connection.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	case err := <-errCh:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown http server: %w", err)
	}
	if err := a.repo.Close(shutdownCtx); err != nil {
		a.logger.Error("close storage failed", "error", err)
	}
	return runErr
}
