package server

import (
	"context"
	"log/slog"
	"net/http"

	"newsbytes/internal/domain"
	"newsbytes/internal/ports"
)

// batchScraper runs a scrape batch and reports per-URL outcomes.
type batchScraper interface {
	ScrapeBatch(ctx context.Context, urls []string) domain.ScrapeReport
}

// Server exposes the admin panel HTTP API.
type Server struct {
	articles ports.ArticleRepository
	status   ports.StatusRepository
	scraper  batchScraper
	logger   *slog.Logger
}

// New wires repositories and the scrape pipeline into the API surface.
func New(articles ports.ArticleRepository, status ports.StatusRepository, scraper batchScraper, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		articles: articles,
		status:   status,
		scraper:  scraper,
		logger:   logger,
	}
}

// Router builds the route table under /api, wrapped with request logging
// and permissive CORS for the admin frontend.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/{$}", s.handleRoot)
	mux.HandleFunc("GET /api/healthz", s.handleHealthz)

	mux.HandleFunc("POST /api/scrape", s.handleScrape)

	mux.HandleFunc("GET /api/articles", s.handleListArticles)
	mux.HandleFunc("POST /api/articles", s.handleCreateArticle)
	mux.HandleFunc("GET /api/articles/{id}", s.handleGetArticle)
	mux.HandleFunc("DELETE /api/articles/{id}", s.handleDeleteArticle)

	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/status", s.handleListStatus)
	mux.HandleFunc("POST /api/status", s.handleCreateStatus)

	return s.withRequestLog(withCORS(mux))
}
