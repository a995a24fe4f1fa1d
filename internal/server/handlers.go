package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"newsbytes/internal/domain"
)

const (
	defaultListLimit = 50
	statusListLimit  = 1000
	maxRequestBody   = 1 << 20
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scrapeRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.URLs == nil {
		s.writeError(w, http.StatusBadRequest, "urls is required")
		return
	}

	report := s.scraper.ScrapeBatch(r.Context(), req.URLs)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	articles, err := s.articles.List(r.Context(), category, limit)
	if err != nil {
		s.logger.Error("list articles failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load articles")
		return
	}
	s.writeJSON(w, http.StatusOK, articles)
}

type createArticleRequest struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Category   string `json:"category"`
	SourceURL  string `json:"source_url"`
	SourceName string `json:"source_name"`
	ImageURL   string `json:"image_url"`
	ImageData  string `json:"image_data"`
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	title := strings.TrimSpace(req.Title)
	summary := strings.TrimSpace(req.Summary)
	sourceURL := strings.TrimSpace(req.SourceURL)
	sourceName := strings.TrimSpace(req.SourceName)
	required := []struct {
		field string
		value string
	}{
		{"title", title},
		{"summary", summary},
		{"category", strings.TrimSpace(req.Category)},
		{"source_url", sourceURL},
		{"source_name", sourceName},
	}
	for _, f := range required {
		if f.value == "" {
			s.writeError(w, http.StatusBadRequest, f.field+" is required")
			return
		}
	}

	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "category must be one of: Technology, Business, Sports")
		return
	}

	if req.ImageURL != "" && req.ImageData != "" {
		s.writeError(w, http.StatusBadRequest, "image_url and image_data are mutually exclusive")
		return
	}

	article := domain.NewArticle(title, summary, category, sourceURL, sourceName)
	article.ImageURL = strings.TrimSpace(req.ImageURL)
	article.ImageData = strings.TrimSpace(req.ImageData)

	if err := s.articles.Insert(r.Context(), article); err != nil {
		s.logger.Error("create article failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save article")
		return
	}

	s.logger.Info("article created manually", "id", article.ID, "title", article.Title)
	s.writeJSON(w, http.StatusCreated, article)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.articles.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		s.logger.Error("get article failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load article")
		return
	}
	s.writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.articles.Delete(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		s.logger.Error("delete article failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to delete article")
		return
	}

	s.logger.Info("article deleted", "id", id)
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Article deleted"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"categories": domain.Categories(),
		"default":    domain.DefaultCategory,
	})
}

type statusCreateRequest struct {
	ClientName string `json:"client_name"`
}

func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusCreateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ClientName) == "" {
		s.writeError(w, http.StatusBadRequest, "client_name is required")
		return
	}

	check := domain.NewStatusCheck(strings.TrimSpace(req.ClientName))
	if err := s.status.InsertStatus(r.Context(), check); err != nil {
		s.logger.Error("create status check failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save status check")
		return
	}
	s.writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleListStatus(w http.ResponseWriter, r *http.Request) {
	checks, err := s.status.ListStatus(r.Context(), statusListLimit)
	if err != nil {
		s.logger.Error("list status checks failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load status checks")
		return
	}
	s.writeJSON(w, http.StatusOK, checks)
}
