package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Category labels an article with one of the admin panel's fixed sections.
type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryBusiness   Category = "Business"
	CategorySports     Category = "Sports"
)

// DefaultCategory is assigned whenever classification cannot pick a clear winner.
const DefaultCategory = CategoryBusiness

// Categories returns the closed set of valid categories in display order.
func Categories() []Category {
	return []Category{CategoryTechnology, CategoryBusiness, CategorySports}
}

// ParseCategory matches s against the closed category set, ignoring case and
// surrounding whitespace or punctuation. ok is false for anything outside the set.
func ParseCategory(s string) (Category, bool) {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, c := range Categories() {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Article is a core entity describing a single news story shown in the admin panel.
// ImageURL and ImageData are mutually exclusive: scraped articles carry a remote
// URL, manually posted articles may carry a base64 payload instead.
type Article struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Summary     string    `bson:"summary" json:"summary"`
	Category    Category  `bson:"category" json:"category"`
	SourceURL   string    `bson:"source_url" json:"source_url"`
	SourceName  string    `bson:"source_name" json:"source_name"`
	ImageURL    string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ImageData   string    `bson:"image_data,omitempty" json:"image_data,omitempty"`
	PublishedAt time.Time `bson:"published_at" json:"published_at"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// NewArticle assembles an article with a fresh ID and current timestamps.
func NewArticle(title, summary string, category Category, sourceURL, sourceName string) Article {
	now := time.Now().UTC()
	return Article{
		ID:          uuid.NewString(),
		Title:       title,
		Summary:     summary,
		Category:    category,
		SourceURL:   sourceURL,
		SourceName:  sourceName,
		PublishedAt: now,
		CreatedAt:   now,
	}
}

// PageContent is what the extractor recovers from a fetched HTML document.
type PageContent struct {
	Title      string
	Body       string
	ImageURL   string
	SourceName string
}

// StatusCheck records a client heartbeat against the service.
type StatusCheck struct {
	ID         string    `bson:"_id" json:"id"`
	ClientName string    `bson:"client_name" json:"client_name"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

// NewStatusCheck stamps a heartbeat for the named client.
func NewStatusCheck(clientName string) StatusCheck {
	return StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
}

// ScrapeReport aggregates the outcome of one batch scrape request.
// Every input URL lands either in Articles or in FailedURLs with a reason.
type ScrapeReport struct {
	Success      bool              `json:"success"`
	ScrapedCount int               `json:"scraped_count"`
	FailedCount  int               `json:"failed_count"`
	Articles     []Article         `json:"articles"`
	FailedURLs   []string          `json:"failed_urls"`
	ErrorDetails map[string]string `json:"error_details"`
	Message      string            `json:"message"`
}
