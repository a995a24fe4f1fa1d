package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"newsbytes/internal/domain"
	"newsbytes/internal/ports"
)

// minBodyChars is the shortest body text accepted as a real article.
const minBodyChars = 100

var (
	titleSelectors = []string{"h1", "h1.article-title", "h1.entry-title", "meta[property='og:title']"}
	bodySelectors  = []string{"article", ".article-content", ".post-content", ".entry-content", "main"}
)

// Extractor recovers title, body text and lead image from article HTML using
// common news markup conventions, with a readability pass as the last resort
// for pages that structure their content unusually.
type Extractor struct{}

var _ ports.PageExtractor = (*Extractor)(nil)

// NewExtractor builds a stateless extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses html and pulls out the page content. pageURL anchors
// relative image links and names the source.
func (e *Extractor) Extract(html []byte, pageURL string) (domain.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.PageContent{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	title := extractTitle(doc)
	if title == "" {
		return domain.PageContent{}, fmt.Errorf("extract %s: %w", pageURL, domain.ErrNoTitle)
	}

	body := extractBody(doc)
	if body == "" && base != nil {
		body = readabilityBody(html, base)
	}
	if body == "" {
		return domain.PageContent{}, fmt.Errorf("extract %s: %w", pageURL, domain.ErrEmptyBody)
	}

	return domain.PageContent{
		Title:      title,
		Body:       body,
		ImageURL:   extractImage(doc, base),
		SourceName: sourceName(base),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if content, ok := node.Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
			continue
		}
		if trimmed := strings.TrimSpace(node.Text()); trimmed != "" {
			return trimmed
		}
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractBody(doc *goquery.Document) string {
	for _, sel := range bodySelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if text := paragraphText(container); utf8.RuneCountInString(text) > minBodyChars {
			return text
		}
	}

	// Last structural fallback: every paragraph on the page.
	if text := paragraphText(doc.Selection); utf8.RuneCountInString(text) > minBodyChars {
		return text
	}
	return ""
}

// paragraphText joins the text of all <p> descendants with single spaces.
func paragraphText(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.Join(strings.Fields(p.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func readabilityBody(html []byte, base *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(html), base)
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(article.TextContent), " ")
	if utf8.RuneCountInString(text) > minBodyChars {
		return text
	}
	return ""
}

func extractImage(doc *goquery.Document, base *url.URL) string {
	if content, ok := doc.Find("meta[property='og:image']").First().Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	if content, ok := doc.Find("meta[name='twitter:image']").First().Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	if src, ok := doc.Find("article img").First().Attr("src"); ok {
		return absoluteURL(base, src)
	}
	return ""
}

func absoluteURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	if base == nil {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}

// sourceName derives a display name from the page host: strip the www
// prefix, take the first label and capitalize it.
func sourceName(base *url.URL) string {
	if base == nil {
		return ""
	}
	host := strings.TrimPrefix(base.Hostname(), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}
