package enrich

import (
	"strings"
	"unicode"

	"newsbytes/internal/domain"
)

// categoryKeywords drives the fallback classifier. Tokens are lowercase and
// matched whole, so "ai" matches "AI" but never "said".
var categoryKeywords = map[domain.Category][]string{
	domain.CategoryTechnology: {
		"ai", "software", "app", "apps", "startup", "tech", "technology",
		"chip", "chips", "semiconductor", "robot", "robotics", "cloud",
		"cybersecurity", "smartphone", "crypto", "blockchain", "algorithm",
		"internet", "developer", "gadget",
	},
	domain.CategoryBusiness: {
		"market", "markets", "stock", "stocks", "shares", "economy",
		"economic", "revenue", "profit", "earnings", "investor", "investors",
		"bank", "banking", "merger", "acquisition", "ipo", "inflation",
		"trade", "ceo", "quarterly",
	},
	domain.CategorySports: {
		"cricket", "football", "soccer", "basketball", "tennis", "match",
		"player", "players", "goal", "tournament", "championship", "league",
		"coach", "stadium", "olympics", "score", "season", "team", "cup",
		"innings", "wicket",
	},
}

var keywordIndex = buildKeywordIndex()

func buildKeywordIndex() map[string]domain.Category {
	index := make(map[string]domain.Category)
	for cat, words := range categoryKeywords {
		for _, w := range words {
			index[w] = cat
		}
	}
	return index
}

// scoreKeywords counts keyword hits per category across the given text.
func scoreKeywords(text string) map[domain.Category]int {
	counts := make(map[domain.Category]int, len(categoryKeywords))
	for _, token := range tokenize(text) {
		if cat, ok := keywordIndex[token]; ok {
			counts[cat]++
		}
	}
	return counts
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
