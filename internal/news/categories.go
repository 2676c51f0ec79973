package news

import (
	"sort"
	"strings"
)

// TopCategory is the feed's catch-all bucket
const TopCategory = "top"

// GenericMockHeadline is used when a plain scan gets nothing from the feed
const GenericMockHeadline = "Breaking: Major earthquake reported in Japan."

// feedCategories maps our category names onto the feed's vocabulary
var feedCategories = map[string]string{
	"politics":      "politics",
	"health":        "health",
	"science":       "science",
	"technology":    "technology",
	"tech":          "technology",
	"business":      "business",
	"finance":       "business",
	"economy":       "business",
	"sports":        "sports",
	"entertainment": "entertainment",
	"environment":   "environment",
	"climate":       "environment",
	"world":         "world",
	"crime":         "crime",
	"disaster":      TopCategory,
	"crisis":        TopCategory,
}

// mockHeadlines holds one fixed headline per feed category
var mockHeadlines = map[string]string{
	"politics":      "Lawmakers unveil emergency funding bill after week of negotiations.",
	"health":        "Health officials report a new surge in seasonal flu cases.",
	"science":       "Scientists announce discovery of water ice on a distant exoplanet.",
	"technology":    "Major tech firm confirms data breach affecting millions of users.",
	"business":      "Markets tumble as central bank signals further rate hikes.",
	"sports":        "Star striker ruled out of final after training ground injury.",
	"entertainment": "Blockbuster sequel breaks opening weekend box office record.",
	"environment":   "Record heat wave triggers wildfire warnings across the region.",
	"world":         "Leaders gather for emergency summit on regional conflict.",
	"crime":         "Police arrest suspect after overnight bank robbery downtown.",
	TopCategory:     GenericMockHeadline,
}

// FeedCategory translates a category into the feed's vocabulary.
// Unknown categories fall back to "top".
func FeedCategory(category string) string {
	if c, ok := feedCategories[strings.ToLower(strings.TrimSpace(category))]; ok {
		return c
	}
	return TopCategory
}

// MockHeadline returns the fixed fallback headline for a category
func MockHeadline(category string) string {
	return mockHeadlines[FeedCategory(category)]
}

// Categories lists the accepted category names
func Categories() []string {
	out := make([]string, 0, len(feedCategories))
	for k := range feedCategories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
