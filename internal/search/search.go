package search

import "context"

// Result is one web search hit
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web search and returns at most max results
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Result, error)
}
