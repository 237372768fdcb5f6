// Package search wraps the third-party web-search API every pipeline stage
// depends on. All calls share one concurrency gate and a bounded retry policy
// so the upstream rate limit is respected no matter how many goroutines fan
// out above it.
package search

import "context"

// Hit is one search result row.
type Hit struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Highlights    []string `json:"highlights,omitempty"`
	Summary       string   `json:"summary,omitempty"`
}

// ContentPage is the fetched body for one hit URL, capped at the requested
// character count.
type ContentPage struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Summary string `json:"summary,omitempty"`
}

// Options tunes one search call.
type Options struct {
	IncludeDomains []string
	NumResults     int
	WantText       bool
	WantHighlights bool
}

// Searcher is the dependency surface the pipeline stages program against.
// A zero-hit response is an empty slice, not an error; callers broaden their
// query instead of failing.
type Searcher interface {
	Search(ctx context.Context, query string, opts Options) ([]Hit, error)
	FetchContents(ctx context.Context, urls []string, maxChars int) ([]ContentPage, error)
}
