package discovery

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/arun3676/agentception/internal/roles"
	"github.com/arun3676/agentception/internal/search"
)

// fakeSearcher replays scripted responses in call order and records every
// query for assertions.
type fakeSearcher struct {
	mu        sync.Mutex
	responses [][]search.Hit
	pages     []search.ContentPage
	queries   []string
	opts      []search.Options
}

func (f *fakeSearcher) Search(_ context.Context, query string, opts search.Options) ([]search.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.opts = append(f.opts, opts)
	if len(f.responses) == 0 {
		return nil, nil
	}
	hits := f.responses[0]
	f.responses = f.responses[1:]
	return hits, nil
}

func (f *fakeSearcher) FetchContents(_ context.Context, urls []string, _ int) ([]search.ContentPage, error) {
	return f.pages, nil
}

func TestDiscover_ExtractsRanksAndDedupes(t *testing.T) {
	hits := []search.Hit{
		{URL: "https://www.producthunt.com/posts/acme", Title: "Acme - AI agents | Product Hunt"},
		{URL: "https://www.ycombinator.com/companies/beta", Title: "Beta | Y Combinator"},
		{URL: "https://wellfound.com/company/acme", Title: "Acme - Jobs | Wellfound"},
		{URL: "https://techcrunch.com/2026/01/gamma", Title: "Gamma: the inference startup"},
		{URL: "https://delta.ai/blog/hello", Title: "Delta – careers"},
		{URL: "https://crunchbase.com/organization/eps", Title: "Eps | Crunchbase"},
	}
	searcher := &fakeSearcher{
		responses: [][]search.Hit{
			hits,
			{{URL: "https://beta.dev/home", Title: "Beta"}},                          // refinement for Beta
			{{URL: "https://www.ycombinator.com/companies/eps", Title: "Eps | YC"}}, // refinement for Eps fails
		},
		pages: []search.ContentPage{
			{URL: hits[0].URL, Title: hits[0].Title, Text: "We build llm and rag agents. Visit https://acme.ai/ now"},
			{URL: hits[1].URL, Title: hits[1].Title, Text: "llm tooling for teams"},
			{URL: hits[2].URL, Title: hits[2].Title, Text: "Acme is hiring. https://www.acme.ai"},
			{URL: hits[3].URL, Title: hits[3].Title, Text: "inference on pytorch clusters https://gamma.ai"},
			{URL: hits[4].URL, Title: hits[4].Title, Text: "llm infrastructure for enterprises"},
			{URL: hits[5].URL, Title: hits[5].Title, Text: "stealth company, no site yet"},
		},
	}

	d, err := NewDiscoverer(Config{Searcher: searcher, Roles: roles.Default()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := d.Discover(context.Background(), "Austin", "ai engineer", DepthStandard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantNames := []string{"Acme", "Gamma", "Beta", "Delta", "Eps"}
	if len(got) != len(wantNames) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(wantNames), len(got), got)
	}
	for i, name := range wantNames {
		if got[i].Name != name {
			t.Errorf("rank %d: got %q, want %q", i, got[i].Name, name)
		}
	}

	// Keyword fallback scoring: 20 base + 15 per keyword, plus source bonus.
	wantScores := []float64{51.0, 50.0, 35.8, 35.0, 20.0}
	for i, want := range wantScores {
		if math.Abs(got[i].Score-want) > 1e-9 {
			t.Errorf("rank %d (%s): score %v, want %v", i, got[i].Name, got[i].Score, want)
		}
	}

	// First extraction wins: Acme was seen on Product Hunt before Wellfound.
	if got[0].Homepage != "https://acme.ai" || got[0].SourceURL != hits[0].URL {
		t.Errorf("acme dedup: %+v", got[0])
	}
	if got[0].RawIntel["original_title"] != hits[0].Title {
		t.Errorf("raw intel title = %q", got[0].RawIntel["original_title"])
	}
	if !strings.Contains(got[0].RawIntel["full_text_preview"], "llm and rag agents") {
		t.Errorf("raw intel preview = %q", got[0].RawIntel["full_text_preview"])
	}
	// Beta's homepage came from the refinement search.
	if got[2].Homepage != "https://beta.dev" {
		t.Errorf("beta homepage = %q", got[2].Homepage)
	}
	// Eps refinement landed on another directory, so the source domain
	// stands in; the candidate is kept either way.
	if got[4].Homepage != "https://crunchbase.com" {
		t.Errorf("eps homepage = %q", got[4].Homepage)
	}

	// Six URLs satisfied the filtered pass, so only refinements followed.
	if len(searcher.queries) != 3 {
		t.Fatalf("expected 3 search calls, got %d: %v", len(searcher.queries), searcher.queries)
	}
	if len(searcher.opts[0].IncludeDomains) == 0 {
		t.Error("first pass must filter to signal domains")
	}
	if searcher.queries[1] != `"Beta" official website` {
		t.Errorf("unexpected refinement query: %q", searcher.queries[1])
	}
}

func TestDiscover_BroadensWhenFilteredPassIsThin(t *testing.T) {
	one := []search.Hit{{URL: "https://techcrunch.com/a", Title: "A"}}
	six := []search.Hit{
		{URL: "https://techcrunch.com/a", Title: "A"}, // duplicate across passes
		{URL: "https://x1.example", Title: "B"},
		{URL: "https://x2.example", Title: "C"},
		{URL: "https://x3.example", Title: "D"},
		{URL: "https://x4.example", Title: "E"},
		{URL: "https://x5.example", Title: "F"},
	}
	searcher := &fakeSearcher{responses: [][]search.Hit{one, six}}

	d, err := NewDiscoverer(Config{Searcher: searcher, Roles: roles.Default()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := d.Discover(context.Background(), "Austin", "ai engineer", DepthLight); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(searcher.queries) != 2 {
		t.Fatalf("expected filtered + unfiltered passes, got %d calls", len(searcher.queries))
	}
	if searcher.queries[0] != searcher.queries[1] {
		t.Errorf("unfiltered pass must reuse the query, got %q vs %q", searcher.queries[0], searcher.queries[1])
	}
	if len(searcher.opts[1].IncludeDomains) != 0 {
		t.Error("second pass must drop the domain filter")
	}
}

func TestDiscover_NoResultsIsNotAnError(t *testing.T) {
	searcher := &fakeSearcher{responses: [][]search.Hit{nil, nil, nil}}

	d, err := NewDiscoverer(Config{Searcher: searcher, Roles: roles.Default()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := d.Discover(context.Background(), "Austin", "ai engineer", DepthDeep)
	if err != nil {
		t.Fatalf("empty discovery must not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}

	if len(searcher.queries) != 3 {
		t.Fatalf("expected 3 broadening passes, got %d", len(searcher.queries))
	}
	if searcher.queries[2] != "Austin startups hiring ai engineer" {
		t.Errorf("broad pass query = %q", searcher.queries[2])
	}
}

func TestDiscover_RequiresSearcher(t *testing.T) {
	if _, err := NewDiscoverer(Config{}); err == nil {
		t.Fatal("expected error for missing searcher")
	}
}

func TestDepthCaps(t *testing.T) {
	if c := DepthLight.caps(); c.maxURLs != 15 || c.maxPages != 8 || c.maxChars != 6000 {
		t.Errorf("light caps = %+v", c)
	}
	if c := Depth("bogus").caps(); c != capsByDepth[DepthStandard] {
		t.Errorf("unknown depth must fall back to standard, got %+v", c)
	}
}
