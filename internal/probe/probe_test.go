package probe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/search"
)

type scriptedSearcher struct {
	responses []scriptedResponse
	queries   []string
	opts      []search.Options
}

type scriptedResponse struct {
	hits []search.Hit
	err  error
}

func (s *scriptedSearcher) Search(_ context.Context, query string, opts search.Options) ([]search.Hit, error) {
	s.queries = append(s.queries, query)
	s.opts = append(s.opts, opts)
	if len(s.responses) == 0 {
		return nil, nil
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r.hits, r.err
}

func (s *scriptedSearcher) FetchContents(_ context.Context, _ []string, _ int) ([]search.ContentPage, error) {
	return nil, nil
}

func TestSynonyms(t *testing.T) {
	syns := Synonyms("AI Engineer", nil)
	if len(syns) == 0 || syns[0] != "ai engineer" {
		t.Fatalf("unexpected synonyms: %v", syns)
	}
	seen := map[string]bool{}
	for _, s := range syns {
		if seen[s] {
			t.Errorf("duplicate synonym %q", s)
		}
		seen[s] = true
	}

	if got := Synonyms("Rust Developer", nil); len(got) != 1 || got[0] != "rust developer" {
		t.Errorf("unknown role should map to itself, got %v", got)
	}
}

func TestSynonyms_MergesProfileKeywords(t *testing.T) {
	syns := Synonyms("AI Engineer", []string{"rag", "LLM Engineer", "x", "  "})

	has := func(term string) bool {
		for _, s := range syns {
			if s == term {
				return true
			}
		}
		return false
	}
	if !has("rag") {
		t.Errorf("profile keyword must join the match set: %v", syns)
	}
	var llmCount int
	for _, s := range syns {
		if s == "llm engineer" {
			llmCount++
		}
	}
	if llmCount != 1 {
		t.Errorf("a keyword duplicating a curated synonym appears once, got %d: %v", llmCount, syns)
	}
	if has("x") {
		t.Errorf("single-character keywords are dropped: %v", syns)
	}
	if syns[0] != "ai engineer" {
		t.Errorf("curated synonyms keep priority over keywords: %v", syns)
	}
}

func TestExtractPosting(t *testing.T) {
	syns := []string{"ml engineer", "ai engineer"}

	tests := []struct {
		name string
		hit  search.Hit
		want bool
	}{
		{
			name: "editorial marker rejects",
			hit:  search.Hit{Title: "Acme raises $10M to hire ML engineers", URL: "https://techcrunch.com/x"},
			want: false,
		},
		{
			name: "blog rejects",
			hit:  search.Hit{Title: "Blog: how we hire", URL: "https://acme.ai/blog"},
			want: false,
		},
		{
			name: "synonym in title accepts",
			hit:  search.Hit{Title: "ML Engineer at Acme", URL: "https://jobs.lever.co/acme/1"},
			want: true,
		},
		{
			name: "synonym in highlights accepts",
			hit: search.Hit{
				Title:      "Acme openings",
				URL:        "https://acme.ai/careers",
				Highlights: []string{"We are looking for an AI engineer to join"},
			},
			want: true,
		},
		{
			name: "generic job term in body accepts",
			hit: search.Hit{
				Title:      "Join the Acme team",
				URL:        "https://acme.ai/careers",
				Highlights: []string{"Apply now for this role"},
			},
			want: true,
		},
		{
			name: "generic term only in title is not enough",
			hit:  search.Hit{Title: "Careers at Acme", URL: "https://acme.ai/careers"},
			want: false,
		},
		{
			name: "irrelevant page rejects",
			hit:  search.Hit{Title: "Acme pricing", URL: "https://acme.ai/pricing"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posting, ok := ExtractPosting(tt.hit, syns)
			if ok != tt.want {
				t.Fatalf("ok = %v, want %v", ok, tt.want)
			}
			if ok && posting.URL != tt.hit.URL {
				t.Errorf("posting URL = %q", posting.URL)
			}
		})
	}
}

func TestExtractPosting_SnippetFallsBackToHighlight(t *testing.T) {
	hit := search.Hit{
		Title:      "ML Engineer at Acme",
		URL:        "https://jobs.lever.co/acme/1",
		Highlights: []string{"Own our training infrastructure"},
	}
	posting, ok := ExtractPosting(hit, []string{"ml engineer"})
	if !ok {
		t.Fatal("expected posting")
	}
	if posting.Snippet != "Own our training infrastructure" {
		t.Errorf("snippet = %q", posting.Snippet)
	}
}

func TestProbe_FirstAcceptedPostingStopsTheCascade(t *testing.T) {
	searcher := &scriptedSearcher{responses: []scriptedResponse{
		// ATS phase: only editorial noise.
		{hits: []search.Hit{{Title: "Acme raises a seed round", URL: "https://techcrunch.com/x"}}},
		// Own-domain phase: nothing.
		{},
		// Broad phase: a real posting.
		{hits: []search.Hit{{Title: "AI Engineer - Acme", URL: "https://acme.ai/careers/ai"}}},
	}}

	p, err := NewProber(Config{Searcher: searcher})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cand := company.Candidate{Name: "Acme", Homepage: "https://acme.ai"}
	posting, err := p.Probe(context.Background(), cand, "ai engineer", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posting == nil || posting.URL != "https://acme.ai/careers/ai" {
		t.Fatalf("posting = %+v", posting)
	}

	// Board phases must not run once the broad phase accepted.
	if len(searcher.queries) != 3 {
		t.Fatalf("expected 3 phases, got %d: %v", len(searcher.queries), searcher.queries)
	}

	// Phase order: ATS first, then the company's own site.
	if !strings.Contains(searcher.queries[0], "site:lever.co") {
		t.Errorf("first phase must target ATS platforms: %q", searcher.queries[0])
	}
	if len(searcher.opts[1].IncludeDomains) != 1 || searcher.opts[1].IncludeDomains[0] != "acme.ai" {
		t.Errorf("second phase must stay on the company domain: %+v", searcher.opts[1])
	}
}

func TestProbe_BlockedHomepageSkipsOwnDomainPhase(t *testing.T) {
	searcher := &scriptedSearcher{}

	p, err := NewProber(Config{Searcher: searcher})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cand := company.Candidate{Name: "Acme", Homepage: "https://www.ycombinator.com/companies/acme"}
	posting, err := p.Probe(context.Background(), cand, "ai engineer", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posting != nil {
		t.Fatalf("expected no posting, got %+v", posting)
	}

	// ats + broad + 3 boards, no own-domain pass against the directory.
	if len(searcher.queries) != 5 {
		t.Fatalf("expected 5 phases, got %d: %v", len(searcher.queries), searcher.queries)
	}
	for _, o := range searcher.opts {
		for _, d := range o.IncludeDomains {
			if strings.Contains(d, "ycombinator") {
				t.Errorf("probe must never site-search a directory: %+v", o)
			}
		}
	}
}

func TestProbe_ProfileKeywordMatchesPostingBody(t *testing.T) {
	// The title carries no curated synonym and the body no generic job term,
	// so only the profile keyword can make this hit relevant.
	searcher := &scriptedSearcher{responses: []scriptedResponse{
		{hits: []search.Hit{{
			Title:      "Join the Acme team",
			URL:        "https://jobs.lever.co/acme/2",
			Highlights: []string{"building rag systems for enterprise search"},
		}}},
	}}

	p, err := NewProber(Config{Searcher: searcher})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cand := company.Candidate{Name: "Acme", Homepage: "https://acme.ai"}
	posting, err := p.Probe(context.Background(), cand, "ai engineer", []string{"rag", "llm"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posting == nil || posting.URL != "https://jobs.lever.co/acme/2" {
		t.Fatalf("keyword-relevant posting must be accepted, got %+v", posting)
	}
	if len(searcher.queries) != 1 {
		t.Errorf("posting accepted in the first phase, yet %d queries ran", len(searcher.queries))
	}

	// Without the profile keywords the same hit is not relevant.
	searcher = &scriptedSearcher{responses: []scriptedResponse{
		{hits: []search.Hit{{
			Title:      "Join the Acme team",
			URL:        "https://jobs.lever.co/acme/2",
			Highlights: []string{"building rag systems for enterprise search"},
		}}},
	}}
	p, _ = NewProber(Config{Searcher: searcher})
	if posting, _ := p.Probe(context.Background(), cand, "ai engineer", nil); posting != nil {
		t.Fatalf("hit without keyword support should be rejected, got %+v", posting)
	}
}

func TestProbe_PhaseFailureFallsThrough(t *testing.T) {
	searcher := &scriptedSearcher{responses: []scriptedResponse{
		{err: errors.New("rate limited")},
		{hits: []search.Hit{{Title: "ML Engineer at Acme", URL: "https://acme.ai/jobs/ml"}}},
	}}

	p, err := NewProber(Config{Searcher: searcher})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cand := company.Candidate{Name: "Acme", Homepage: "https://acme.ai"}
	posting, err := p.Probe(context.Background(), cand, "ai engineer", nil)
	if err != nil {
		t.Fatalf("phase failure must not fail the probe: %v", err)
	}
	if posting == nil || posting.URL != "https://acme.ai/jobs/ml" {
		t.Fatalf("posting = %+v", posting)
	}
}

func TestProbe_NotHiringIsNotAnError(t *testing.T) {
	searcher := &scriptedSearcher{}

	p, err := NewProber(Config{Searcher: searcher})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posting, err := p.Probe(context.Background(), company.Candidate{Name: "Acme", Homepage: "https://acme.ai"}, "ai engineer", nil)
	if err != nil || posting != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", posting, err)
	}
	if len(searcher.queries) != 6 {
		t.Fatalf("expected full cascade of 6 phases, got %d", len(searcher.queries))
	}
}
