// Package discovery finds companies in a city that look relevant to a role.
// It fans a query out over high-signal startup directories, scores the fetched
// pages against the role profile, extracts company candidates, and probes
// their homepages for contact hints. Verification of actual openings happens
// downstream.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/match"
	"github.com/arun3676/agentception/internal/roles"
	"github.com/arun3676/agentception/internal/search"
)

// signalDomains are the directories where freshly launched, likely-hiring
// companies show up first.
var signalDomains = []string{
	"producthunt.com/posts",
	"www.ycombinator.com/companies",
	"wellfound.com/company",
	"techcrunch.com",
	"crunchbase.com/organization",
}

const (
	// minURLsForFilteredPass is the result count below which the domain
	// filter is considered too tight and the query is broadened.
	minURLsForFilteredPass = 6

	// contactBonus is added to a candidate's score when a probe finds an
	// email or careers link.
	contactBonus = 0.2

	// queryKeywordLimit caps how many profile keywords go into the query.
	queryKeywordLimit = 6

	probeConcurrency = 5
)

// Depth selects how wide a discovery run casts its net.
type Depth string

const (
	DepthLight    Depth = "light"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

type depthCaps struct {
	maxURLs  int
	maxPages int
	maxChars int
}

var capsByDepth = map[Depth]depthCaps{
	DepthLight:    {maxURLs: 15, maxPages: 8, maxChars: 6000},
	DepthStandard: {maxURLs: 30, maxPages: 15, maxChars: 9000},
	DepthDeep:     {maxURLs: 45, maxPages: 20, maxChars: 12000},
}

func (d Depth) caps() depthCaps {
	if c, ok := capsByDepth[d]; ok {
		return c
	}
	return capsByDepth[DepthStandard]
}

// Config wires a Discoverer's dependencies.
type Config struct {
	Searcher search.Searcher
	Scorer   *match.Scorer
	Prober   *ContactProber
	Roles    *roles.Table
	// MaxCandidates caps the returned slice. Defaults to 20.
	MaxCandidates int
	Logger        *slog.Logger
}

// Discoverer turns a (city, role) pair into a ranked list of company
// candidates.
type Discoverer struct {
	cfg    Config
	logger *slog.Logger
}

// NewDiscoverer creates a discoverer. Searcher is required; a nil Prober
// skips contact probing, a nil Roles table falls back to the literal role
// string.
func NewDiscoverer(cfg Config) (*Discoverer, error) {
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("discovery: searcher is required")
	}
	if cfg.Scorer == nil {
		cfg.Scorer = match.NewScorer(nil, cfg.Logger)
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Discoverer{cfg: cfg, logger: cfg.Logger}, nil
}

// Discover runs the full discovery pass: query fan-out, page scoring,
// candidate extraction, dedup, and contact probing. The result is sorted by
// descending score with name as the tie-break.
func (d *Discoverer) Discover(ctx context.Context, city, role string, depth Depth) ([]company.Candidate, error) {
	caps := depth.caps()
	profile := d.cfg.Roles.Profile(role)
	query := d.buildQuery(city, role, profile)

	d.logger.Info("starting discovery", "city", city, "role", role, "depth", string(depth), "query", query)

	hits, err := d.gatherHits(ctx, query, city, role, caps)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		d.logger.Warn("discovery found no results", "city", city, "role", role)
		return nil, nil
	}

	pages, err := d.fetchPages(ctx, hits, caps)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}

	scores := d.cfg.Scorer.ScorePages(ctx, profile.Blob(role), pages, profile.Keywords)
	scoreByURL := make(map[string]match.Score, len(scores))
	for _, s := range scores {
		scoreByURL[s.URL] = s
	}

	hitByURL := make(map[string]search.Hit, len(hits))
	for _, h := range hits {
		hitByURL[h.URL] = h
	}

	candidates := d.extractCandidates(ctx, city, pages, hitByURL, scoreByURL)
	d.probeContacts(ctx, candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return strings.ToLower(candidates[i].Name) < strings.ToLower(candidates[j].Name)
	})
	if len(candidates) > d.cfg.MaxCandidates {
		candidates = candidates[:d.cfg.MaxCandidates]
	}

	d.logger.Info("discovery complete", "candidates", len(candidates))
	return candidates, nil
}

func (d *Discoverer) buildQuery(city, role string, profile roles.Profile) string {
	terms := profile.Keywords
	if len(terms) > queryKeywordLimit {
		terms = terms[:queryKeywordLimit]
	}
	subject := strings.Join(terms, " ")
	if subject == "" {
		subject = role
	}
	return fmt.Sprintf("%s %s AI startup", city, subject)
}

// gatherHits runs the filtered pass and progressively broadens the query when
// the directory filter returns too few URLs.
func (d *Discoverer) gatherHits(ctx context.Context, query, city, role string, caps depthCaps) ([]search.Hit, error) {
	passes := []struct {
		name  string
		query string
		opts  search.Options
	}{
		{"filtered", query, search.Options{IncludeDomains: signalDomains, NumResults: caps.maxURLs, WantHighlights: true}},
		{"unfiltered", query, search.Options{NumResults: caps.maxURLs, WantHighlights: true}},
		{"broad", fmt.Sprintf("%s startups hiring %s", city, role), search.Options{NumResults: caps.maxURLs, WantHighlights: true}},
	}

	var hits []search.Hit
	seen := make(map[string]struct{})
	for _, pass := range passes {
		found, err := d.cfg.Searcher.Search(ctx, pass.query, pass.opts)
		if err != nil {
			return nil, fmt.Errorf("discovery search (%s pass): %w", pass.name, err)
		}
		for _, h := range found {
			if _, dup := seen[h.URL]; dup {
				continue
			}
			seen[h.URL] = struct{}{}
			hits = append(hits, h)
		}
		if len(hits) >= minURLsForFilteredPass {
			break
		}
		d.logger.Info("broadening discovery query", "pass", pass.name, "urls_so_far", len(hits))
	}

	if len(hits) > caps.maxURLs {
		hits = hits[:caps.maxURLs]
	}
	return hits, nil
}

func (d *Discoverer) fetchPages(ctx context.Context, hits []search.Hit, caps depthCaps) ([]search.ContentPage, error) {
	n := len(hits)
	if n > caps.maxPages {
		n = caps.maxPages
	}
	urls := make([]string, 0, n)
	for _, h := range hits[:n] {
		urls = append(urls, h.URL)
	}

	pages, err := d.cfg.Searcher.FetchContents(ctx, urls, caps.maxChars)
	if err != nil {
		return nil, fmt.Errorf("discovery content fetch: %w", err)
	}
	return pages, nil
}

func (d *Discoverer) extractCandidates(ctx context.Context, city string, pages []search.ContentPage, hitByURL map[string]search.Hit, scoreByURL map[string]match.Score) []company.Candidate {
	var out []company.Candidate
	seen := make(map[string]struct{})

	for _, page := range pages {
		hit := hitByURL[page.URL]
		title := page.Title
		if title == "" {
			title = hit.Title
		}
		name := CleanName(title)
		if name == "" {
			continue
		}

		homepage := d.resolveHomepage(ctx, name, page)
		if homepage == "" {
			continue
		}

		// First extraction wins per homepage; later duplicates from other
		// directories never replace it.
		key := NormalizeHomepage(homepage)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		blurb := hit.Summary
		if blurb == "" {
			blurb = FallbackBlurb(page.Text)
		}

		score := scoreByURL[page.URL]
		out = append(out, company.Candidate{
			Name:      name,
			Homepage:  homepage,
			SourceURL: page.URL,
			Blurb:     match.Snippet(blurb, 800),
			City:      city,
			Tags:      append([]string{}, score.MatchedKeywords...),
			Score:     score.Value + SourceQualityBonus(page.URL),
			RawIntel: map[string]string{
				"original_title":    strings.TrimSpace(title),
				"full_text_preview": match.Snippet(page.Text, 500),
			},
		})
	}
	return out
}

// resolveHomepage prefers an external link found in the page text, falling
// back to the source URL's own domain. A homepage that is still a directory
// gets one refinement search; when that fails too, the directory URL stands
// rather than losing the candidate.
func (d *Discoverer) resolveHomepage(ctx context.Context, name string, page search.ContentPage) string {
	if link := ExternalLink(page.Text); link != "" {
		return link
	}
	homepage := OwnDomain(page.URL)
	if homepage == "" {
		return ""
	}
	if IsDirectoryDomain(homepage) {
		if hp := d.refineHomepage(ctx, name); hp != "" {
			return hp
		}
	}
	return homepage
}

// refineHomepage searches for the company's official site. Only the top hit
// is trusted, and only when it is not another directory page.
func (d *Discoverer) refineHomepage(ctx context.Context, name string) string {
	hits, err := d.cfg.Searcher.Search(ctx, fmt.Sprintf("%q official website", name), search.Options{NumResults: 3})
	if err != nil {
		d.logger.Debug("homepage refinement failed", "company", name, "err", err)
		return ""
	}
	if len(hits) == 0 || IsDirectoryDomain(hits[0].URL) {
		return ""
	}
	return OwnDomain(hits[0].URL)
}

// probeContacts fetches each candidate homepage concurrently looking for a
// contact hint. Probe failures cost nothing; a found contact adds a small
// score bonus.
func (d *Discoverer) probeContacts(ctx context.Context, candidates []company.Candidate) {
	if d.cfg.Prober == nil || len(candidates) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i := range candidates {
		g.Go(func() error {
			contact := d.cfg.Prober.Probe(gctx, candidates[i].Homepage)
			if !contact.Found() {
				return nil
			}
			hint := contact.Email
			if hint == "" {
				hint = contact.Careers
			}
			candidates[i].ContactHint = hint
			candidates[i].Score += contactBonus
			return nil
		})
	}
	_ = g.Wait()
}
