// Package probe verifies that a discovered company actually has a relevant
// opening. It cascades through progressively broader search phases and stops
// at the first believable posting; a candidate that survives no phase is
// simply not hiring for the role right now.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/search"
)

// atsDomains are the applicant-tracking systems where startups host postings.
var atsDomains = []string{
	"lever.co",
	"greenhouse.io",
	"boards.greenhouse.io",
	"ashbyhq.com",
	"jobs.ashbyhq.com",
	"workable.com",
	"smartrecruiters.com",
	"bamboohr.com",
	"myworkdayjobs.com",
}

// jobBoardDomains drive the last-resort phase, one query per board.
var jobBoardDomains = []string{
	"linkedin.com",
	"workatastartup.com",
	"indeed.com",
}

// blockedOwnDomains are homepages that resolve to a directory, where an
// own-domain search would match every company on the site.
var blockedOwnDomains = map[string]struct{}{
	"ycombinator.com":     {},
	"www.ycombinator.com": {},
}

const (
	atsPhaseResults   = 10
	otherPhaseResults = 5
	querySynonymLimit = 3
)

// Config wires a Prober.
type Config struct {
	Searcher search.Searcher
	Logger   *slog.Logger
}

// Prober runs the phase cascade for one candidate at a time. It is safe for
// concurrent use; the pipeline probes several candidates in parallel.
type Prober struct {
	searcher search.Searcher
	logger   *slog.Logger
}

// NewProber creates a prober. Searcher is required.
func NewProber(cfg Config) (*Prober, error) {
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("probe: searcher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Prober{searcher: cfg.Searcher, logger: cfg.Logger}, nil
}

type phase struct {
	name    string
	query   string
	opts    search.Options
	enabled bool
}

// Probe looks for a role-relevant posting at the candidate company. The
// keywords come from the role profile and widen the match set beyond the
// curated synonyms. The first posting accepted by any phase wins and later
// phases never run. A fully exhausted cascade returns (nil, nil): not hiring
// is a result, not an error.
func (p *Prober) Probe(ctx context.Context, cand company.Candidate, role string, keywords []string) (*company.JobPosting, error) {
	syns := topSynonyms(role, querySynonymLimit)
	allSyns := Synonyms(role, keywords)

	for _, ph := range p.phases(cand, role, syns) {
		if !ph.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hits, err := p.searcher.Search(ctx, ph.query, ph.opts)
		if err != nil {
			// A failed phase is only a missed chance; the next phase may
			// still find a posting.
			p.logger.Warn("probe phase failed", "company", cand.Name, "phase", ph.name, "err", err)
			continue
		}
		for _, hit := range hits {
			if posting, ok := ExtractPosting(hit, allSyns); ok {
				p.logger.Info("job posting found",
					"company", cand.Name, "phase", ph.name, "url", posting.URL)
				return posting, nil
			}
		}
	}

	p.logger.Debug("no posting found", "company", cand.Name, "role", role)
	return nil, nil
}

// phases builds the cascade in priority order: ATS platforms, the company's
// own site, a broad web pass, then the big job boards.
func (p *Prober) phases(cand company.Candidate, role string, syns []string) []phase {
	var quoted []string
	for _, s := range syns {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	var sites []string
	for _, d := range atsDomains {
		sites = append(sites, "site:"+d)
	}

	out := []phase{
		{
			name:    "ats",
			query:   fmt.Sprintf("%q %s (%s) job", cand.Name, strings.Join(quoted, " "), strings.Join(sites, " OR ")),
			opts:    search.Options{NumResults: atsPhaseResults, WantHighlights: true},
			enabled: true,
		},
	}

	if host := ownHost(cand.Homepage); host != "" {
		if _, blocked := blockedOwnDomains[host]; !blocked {
			out = append(out, phase{
				name:    "own_domain",
				query:   fmt.Sprintf("%q %s jobs", cand.Name, syns[0]),
				opts:    search.Options{IncludeDomains: []string{host}, NumResults: otherPhaseResults, WantHighlights: true},
				enabled: true,
			})
		}
	}

	out = append(out, phase{
		name:    "broad",
		query:   fmt.Sprintf("%q hiring %s", cand.Name, role),
		opts:    search.Options{NumResults: otherPhaseResults, WantHighlights: true},
		enabled: true,
	})

	for _, board := range jobBoardDomains {
		out = append(out, phase{
			name:    "board_" + board,
			query:   fmt.Sprintf("%q %s", cand.Name, role),
			opts:    search.Options{IncludeDomains: []string{board}, NumResults: otherPhaseResults, WantHighlights: true},
			enabled: true,
		})
	}
	return out
}

func ownHost(homepage string) string {
	u, err := url.Parse(homepage)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}
