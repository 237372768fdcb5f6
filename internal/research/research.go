// Package research enriches verified candidates with market intelligence.
// Each requested facet runs its own search and extraction; facets that find
// nothing or fail simply lower the confidence score instead of failing the
// company or the run.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/metrics"
	"github.com/arun3676/agentception/internal/search"
)

// StandardFacets is the default enrichment set; DeepFacets adds the
// competitive landscape for deep runs.
var (
	StandardFacets = []Facet{FacetRecentNews, FacetTechStack}
	DeepFacets     = []Facet{FacetRecentNews, FacetTechStack, FacetCompetitive}
)

// Config wires an Agent.
type Config struct {
	Searcher search.Searcher
	// CompanyConcurrency bounds how many companies enrich at once. Defaults
	// to 3.
	CompanyConcurrency int
	// FacetResults is the per-facet search size. Defaults to 3.
	FacetResults int
	Logger       *slog.Logger
}

// Agent runs facet enrichment over verified candidates.
type Agent struct {
	cfg    Config
	logger *slog.Logger
}

// NewAgent creates an enrichment agent. Searcher is required.
func NewAgent(cfg Config) (*Agent, error) {
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("research: searcher is required")
	}
	if cfg.CompanyConcurrency <= 0 {
		cfg.CompanyConcurrency = 3
	}
	if cfg.FacetResults <= 0 {
		cfg.FacetResults = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Agent{cfg: cfg, logger: cfg.Logger}, nil
}

// Enrich builds one Intelligence record per candidate, in input order. The
// candidates themselves are never modified; every record starts as a copy.
func (a *Agent) Enrich(ctx context.Context, cands []company.Candidate, facets []Facet) []*company.Intelligence {
	out := make([]*company.Intelligence, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.CompanyConcurrency)
	for i := range cands {
		g.Go(func() error {
			out[i] = a.enrichOne(gctx, cands[i], facets)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Agent) enrichOne(ctx context.Context, cand company.Candidate, facets []Facet) *company.Intelligence {
	intel := company.NewIntelligence(cand)

	var (
		mu         sync.Mutex
		successful int
		requested  int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range facets {
		spec, known := facetTable[f]
		if !known {
			a.logger.Warn("unknown research facet", "facet", string(f))
			continue
		}
		requested++

		g.Go(func() error {
			hits, err := a.cfg.Searcher.Search(gctx, spec.query(cand.Name), search.Options{
				NumResults:     a.cfg.FacetResults,
				WantHighlights: true,
			})
			if err != nil {
				a.logger.Warn("facet search failed", "company", cand.Name, "facet", string(f), "err", err)
				metrics.FacetResultsTotal.WithLabelValues(string(f), "error").Inc()
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if !spec.apply(intel, hits) {
				metrics.FacetResultsTotal.WithLabelValues(string(f), "empty").Inc()
				return nil
			}
			successful++
			if len(hits) > 0 {
				intel.DataSources = append(intel.DataSources, hits[0].URL)
			}
			metrics.FacetResultsTotal.WithLabelValues(string(f), "found").Inc()
			return nil
		})
	}
	_ = g.Wait()

	if requested > 0 {
		intel.ConfidenceScore = float64(successful) / float64(requested)
	}
	// Facets finish in arbitrary order; keep sources deterministic.
	sort.Strings(intel.DataSources)

	a.logger.Info("company enriched",
		"company", cand.Name, "facets", requested, "successful", successful,
		"confidence", intel.ConfidenceScore)
	return intel
}
