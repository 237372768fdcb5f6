package research

import (
	"fmt"
	"strings"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/search"
)

// Facet names one enrichment dimension.
type Facet string

const (
	FacetCompetitive    Facet = "competitive"
	FacetFunding        Facet = "funding"
	FacetTeam           Facet = "team"
	FacetTechStack      Facet = "tech_stack"
	FacetMarketPosition Facet = "market_position"
	FacetRecentNews     Facet = "recent_news"
	FacetProductRoadmap Facet = "product_roadmap"
	FacetCulture        Facet = "culture"
	FacetGrowthMetrics  Facet = "growth_metrics"
)

// facetSpec binds a facet to its search query and its extraction step. The
// apply function reports whether it actually found data; empty results do not
// count toward confidence.
type facetSpec struct {
	query func(name string) string
	apply func(intel *company.Intelligence, hits []search.Hit) bool
}

// facetTable is the full set of supported facets. Dispatch is a table lookup,
// so adding a facet means adding a row, not a branch.
var facetTable = map[Facet]facetSpec{
	FacetCompetitive: {
		query: func(name string) string { return fmt.Sprintf("%q competitors alternatives comparison", name) },
		apply: applyCompetitive,
	},
	FacetFunding: {
		query: func(name string) string { return fmt.Sprintf("%q funding round raised investment", name) },
		apply: applyFunding,
	},
	FacetTeam: {
		query: func(name string) string { return fmt.Sprintf("%q team size employees headcount", name) },
		apply: applyTeam,
	},
	FacetTechStack: {
		query: func(name string) string { return fmt.Sprintf("%q engineering technology stack built with", name) },
		apply: applyTechStack,
	},
	FacetMarketPosition: {
		query: func(name string) string { return fmt.Sprintf("%q market customers enterprise product", name) },
		apply: applyMarketPosition,
	},
	FacetRecentNews: {
		query: func(name string) string { return fmt.Sprintf("%q latest news announcement", name) },
		apply: applyRecentNews,
	},
	FacetProductRoadmap: {
		query: func(name string) string { return fmt.Sprintf("%q product launch roadmap release", name) },
		apply: applyProductRoadmap,
	},
	FacetCulture: {
		query: func(name string) string { return fmt.Sprintf("%q company culture values working at", name) },
		apply: applyCulture,
	},
	FacetGrowthMetrics: {
		query: func(name string) string { return fmt.Sprintf("%q growth users revenue metrics", name) },
		apply: applyGrowthMetrics,
	},
}

// facetText flattens search hits into one text blob for the extractors.
func facetText(hits []search.Hit) string {
	var sb strings.Builder
	for _, h := range hits {
		sb.WriteString(h.Title)
		sb.WriteString(". ")
		for _, hl := range h.Highlights {
			sb.WriteString(hl)
			sb.WriteString(" ")
		}
		sb.WriteString(h.Summary)
		sb.WriteString(" ")
	}
	return sb.String()
}

func applyCompetitive(intel *company.Intelligence, hits []search.Hit) bool {
	competitors := extractCompetitors(facetText(hits), intel.Name)
	if len(competitors) == 0 {
		return false
	}
	intel.Competitors = competitors
	return true
}

func applyFunding(intel *company.Intelligence, hits []search.Hit) bool {
	stage, amount := extractFunding(facetText(hits))
	if stage == "" && amount == "" {
		return false
	}
	intel.FundingStage = stage
	intel.LastFunding = amount
	intel.GrowthIndicator = growthIndicator(stage)
	return true
}

func growthIndicator(stage string) string {
	switch stage {
	case "seed":
		return "early stage"
	case "series a":
		return "growth stage"
	case "series b", "series c":
		return "scaling"
	default:
		return ""
	}
}

func applyTeam(intel *company.Intelligence, hits []search.Hit) bool {
	_, bucket, ok := extractTeamSize(facetText(hits))
	if !ok {
		return false
	}
	intel.CompanySize = bucket
	return true
}

func applyTechStack(intel *company.Intelligence, hits []search.Hit) bool {
	stack := extractTechStack(facetText(hits))
	if len(stack) == 0 {
		return false
	}
	intel.TechStack = stack
	return true
}

func applyMarketPosition(intel *company.Intelligence, hits []search.Hit) bool {
	if len(hits) == 0 {
		return false
	}
	intel.MarketPosition = extractMarketPosition(facetText(hits))
	return true
}

func applyRecentNews(intel *company.Intelligence, hits []search.Hit) bool {
	titles := make([]string, 0, len(hits))
	for _, h := range hits {
		titles = append(titles, h.Title)
	}
	news := extractNews(titles)
	if len(news) == 0 {
		return false
	}
	intel.RecentNews = news
	return true
}

func applyProductRoadmap(intel *company.Intelligence, hits []search.Hit) bool {
	updates := extractProductUpdates(facetText(hits))
	if len(updates) == 0 {
		return false
	}
	intel.ProductUpdates = updates
	return true
}

func applyCulture(intel *company.Intelligence, hits []search.Hit) bool {
	culture := extractCulture(facetText(hits))
	if culture == "" {
		return false
	}
	intel.Culture = culture
	return true
}

func applyGrowthMetrics(intel *company.Intelligence, hits []search.Hit) bool {
	metrics := extractGrowthMetrics(facetText(hits))
	if len(metrics) == 0 {
		return false
	}
	intel.GrowthMetrics = metrics
	return true
}
