// Package company defines the records that flow through the discovery
// pipeline: candidates extracted from search results, the job posting that
// verifies a candidate is hiring, and the enriched intelligence built on top.
package company

import "time"

// Candidate is a company pulled out of one search result. It is not yet
// verified as hiring. The dedup identity is the normalized homepage URL.
type Candidate struct {
	Name        string            `json:"name"`
	Homepage    string            `json:"homepage"`
	SourceURL   string            `json:"source_url"`
	Blurb       string            `json:"blurb,omitempty"`
	City        string            `json:"city,omitempty"`
	Tags        []string          `json:"tags"`
	ContactHint string            `json:"contact_hint,omitempty"`
	Score       float64           `json:"score"`
	RawIntel    map[string]string `json:"intel,omitempty"`

	// JobPosting is set once a probe phase confirms an opening. A stronger
	// or later match never replaces it within the same run.
	JobPosting *JobPosting `json:"job_posting,omitempty"`
}

// JobPosting is a confirmed, role-relevant opening.
type JobPosting struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// Intelligence is the enriched view of a verified candidate. It copies the
// candidate's fields rather than referencing them, so enrichment can never
// corrupt the verified hiring record.
type Intelligence struct {
	Candidate

	Competitors     []string          `json:"competitors"`
	FundingStage    string            `json:"funding_stage,omitempty"`
	LastFunding     string            `json:"last_funding,omitempty"`
	TechStack       []string          `json:"tech_stack"`
	MarketPosition  string            `json:"market_position,omitempty"`
	CompanySize     string            `json:"company_size,omitempty"`
	GrowthIndicator string            `json:"growth_indicator,omitempty"`
	RecentNews      []string          `json:"recent_news"`
	ProductUpdates  []string          `json:"product_updates"`
	Culture         string            `json:"company_culture,omitempty"`
	GrowthMetrics   map[string]string `json:"growth_metrics"`

	// ConfidenceScore is successful facets / requested facets, in [0,1].
	ConfidenceScore float64   `json:"confidence_score"`
	DataSources     []string  `json:"data_sources"`
	LastUpdated     time.Time `json:"last_updated"`
}

// NewIntelligence builds an Intelligence record from a candidate with every
// collection initialized to empty. Optional fields default at construction,
// never through post-hoc fix-up.
func NewIntelligence(c Candidate) *Intelligence {
	return &Intelligence{
		Candidate:      c,
		Competitors:    []string{},
		TechStack:      []string{},
		RecentNews:     []string{},
		ProductUpdates: []string{},
		GrowthMetrics:  map[string]string{},
		DataSources:    []string{},
		LastUpdated:    time.Now().UTC(),
	}
}
