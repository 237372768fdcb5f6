package probe

import (
	"strings"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/match"
	"github.com/arun3676/agentception/internal/search"
)

// skipMarkers flag results that are press or editorial content, not postings.
var skipMarkers = []string{
	"towards data science", "article", "blog", "tutorial", "guide",
	"towardsdatascience", "raises", "seed round", "funding",
}

// jobKeywords are the generic terms that make a result look like a posting
// even when no role synonym appears in it.
var jobKeywords = []string{
	"job", "role", "position", "apply", "careers", "hiring",
	"opportunity", "opening", "vacancy", "engineer", "developer", "scientist",
}

const postingSnippetMax = 300

// ExtractPosting decides whether a search hit is a believable, role-relevant
// job posting. A hit qualifies when its title is free of editorial markers
// and either a role synonym appears in the title or body, or the body
// carries a generic job term.
func ExtractPosting(hit search.Hit, synonyms []string) (*company.JobPosting, bool) {
	title := strings.ToLower(hit.Title)
	content := strings.ToLower(strings.Join(hit.Highlights, " ") + " " + hit.Summary)

	for _, marker := range skipMarkers {
		if strings.Contains(title, marker) {
			return nil, false
		}
	}

	relevant := false
	for _, syn := range synonyms {
		if strings.Contains(title, syn) || strings.Contains(content, syn) {
			relevant = true
			break
		}
	}
	if !relevant {
		for _, kw := range jobKeywords {
			if strings.Contains(content, kw) {
				relevant = true
				break
			}
		}
	}
	if !relevant {
		return nil, false
	}

	snippet := hit.Summary
	if snippet == "" && len(hit.Highlights) > 0 {
		snippet = hit.Highlights[0]
	}
	return &company.JobPosting{
		URL:     hit.URL,
		Title:   strings.TrimSpace(hit.Title),
		Snippet: match.Snippet(snippet, postingSnippetMax),
	}, true
}
