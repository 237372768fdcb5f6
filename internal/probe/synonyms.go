package probe

import "strings"

// synonymsByRole maps a role family to the titles that family is posted
// under. The first entry is always the canonical role name; queries use the
// top three.
var synonymsByRole = map[string][]string{
	"ai engineer": {
		"ai engineer", "machine learning engineer", "ml engineer",
		"mlops engineer", "applied scientist", "deep learning engineer",
		"llm engineer", "research engineer", "nlp engineer",
		"computer vision engineer", "machine learning scientist",
	},
	"data engineer": {
		"data engineer", "analytics engineer", "data platform engineer",
		"etl developer", "big data engineer", "data infrastructure engineer",
	},
	"full-stack engineer": {
		"full-stack engineer", "full stack developer", "software engineer",
		"frontend engineer", "backend engineer", "web developer",
	},
	"java developer": {
		"java developer", "java engineer", "backend engineer",
		"jvm developer", "java software engineer",
	},
	"data analyst": {
		"data analyst", "business analyst", "bi analyst",
		"product analyst", "analytics specialist", "reporting analyst",
	},
}

// Synonyms returns the match terms for a role: the curated family variants
// first, then the role profile's keywords as loose synonyms, so a posting
// that mentions a keyword in its body still counts as relevant. Unknown
// roles start from the role itself. Duplicates are removed
// case-insensitively, preserving order.
func Synonyms(role string, keywords []string) []string {
	key := strings.ToLower(strings.TrimSpace(role))
	base, ok := synonymsByRole[key]
	if !ok {
		base = []string{key}
	}

	terms := make([]string, 0, len(base)+len(keywords))
	terms = append(terms, base...)
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); len(kw) >= 2 {
			terms = append(terms, kw)
		}
	}

	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, s := range terms {
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// topSynonyms returns at most n curated synonyms for query building; the
// loose keyword terms stay out of queries.
func topSynonyms(role string, n int) []string {
	syns := Synonyms(role, nil)
	if len(syns) > n {
		syns = syns[:n]
	}
	return syns
}
