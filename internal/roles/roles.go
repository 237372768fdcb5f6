// Package roles holds the role-profile table used to steer discovery and
// matching. The table is built once at startup and never mutated afterwards;
// every stage receives it by reference.
package roles

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes what a role looks like on the open web: the keywords that
// signal a match, the value props a candidate can lead with, and hooks for
// outreach copy.
type Profile struct {
	Keywords   []string `yaml:"keywords"`
	ValueProps []string `yaml:"value_props"`
	Hooks      []string `yaml:"hooks"`
}

// Blob flattens the profile into the text embedded for semantic matching.
func (p Profile) Blob(role string) string {
	var sb strings.Builder
	sb.WriteString(role)
	sb.WriteString("\nkeywords: ")
	sb.WriteString(strings.Join(p.Keywords, ", "))
	sb.WriteString("\nhooks: ")
	sb.WriteString(strings.Join(p.Hooks, ", "))
	sb.WriteString("\nvalue_props: ")
	sb.WriteString(strings.Join(p.ValueProps, ", "))
	return sb.String()
}

// Table maps role names to profiles. Lookups are case-insensitive.
type Table struct {
	profiles map[string]Profile
}

// Profile returns the profile for a role. Unknown roles yield an empty
// profile, never an error; discovery then falls back to the literal role
// string.
func (t *Table) Profile(role string) Profile {
	if t == nil || t.profiles == nil {
		return Profile{}
	}
	return t.profiles[strings.ToLower(strings.TrimSpace(role))]
}

// Roles returns the names of all known roles.
func (t *Table) Roles() []string {
	out := make([]string, 0, len(t.profiles))
	for name := range t.profiles {
		out = append(out, name)
	}
	return out
}

// New builds a table from an explicit profile map.
func New(profiles map[string]Profile) *Table {
	normalized := make(map[string]Profile, len(profiles))
	for name, p := range profiles {
		normalized[strings.ToLower(strings.TrimSpace(name))] = p
	}
	return &Table{profiles: normalized}
}

// Load reads a role table from a YAML file keyed by role name.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles file: %w", err)
	}

	var raw map[string]Profile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse roles file: %w", err)
	}
	return New(raw), nil
}

// Default returns the built-in role table used when no roles file is
// configured.
func Default() *Table {
	return New(map[string]Profile{
		"ai engineer": {
			Keywords:   []string{"llm", "rag", "machine learning", "pytorch", "embeddings", "inference"},
			ValueProps: []string{"shipped production RAG systems", "built evals and observability for agents"},
			Hooks:      []string{"agentic workflows", "retrieval quality"},
		},
		"data engineer": {
			Keywords:   []string{"etl", "data pipeline", "spark", "airflow", "warehouse", "dbt"},
			ValueProps: []string{"built batch and streaming pipelines at scale"},
			Hooks:      []string{"data reliability", "pipeline cost"},
		},
		"full-stack engineer": {
			Keywords:   []string{"react", "typescript", "node.js", "api", "postgres"},
			ValueProps: []string{"shipped features end to end"},
			Hooks:      []string{"product velocity"},
		},
		"java developer": {
			Keywords:   []string{"java", "spring", "microservices", "kafka", "jvm"},
			ValueProps: []string{"built high-throughput backend services"},
			Hooks:      []string{"service reliability"},
		},
		"data analyst": {
			Keywords:   []string{"sql", "dashboards", "tableau", "analytics", "reporting"},
			ValueProps: []string{"turned messy data into decisions"},
			Hooks:      []string{"self-serve analytics"},
		},
	})
}
