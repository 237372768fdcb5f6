// Package match scores how well fetched pages align with a role profile.
// The primary path embeds the role blob and page snippets and compares them
// by cosine similarity; when the embedding dependency is unavailable the
// scorer degrades to pure keyword overlap. Both paths stay inside [0,100].
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/arun3676/agentception/internal/search"
)

const (
	// snippetMaxChars caps the page text sent to the embedder.
	snippetMaxChars = 800
	// keywordWindow is how much page text keyword matching looks at.
	keywordWindow = 1200
	// keywordBonusPer and keywordBonusCap shape the additive keyword bonus
	// on the embedding path (up to +0.2 before the x100 scaling).
	keywordBonusPer = 0.04
	keywordBonusCap = 0.2
	// fallbackBase and fallbackPerKeyword shape the degraded keyword-only
	// score: 20 + 15 per distinct keyword, capped at 100.
	fallbackBase       = 20.0
	fallbackPerKeyword = 15.0
)

// Score is the relevance verdict for one page.
type Score struct {
	URL             string   `json:"url"`
	Value           float64  `json:"match_score"`
	MatchedKeywords []string `json:"matched_keywords"`
	Rationale       string   `json:"why"`
}

// Embedder produces unit-length embedding vectors for a batch of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Scorer ranks pages against a role profile.
type Scorer struct {
	embedder Embedder
	logger   *slog.Logger
}

// NewScorer creates a scorer. A nil embedder means the keyword fallback is
// always used.
func NewScorer(embedder Embedder, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{embedder: embedder, logger: logger}
}

// ScorePages scores every page and returns the results sorted by
// (-score, url) so equal inputs always rank identically.
func (s *Scorer) ScorePages(ctx context.Context, roleBlob string, pages []search.ContentPage, keywords []string) []Score {
	if len(pages) == 0 {
		return nil
	}

	var out []Score
	if s.embedder == nil {
		out = KeywordScores(pages, keywords)
	} else {
		var err error
		out, err = s.embeddingScores(ctx, roleBlob, pages, keywords)
		if err != nil {
			s.logger.Warn("embedding scorer unavailable, using keyword fallback", "err", err)
			out = KeywordScores(pages, keywords)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].URL < out[j].URL
	})
	return out
}

func (s *Scorer) embeddingScores(ctx context.Context, roleBlob string, pages []search.ContentPage, keywords []string) ([]Score, error) {
	refVecs, err := s.embedder.Embed(ctx, []string{roleBlob})
	if err != nil {
		return nil, err
	}
	if len(refVecs) == 0 {
		return nil, errors.New("embedder returned no vector for role profile")
	}
	ref := refVecs[0]

	snippets := make([]string, len(pages))
	for i, p := range pages {
		snippets[i] = Snippet(p.Text, snippetMaxChars)
	}
	vecs, err := s.embedder.Embed(ctx, snippets)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(pages) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d pages", len(vecs), len(pages))
	}

	out := make([]Score, 0, len(pages))
	for i, p := range pages {
		sim := math.Max(0, cosine(ref, vecs[i]))
		matched := MatchedKeywords(p.Text, keywords)
		bonus := math.Min(keywordBonusCap, keywordBonusPer*float64(len(matched)))
		value := round1((sim + bonus) * 100)

		var why []string
		if len(matched) > 0 {
			why = append(why, "mentions: "+strings.Join(head(matched, 4), ", "))
		}
		if sim > 0.5 {
			why = append(why, "content aligns with role")
		}

		out = append(out, Score{
			URL:             p.URL,
			Value:           value,
			MatchedKeywords: matched,
			Rationale:       strings.Join(why, "; "),
		})
	}
	return out, nil
}

// KeywordScores is the degraded scorer used when embeddings are unavailable:
// 20 points base plus 15 per distinct matched keyword, capped at 100.
func KeywordScores(pages []search.ContentPage, keywords []string) []Score {
	out := make([]Score, 0, len(pages))
	for _, p := range pages {
		matched := MatchedKeywords(p.Text, keywords)
		value := math.Min(100, fallbackBase+fallbackPerKeyword*float64(len(matched)))

		why := "basic match"
		if len(matched) > 0 {
			why = "mentions: " + strings.Join(head(matched, 4), ", ")
		}

		out = append(out, Score{
			URL:             p.URL,
			Value:           value,
			MatchedKeywords: matched,
			Rationale:       why,
		})
	}
	return out
}

// MatchedKeywords returns the distinct keywords found (case-insensitive) in
// the first keywordWindow characters of text, sorted for determinism.
func MatchedKeywords(text string, keywords []string) []string {
	window := strings.ToLower(truncate(text, keywordWindow))

	seen := make(map[string]struct{})
	var matched []string
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		if strings.Contains(window, k) {
			seen[k] = struct{}{}
			matched = append(matched, k)
		}
	}
	sort.Strings(matched)
	return matched
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Snippet whitespace-normalizes text and truncates it to max characters.
func Snippet(text string, max int) string {
	t := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	return truncate(t, max)
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func head(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
