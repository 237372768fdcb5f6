package research

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxCompetitors    = 5
	maxNewsItems      = 3
	maxProductUpdates = 2
	maxStackEntries   = 8
	cultureMaxChars   = 200
)

var (
	competitorListRe = regexp.MustCompile(`(?i)competitors?\s+(?:include|like|such as)\s+([^.\n]+)`)
	competitorVsRe   = regexp.MustCompile(`(?i)\bvs\.?\s+([A-Z][\w.\-]+)`)
	splitListRe      = regexp.MustCompile(`\s*(?:,|\band\b)\s*`)

	fundingStageRe  = regexp.MustCompile(`(?i)\b(seed|series a|series b|series c)\b`)
	fundingAmountRe = regexp.MustCompile(`\$(\d+(?:\.\d+)?[MB])`)

	teamSizeRe = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*(?:employees|people|team members)`)

	growthRateRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)%\s*(?:growth|increase|yoy)`)

	sentenceSplitRe = regexp.MustCompile(`[.!?]\s+`)
)

// knownTech is the vocabulary scanned for when building a tech stack. Order
// controls the order of the result.
var knownTech = []string{
	"python", "typescript", "javascript", "go", "rust", "java",
	"react", "node.js", "pytorch", "tensorflow", "kubernetes", "docker",
	"aws", "gcp", "azure", "postgres", "redis", "kafka",
}

// extractCompetitors pulls competitor names out of prose, excluding the
// company itself. Capped at five.
func extractCompetitors(text, ownName string) []string {
	var out []string
	seen := make(map[string]struct{})
	ownLow := strings.ToLower(ownName)

	add := func(name string) {
		name = strings.TrimSpace(strings.Trim(name, ".,;:"))
		if name == "" || len(name) > 40 {
			return
		}
		low := strings.ToLower(name)
		if low == ownLow {
			return
		}
		if _, dup := seen[low]; dup {
			return
		}
		seen[low] = struct{}{}
		out = append(out, name)
	}

	for _, m := range competitorListRe.FindAllStringSubmatch(text, -1) {
		for _, name := range splitListRe.Split(m[1], -1) {
			add(name)
		}
	}
	for _, m := range competitorVsRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	if len(out) > maxCompetitors {
		out = out[:maxCompetitors]
	}
	return out
}

// extractFunding returns the normalized funding stage and the last raised
// amount, either of which may be empty.
func extractFunding(text string) (stage, amount string) {
	if m := fundingStageRe.FindStringSubmatch(text); m != nil {
		stage = strings.ToLower(m[1])
	}
	if m := fundingAmountRe.FindStringSubmatch(text); m != nil {
		amount = "$" + m[1]
	}
	return stage, amount
}

// extractTeamSize finds a headcount mention and buckets it.
func extractTeamSize(text string) (size int, bucket string, ok bool) {
	m := teamSizeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, sizeBucket(n), true
}

func sizeBucket(n int) string {
	switch {
	case n <= 10:
		return "Startup"
	case n <= 50:
		return "Small"
	case n <= 200:
		return "Medium"
	default:
		return "Large"
	}
}

// extractTechStack scans for known technology names.
func extractTechStack(text string) []string {
	low := strings.ToLower(text)
	var out []string
	for _, tech := range knownTech {
		if strings.Contains(low, tech) {
			out = append(out, tech)
			if len(out) == maxStackEntries {
				break
			}
		}
	}
	return out
}

// marketSignals maps a position label to the phrases that imply it, in
// priority order: the first label with a matching signal wins.
var marketSignals = []struct {
	label   string
	signals []string
}{
	{"B2B Enterprise", []string{"enterprise", "b2b"}},
	{"B2C Consumer", []string{"consumer", "b2c"}},
	{"Developer Tools", []string{"developer tools", "devtools", "api-first", "for developers"}},
	{"AI/ML Solutions", []string{"artificial intelligence", "machine learning", " ai "}},
}

// extractMarketPosition classifies the company's market. Unclassifiable text
// falls back to the generic label.
func extractMarketPosition(text string) string {
	low := strings.ToLower(text)
	for _, ms := range marketSignals {
		for _, sig := range ms.signals {
			if strings.Contains(low, sig) {
				return ms.label
			}
		}
	}
	return "Technology Company"
}

// extractNews keeps up to three distinct non-empty headlines.
func extractNews(titles []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxNewsItems {
			break
		}
	}
	return out
}

var updateMarkers = []string{"launch", "release", "announc", "ships", "introduc"}

// extractProductUpdates keeps sentences that read like launch notes.
func extractProductUpdates(text string) []string {
	var out []string
	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		low := strings.ToLower(sentence)
		for _, marker := range updateMarkers {
			if strings.Contains(low, marker) {
				out = append(out, strings.TrimSpace(sentence))
				break
			}
		}
		if len(out) == maxProductUpdates {
			break
		}
	}
	return out
}

var cultureMarkers = []string{"culture", "values", "remote", "work-life"}

// extractCulture returns the first sentence that talks about how the company
// works, truncated to a blurb.
func extractCulture(text string) string {
	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		low := strings.ToLower(sentence)
		for _, marker := range cultureMarkers {
			if strings.Contains(low, marker) {
				s := strings.TrimSpace(sentence)
				if len(s) > cultureMaxChars {
					s = s[:cultureMaxChars]
				}
				return s
			}
		}
	}
	return ""
}

// extractGrowthMetrics collects whatever quantified growth signals the text
// offers.
func extractGrowthMetrics(text string) map[string]string {
	out := make(map[string]string)
	if m := growthRateRe.FindStringSubmatch(text); m != nil {
		out["growth_rate"] = m[1] + "%"
	}
	if n, _, ok := extractTeamSize(text); ok {
		out["headcount"] = fmt.Sprintf("%d", n)
	}
	if strings.Contains(strings.ToLower(text), "hiring") {
		out["hiring"] = "active"
	}
	return out
}
