package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

// Directory domains are discovery sources, never a company's own homepage.
var directoryDomains = []string{
	"producthunt.com",
	"ycombinator.com",
	"wellfound.com",
	"techcrunch.com",
	"crunchbase.com",
}

var (
	directorySuffixRe = regexp.MustCompile(`(?i)\s*\|?\s*(Y Combinator|Crunchbase|Product Hunt|Wellfound).*$`)
	atForWithRe       = regexp.MustCompile(`\b(?:[Aa]t|[Ff]or|[Ww]ith)\s+([A-Z][\w &.\-]+)`)
	titleSplitRe      = regexp.MustCompile(`[:\-|–]`)

	urlInTextRe    = regexp.MustCompile(`https?://[^\s)]+`)
	markdownLinkRe = regexp.MustCompile(`\]\([^)]*\)$`)
	bracketRe      = regexp.MustCompile(`\[.*?\]`)
	brokenLinkRe   = regexp.MustCompile(`\]\(([^)]+)`)
	assetOrSocialRe = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif|svg|pdf)$|twitter\.com|linkedin\.com|facebook\.com`)

	blurbRe = regexp.MustCompile(`(About\s+[^.\n]+[.\n]|[A-Z][^.]{40,200}\.)`)
)

// CleanName derives a company name from a page title using ordered
// heuristics: strip directory suffixes, prefer the capitalized phrase after
// at/for/with, then the text before the first separator, then the first word.
func CleanName(title string) string {
	raw := strings.TrimSpace(directorySuffixRe.ReplaceAllString(title, ""))

	if m := atForWithRe.FindStringSubmatch(raw); m != nil {
		if name := strings.TrimSpace(m[1]); len(name) > 3 {
			return name
		}
	}

	if loc := titleSplitRe.FindStringIndex(raw); loc != nil {
		if name := strings.TrimSpace(raw[:loc[0]]); name != "" {
			return name
		}
	}

	if raw != "" {
		return raw
	}

	fields := strings.Fields(title)
	if len(fields) > 0 {
		return fields[0]
	}
	return title
}

// CleanURL strips markdown artifacts and trailing punctuation that search
// snippets tend to smear onto URLs.
func CleanURL(raw string) string {
	if raw == "" {
		return raw
	}
	raw = markdownLinkRe.ReplaceAllString(raw, "")
	raw = bracketRe.ReplaceAllString(raw, "")
	raw = brokenLinkRe.ReplaceAllString(raw, "$1")
	return strings.TrimRight(strings.TrimSpace(raw), ".,;:!?)]")
}

// IsDirectoryDomain reports whether the URL points at a known discovery
// directory rather than a company site.
func IsDirectoryDomain(rawURL string) bool {
	low := strings.ToLower(rawURL)
	for _, d := range directoryDomains {
		if strings.Contains(low, d) {
			return true
		}
	}
	return false
}

// ExternalLink returns the first URL in the page text that could be a company
// homepage: not a directory domain, not an asset or social-media link.
func ExternalLink(text string) string {
	for _, u := range urlInTextRe.FindAllString(text, -1) {
		cleaned := CleanURL(u)
		if IsDirectoryDomain(cleaned) || assetOrSocialRe.MatchString(cleaned) {
			continue
		}
		return strings.TrimRight(cleaned, "/")
	}
	return ""
}

// OwnDomain reduces a URL to its scheme://host origin.
func OwnDomain(rawURL string) string {
	u, err := url.Parse(CleanURL(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}

// NormalizeHomepage produces the dedup key for a homepage URL: lowercased
// host without the www prefix, no trailing slash.
func NormalizeHomepage(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimRight(rawURL, "/"))
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimRight(u.Path, "/")
	return host + path
}

// FallbackBlurb extracts a descriptive sentence from page text when the
// search summary is empty.
func FallbackBlurb(text string) string {
	if m := blurbRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	if len(text) > 500 {
		return text[:500]
	}
	return text
}

// SourceQualityBonus rewards candidates discovered through high-signal
// directories. The constants are tuned empirically; keep them in sync with
// the ranking tests.
func SourceQualityBonus(sourceURL string) float64 {
	low := strings.ToLower(sourceURL)
	var bonus float64
	if strings.Contains(low, "producthunt.com") {
		bonus += 1.0
	}
	if strings.Contains(low, "ycombinator.com") || strings.Contains(low, "wellfound.com") {
		bonus += 0.8
	}
	return bonus
}
