package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arun3676/agentception/internal/botwall"
	"github.com/arun3676/agentception/internal/fingerprint"
	"github.com/arun3676/agentception/internal/metrics"
	"github.com/arun3676/agentception/pkg/httpclient"
	"github.com/arun3676/agentception/pkg/proxy"
	"github.com/arun3676/agentception/pkg/ratelimit"
	"github.com/arun3676/agentception/pkg/useragent"
)

// contactReadLimit bounds how much of a homepage the probe reads. One page
// head is enough to find a mailto or careers link.
const contactReadLimit = 6000

var (
	emailRe   = regexp.MustCompile(`^mailto:([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)
	careersRe = regexp.MustCompile(`(?i)/careers|/jobs|/join`)
)

// proxyMarker carries the proxy chosen for one probe request.
type proxyMarker struct {
	url *url.URL
}

type proxyMarkerKey struct{}

// Contact is what a light homepage probe can find.
type Contact struct {
	Email   string
	Careers string
}

// Found reports whether the probe turned up anything usable.
func (c Contact) Found() bool {
	return c.Email != "" || c.Careers != ""
}

// ContactProberConfig configures the homepage probe.
type ContactProberConfig struct {
	Timeout     time.Duration
	Fingerprint fingerprint.Profile
	UAPool      *useragent.Pool
	HostLimiter *ratelimit.HostLimiter
	CheckRobots bool
	// Proxies, when set, rotates probe requests over the pool.
	Proxies *proxy.Pool
	Logger  *slog.Logger
}

// ContactProber runs a single bounded GET against a company homepage looking
// for a mailto address or a careers link. Probe failures are absorbed by the
// caller as "no contact found".
type ContactProber struct {
	cfg    ContactProberConfig
	httpc  *httpclient.Client
	robots *robotsCache
	logger *slog.Logger
}

// NewContactProber initializes the prober. Zero-value config fields get
// sensible defaults.
func NewContactProber(cfg ContactProberConfig) (*ContactProber, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.HostLimiter == nil {
		cfg.HostLimiter = ratelimit.NewHostLimiter(1, 1)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}
	if cfg.Proxies != nil {
		if ht, ok := transport.(*http.Transport); ok {
			// The chosen proxy is noted on the request context so the probe
			// can report the outcome back to the pool afterwards.
			ht.Proxy = func(req *http.Request) (*url.URL, error) {
				u := cfg.Proxies.Next()
				if m, ok := req.Context().Value(proxyMarkerKey{}).(*proxyMarker); ok {
					m.url = u
				}
				return u, nil
			}
		}
	}
	httpc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, MaxRedirects: 5, Transport: transport})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	p := &ContactProber{cfg: cfg, httpc: httpc, logger: cfg.Logger}
	if cfg.CheckRobots {
		p.robots = newRobotsCache(httpc, cfg.Logger)
	}
	return p, nil
}

// Probe fetches the homepage and extracts contact hints. It returns an empty
// Contact (not an error) for any HTTP failure; only transport setup problems
// surface as errors.
func (p *ContactProber) Probe(ctx context.Context, homepage string) Contact {
	if homepage == "" {
		return Contact{}
	}

	if p.robots != nil {
		if allowed := p.robots.allowed(ctx, homepage, p.cfg.UAPool.Next()); !allowed {
			p.logger.Debug("contact probe blocked by robots.txt", "homepage", homepage)
			metrics.ContactProbesTotal.WithLabelValues("robots_blocked").Inc()
			return Contact{}
		}
	}

	if err := p.cfg.HostLimiter.WaitURL(ctx, homepage); err != nil {
		return Contact{}
	}

	var marker *proxyMarker
	if p.cfg.Proxies != nil {
		marker = &proxyMarker{}
		ctx = context.WithValue(ctx, proxyMarkerKey{}, marker)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, homepage, nil)
	if err != nil {
		return Contact{}
	}
	req.Header.Set("User-Agent", p.cfg.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.httpc.Do(ctx, req)
	p.reportProxy(marker, err == nil)
	if err != nil {
		p.logger.Debug("contact probe failed", "homepage", homepage, "err", err)
		metrics.ContactProbesTotal.WithLabelValues("error").Inc()
		return Contact{}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		blocked, _ := io.ReadAll(io.LimitReader(resp.Body, contactReadLimit))
		if vendor, ok := botwall.Identify(resp.StatusCode, resp.Header, blocked); ok {
			p.logger.Debug("contact probe hit a bot wall", "homepage", homepage, "vendor", vendor)
			metrics.ContactProbesTotal.WithLabelValues("bot_wall").Inc()
		} else {
			metrics.ContactProbesTotal.WithLabelValues("error").Inc()
		}
		return Contact{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, contactReadLimit))
	if err != nil && len(body) == 0 {
		metrics.ContactProbesTotal.WithLabelValues("error").Inc()
		return Contact{}
	}

	contact := extractContact(string(body))
	if contact.Found() {
		metrics.ContactProbesTotal.WithLabelValues("found").Inc()
	} else {
		metrics.ContactProbesTotal.WithLabelValues("empty").Inc()
	}
	return contact
}

// reportProxy feeds the probe outcome back into the pool so proxies that
// keep failing rotate out for a cooldown.
func (p *ContactProber) reportProxy(m *proxyMarker, ok bool) {
	if m == nil || m.url == nil {
		return
	}
	if ok {
		_ = p.cfg.Proxies.MarkSuccess(m.url)
	} else {
		_ = p.cfg.Proxies.MarkFailure(m.url)
	}
}

// extractContact parses (possibly truncated) homepage HTML for a mailto
// address and a careers-page link.
func extractContact(html string) Contact {
	var c Contact

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return c
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if c.Email == "" {
			if m := emailRe.FindStringSubmatch(href); m != nil {
				c.Email = m[1]
			}
		}
		if c.Careers == "" && careersRe.MatchString(href) {
			c.Careers = href
		}
		return c.Email == "" || c.Careers == ""
	})

	return c
}
