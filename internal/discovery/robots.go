package discovery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"

	"github.com/arun3676/agentception/pkg/httpclient"
)

// robotsCache fetches and caches robots.txt per host. Lookups fail open: if
// the file cannot be fetched or parsed, the probe is allowed.
type robotsCache struct {
	mu     sync.Mutex
	byHost map[string]*robotstxt.RobotsData
	httpc  *httpclient.Client
	logger *slog.Logger
}

func newRobotsCache(httpc *httpclient.Client, logger *slog.Logger) *robotsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &robotsCache{
		byHost: make(map[string]*robotstxt.RobotsData),
		httpc:  httpc,
		logger: logger,
	}
}

func (rc *robotsCache) allowed(ctx context.Context, rawURL, userAgent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	data := rc.dataFor(ctx, u)
	if data == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, userAgent)
}

func (rc *robotsCache) dataFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	rc.mu.Lock()
	if data, ok := rc.byHost[u.Host]; ok {
		rc.mu.Unlock()
		return data
	}
	rc.mu.Unlock()

	data := rc.fetch(ctx, u)

	rc.mu.Lock()
	rc.byHost[u.Host] = data
	rc.mu.Unlock()
	return data
}

func (rc *robotsCache) fetch(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	robotsURL := scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	resp, err := rc.httpc.Do(ctx, req)
	if err != nil {
		rc.logger.Debug("robots.txt fetch failed", "host", u.Host, "err", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		rc.logger.Debug("robots.txt parse failed", "host", u.Host, "err", err)
		return nil
	}
	return data
}
