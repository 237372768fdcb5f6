package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMetricsServer(t *testing.T) {
	srv := Start(8898)
	// Give it a tiny bit of time to start up
	time.Sleep(100 * time.Millisecond)

	defer srv.Stop(context.Background())

	RecordSearch("search", "200", 1*time.Second)
	SearchRetriesTotal.Inc()
	ContactProbesTotal.WithLabelValues("found").Inc()
	FacetResultsTotal.WithLabelValues("tech_stack", "ok").Inc()

	resp, err := http.Get("http://localhost:8898/metrics")
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	output := string(body)

	for _, want := range []string{
		`agentception_search_requests_total{endpoint="search",status="200"}`,
		"agentception_search_duration_seconds_bucket",
		"agentception_search_retries_total",
		`agentception_contact_probes_total{outcome="found"}`,
		`agentception_facet_results_total{facet="tech_stack",outcome="ok"}`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected metric %s in output", want)
		}
	}
}
