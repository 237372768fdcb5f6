package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentception_search_requests_total",
			Help: "Total number of search API requests executed",
		},
		[]string{"endpoint", "status"},
	)

	SearchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentception_search_retries_total",
			Help: "Total number of rate-limit retries against the search API",
		},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentception_search_duration_seconds",
			Help:    "Duration of search API requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	ContactProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentception_contact_probes_total",
			Help: "Total number of homepage contact probes",
		},
		[]string{"outcome"},
	)

	FacetResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentception_facet_results_total",
			Help: "Intelligence facet gathering outcomes",
		},
		[]string{"facet", "outcome"},
	)
)

// RecordSearch updates the search metrics for one API call.
func RecordSearch(endpoint, status string, d time.Duration) {
	SearchRequestsTotal.WithLabelValues(endpoint, status).Inc()
	SearchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
