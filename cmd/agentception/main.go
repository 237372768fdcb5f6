// Command agentception runs one discovery-probe-enrich pipeline pass from the
// command line and renders the run document as text, JSON, HTML, or CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arun3676/agentception/internal/discovery"
	"github.com/arun3676/agentception/internal/fingerprint"
	"github.com/arun3676/agentception/internal/match"
	"github.com/arun3676/agentception/internal/metrics"
	"github.com/arun3676/agentception/internal/pipeline"
	"github.com/arun3676/agentception/internal/probe"
	"github.com/arun3676/agentception/internal/report"
	"github.com/arun3676/agentception/internal/research"
	"github.com/arun3676/agentception/internal/resume"
	"github.com/arun3676/agentception/internal/roles"
	"github.com/arun3676/agentception/internal/search"
	"github.com/arun3676/agentception/internal/storage"
	"github.com/arun3676/agentception/internal/storage/jsonbackend"
	"github.com/arun3676/agentception/internal/storage/postgres"
	"github.com/arun3676/agentception/internal/storage/sqlite"
	"github.com/arun3676/agentception/internal/timeline"
	"github.com/arun3676/agentception/pkg/proxy"
)

type options struct {
	city        string
	role        string
	depth       string
	resumePath  string
	rolesPath   string
	proxiesPath string
	store       string
	dsn         string
	format      string
	metricsPort int
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.city, "city", "", "city to search (required)")
	flag.StringVar(&opts.role, "role", "ai engineer", "target role")
	flag.StringVar(&opts.depth, "depth", "standard", "run depth: light, standard, or deep")
	flag.StringVar(&opts.resumePath, "resume", "", "path to a resume text file to attach to the run")
	flag.StringVar(&opts.rolesPath, "roles", "", "path to a role-profile YAML file (built-in table if empty)")
	flag.StringVar(&opts.proxiesPath, "proxies", "", "path to a proxy list, one URL per line")
	flag.StringVar(&opts.store, "store", "memory", "storage backend: memory, sqlite, postgres, or json")
	flag.StringVar(&opts.dsn, "dsn", "", "backend DSN or file path (required for sqlite, postgres, json)")
	flag.StringVar(&opts.format, "format", "text", "output format: text, json, html, or csv")
	flag.IntVar(&opts.metricsPort, "metrics-port", 0, "expose Prometheus metrics on this port (0 disables)")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	logger := newLogger(opts.verbose)
	slog.SetDefault(logger)

	if opts.city == "" {
		fmt.Fprintln(os.Stderr, "usage: agentception -city <city> [-role <role>] [-depth light|standard|deep]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	table, err := loadRoles(opts.rolesPath)
	if err != nil {
		return err
	}

	searcher, err := search.NewClient(search.Config{
		APIKey: os.Getenv("EXA_API_KEY"),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	scorer := newScorer(logger)

	contactProber, err := newContactProber(opts.proxiesPath, logger)
	if err != nil {
		return err
	}

	discoverer, err := discovery.NewDiscoverer(discovery.Config{
		Searcher: searcher,
		Scorer:   scorer,
		Prober:   contactProber,
		Roles:    table,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	prober, err := probe.NewProber(probe.Config{Searcher: searcher, Logger: logger})
	if err != nil {
		return err
	}
	researcher, err := research.NewAgent(research.Config{Searcher: searcher, Logger: logger})
	if err != nil {
		return err
	}

	store, err := openStore(ctx, opts.store, opts.dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	resumes := resume.NewStore()
	var resumeToken string
	if opts.resumePath != "" {
		text, err := os.ReadFile(opts.resumePath)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		resumeToken = resumes.Put(string(text))
	}

	if opts.metricsPort > 0 {
		srv := metrics.Start(opts.metricsPort)
		defer srv.Stop(context.Background())
	}

	coord, err := pipeline.New(pipeline.Config{
		Discoverer: discoverer,
		Prober:     prober,
		Researcher: researcher,
		Store:      store,
		Resumes:    resumes,
		Emitter:    timeline.SlogEmitter{Logger: logger},
		Roles:      table,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	doc, err := coord.Run(ctx, pipeline.Request{
		City:        opts.city,
		Role:        opts.role,
		Depth:       discovery.Depth(strings.ToLower(opts.depth)),
		ResumeToken: resumeToken,
	})
	if err != nil {
		return err
	}

	return render(os.Stdout, opts.format, doc)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadRoles(path string) (*roles.Table, error) {
	if path == "" {
		return roles.Default(), nil
	}
	return roles.Load(path)
}

// newScorer uses semantic matching when an embeddings key is configured and
// falls back to keyword scoring otherwise.
func newScorer(logger *slog.Logger) *match.Scorer {
	key := os.Getenv("VOYAGE_API_KEY")
	if key == "" {
		logger.Info("VOYAGE_API_KEY not set; scoring by keywords only")
		return match.NewScorer(nil, logger)
	}
	embedder, err := match.NewVoyageClient(match.VoyageConfig{APIKey: key})
	if err != nil {
		logger.Warn("embeddings client unavailable; scoring by keywords only", "err", err)
		return match.NewScorer(nil, logger)
	}
	return match.NewScorer(embedder, logger)
}

func newContactProber(proxiesPath string, logger *slog.Logger) (*discovery.ContactProber, error) {
	var pool *proxy.Pool
	if proxiesPath != "" {
		pool = proxy.NewPool(proxy.Config{})
		if err := pool.LoadFile(proxiesPath); err != nil {
			return nil, err
		}
	}
	return discovery.NewContactProber(discovery.ContactProberConfig{
		Fingerprint: fingerprint.ProfileChrome,
		CheckRobots: true,
		Proxies:     pool,
		Logger:      logger,
	})
}

func openStore(ctx context.Context, kind, dsn string) (storage.Backend, error) {
	switch kind {
	case "memory":
		return storage.NewMemory(), nil
	case "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("sqlite backend needs -dsn")
		}
		return sqlite.New(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres backend needs -dsn")
		}
		return postgres.New(ctx, dsn)
	case "json":
		if dsn == "" {
			return nil, fmt.Errorf("json backend needs -dsn (file path)")
		}
		return jsonbackend.New(dsn)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

func render(w *os.File, format string, doc *storage.Document) error {
	switch format {
	case "text":
		return report.WriteText(w, report.GenerateSummary(doc))
	case "json":
		return report.WriteJSON(w, report.GenerateSummary(doc))
	case "html":
		return report.WriteHTML(w, report.GenerateSummary(doc))
	case "csv":
		return report.WriteCSV(w, doc)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
