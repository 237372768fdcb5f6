// Package pipeline coordinates a full run: discover companies for a (city,
// role) pair, verify which ones are actually hiring, enrich the best of them,
// and persist the result as one run document. Stage progress is narrated on
// the run timeline so a UI or operator can follow along.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/discovery"
	"github.com/arun3676/agentception/internal/probe"
	"github.com/arun3676/agentception/internal/research"
	"github.com/arun3676/agentception/internal/resume"
	"github.com/arun3676/agentception/internal/roles"
	"github.com/arun3676/agentception/internal/storage"
	"github.com/arun3676/agentception/internal/timeline"
)

// Config wires a Coordinator. Discoverer and Prober are required; everything
// else has a working default.
type Config struct {
	Discoverer *discovery.Discoverer
	Prober     *probe.Prober
	// Researcher is optional; without it verified companies are stored
	// unenriched.
	Researcher *research.Agent
	// Store defaults to the in-memory backend.
	Store   storage.Backend
	Resumes *resume.Store
	Emitter timeline.Emitter
	Roles   *roles.Table
	// ProbeTop caps how many discovered candidates get a hiring probe.
	// Defaults to 10.
	ProbeTop int
	// ProbeConcurrency bounds parallel probes. Defaults to 5.
	ProbeConcurrency int
	Logger           *slog.Logger
}

// Request describes one run.
type Request struct {
	City        string
	Role        string
	Depth       discovery.Depth
	ResumeToken string
}

// Coordinator runs the discover-probe-enrich pipeline.
type Coordinator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a coordinator.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Discoverer == nil {
		return nil, fmt.Errorf("pipeline: discoverer is required")
	}
	if cfg.Prober == nil {
		return nil, fmt.Errorf("pipeline: prober is required")
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewMemory()
	}
	if cfg.ProbeTop <= 0 {
		cfg.ProbeTop = 10
	}
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Coordinator{cfg: cfg, logger: cfg.Logger}, nil
}

// Run executes the full pipeline and returns the stored run document. A run
// that finds nothing is a normal, saved run; only infrastructure failures
// (context cancellation, storage) surface as errors.
func (c *Coordinator) Run(ctx context.Context, req Request) (*storage.Document, error) {
	runID := uuid.NewString()
	start := time.Now()

	c.emit(ctx, runID, "scout", timeline.LevelInfo,
		fmt.Sprintf("discovering %s companies in %s (%s)", req.Role, req.City, req.Depth))

	cands, err := c.cfg.Discoverer.Discover(ctx, req.City, req.Role, req.Depth)
	if err != nil {
		c.emit(ctx, runID, "scout", timeline.LevelError, "discovery failed: "+err.Error())
		return nil, fmt.Errorf("discovery stage: %w", err)
	}
	if len(cands) == 0 {
		c.emit(ctx, runID, "scout", timeline.LevelWarn,
			"no companies found; try a broader role or another city")
		return c.finish(ctx, runID, req, nil, start)
	}
	c.emit(ctx, runID, "scout", timeline.LevelInfo,
		fmt.Sprintf("found %d candidate companies", len(cands)))

	hiring, err := c.probeStage(ctx, runID, req.Role, cands)
	if err != nil {
		return nil, err
	}
	if len(hiring) == 0 {
		c.emit(ctx, runID, "prober", timeline.LevelWarn,
			"no open roles confirmed at any candidate company")
		return c.finish(ctx, runID, req, nil, start)
	}
	c.emit(ctx, runID, "prober", timeline.LevelInfo,
		fmt.Sprintf("%d of %d companies have confirmed openings", len(hiring), len(cands)))

	companies := c.enrichStage(ctx, runID, req.Depth, hiring)

	return c.finish(ctx, runID, req, companies, start)
}

// probeStage checks the top candidates for open roles in parallel. Candidate
// order is preserved; candidates without a confirmed posting are dropped.
func (c *Coordinator) probeStage(ctx context.Context, runID, role string, cands []company.Candidate) ([]company.Candidate, error) {
	n := len(cands)
	if n > c.cfg.ProbeTop {
		n = c.cfg.ProbeTop
	}
	probed := cands[:n]
	keywords := c.cfg.Roles.Profile(role).Keywords

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.ProbeConcurrency)
	for i := range probed {
		g.Go(func() error {
			posting, err := c.cfg.Prober.Probe(gctx, probed[i], role, keywords)
			if err != nil {
				return err
			}
			if posting != nil {
				probed[i].JobPosting = posting
				c.emit(gctx, runID, "prober", timeline.LevelInfo,
					fmt.Sprintf("%s is hiring: %s", probed[i].Name, posting.Title))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.emit(ctx, runID, "prober", timeline.LevelError, "probing aborted: "+err.Error())
		return nil, fmt.Errorf("probe stage: %w", err)
	}

	var hiring []company.Candidate
	for _, cand := range probed {
		if cand.JobPosting != nil {
			hiring = append(hiring, cand)
		}
	}
	return hiring, nil
}

// enrichStage wraps every verified company in an intelligence record and
// enriches the top few, depth permitting. Light runs skip enrichment.
func (c *Coordinator) enrichStage(ctx context.Context, runID string, depth discovery.Depth, hiring []company.Candidate) []*company.Intelligence {
	enrichCount, facets := enrichmentPlan(depth)
	if c.cfg.Researcher == nil {
		enrichCount = 0
	}
	if enrichCount > len(hiring) {
		enrichCount = len(hiring)
	}

	out := make([]*company.Intelligence, 0, len(hiring))
	if enrichCount > 0 {
		c.emit(ctx, runID, "researcher", timeline.LevelInfo,
			fmt.Sprintf("enriching top %d companies across %d facets", enrichCount, len(facets)))
		out = append(out, c.cfg.Researcher.Enrich(ctx, hiring[:enrichCount], facets)...)
	}
	for _, cand := range hiring[enrichCount:] {
		out = append(out, company.NewIntelligence(cand))
	}
	return out
}

// enrichmentPlan maps run depth to how many companies get enriched and with
// which facets.
func enrichmentPlan(depth discovery.Depth) (int, []research.Facet) {
	switch depth {
	case discovery.DepthDeep:
		return 5, research.DeepFacets
	case discovery.DepthLight:
		return 0, nil
	default:
		return 3, research.StandardFacets
	}
}

func (c *Coordinator) finish(ctx context.Context, runID string, req Request, companies []*company.Intelligence, start time.Time) (*storage.Document, error) {
	if companies == nil {
		companies = []*company.Intelligence{}
	}

	doc := &storage.Document{
		RunID:       runID,
		City:        req.City,
		Role:        req.Role,
		Depth:       string(req.Depth),
		RoleProfile: c.cfg.Roles.Profile(req.Role),
		Companies:   companies,
		CreatedAt:   start.UTC(),
		Elapsed:     time.Since(start),
	}
	if c.cfg.Resumes != nil && req.ResumeToken != "" {
		doc.ResumeExcerpt = c.cfg.Resumes.Excerpt(req.ResumeToken)
	}

	if err := c.cfg.Store.SaveDocument(ctx, doc); err != nil {
		c.emit(ctx, runID, "coordinator", timeline.LevelError, "failed to save run: "+err.Error())
		return nil, fmt.Errorf("save stage: %w", err)
	}

	c.emit(ctx, runID, "coordinator", timeline.LevelInfo,
		fmt.Sprintf("run complete: %d companies stored in %s", len(companies), time.Since(start).Round(time.Millisecond)))
	return doc, nil
}

// emit narrates run progress. Emitter failures are logged and swallowed;
// losing a timeline event never fails a run.
func (c *Coordinator) emit(ctx context.Context, runID, agent string, level timeline.Level, msg string) {
	if c.cfg.Emitter == nil {
		return
	}
	ev := timeline.Event{RunID: runID, Agent: agent, Message: msg, Level: level, At: time.Now().UTC()}
	if err := c.cfg.Emitter.Emit(ctx, ev); err != nil {
		c.logger.Warn("timeline emit failed", "run_id", runID, "err", err)
	}
}
