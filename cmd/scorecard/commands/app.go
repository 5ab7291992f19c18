package commands

import (
	"context"
	"fmt"

	"github.com/wonny/ipo-scorecard/internal/analyze"
	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/internal/decision"
	"github.com/wonny/ipo-scorecard/internal/extraction"
	"github.com/wonny/ipo-scorecard/internal/memory"
	"github.com/wonny/ipo-scorecard/internal/pdftext"
	"github.com/wonny/ipo-scorecard/internal/scheduler"
	"github.com/wonny/ipo-scorecard/internal/scheduler/jobs"
	"github.com/wonny/ipo-scorecard/internal/storage"
	"github.com/wonny/ipo-scorecard/pkg/config"
	"github.com/wonny/ipo-scorecard/pkg/database"
	"github.com/wonny/ipo-scorecard/pkg/httputil"
	"github.com/wonny/ipo-scorecard/pkg/logger"
	"github.com/wonny/ipo-scorecard/pkg/redis"
)

// cachePrefix namespaces every Redis key this service writes
const cachePrefix = "scorecard"

// app holds the wired collaborators shared by the commands
type app struct {
	cfg *config.Config
	log *logger.Logger

	engine        *decision.Engine
	scoringSource string

	redis        *redis.Client
	db           *database.DB              // nil without DATABASE_URL
	registry     *storage.DocumentRegistry // nil without DATABASE_URL
	uploads      *storage.UploadStore
	responses    *storage.ResponseCache
	orchestrator *analyze.Orchestrator
}

// newEngine loads the scoring rulebook named by SCORING_CONFIG (built-in default otherwise)
func newEngine(path string) (*decision.Engine, string, error) {
	cfg, err := decision.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	engine, err := decision.NewEngine(*cfg)
	if err != nil {
		return nil, "", err
	}

	source := path
	if source == "" {
		source = "default"
	}
	return engine, source, nil
}

// newApp wires storage, caches and the analysis pipeline.
// Redis and Postgres are optional: failures downgrade to running without them.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	engine, source, err := newEngine(cfg.ScoringConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	a.engine, a.scoringSource = engine, source

	// 1. Redis (shared response cache + rate limiting)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without shared cache")
		a.redis = redis.Disabled()
	}

	// 2. Local stores
	a.uploads, err = storage.NewUploadStore(cfg.UploadDir, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.responses, err = storage.NewResponseCache(cfg.ResponseCacheDir(), redis.NewCache(a.redis, cachePrefix), log)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 3. Document registry (optional)
	var documents contracts.DocumentRepository
	if cfg.Database.Enabled() {
		registry, err := a.openRegistry(ctx)
		if err != nil {
			log.WithError(err).Warn("Document registry unavailable, continuing without it")
		} else {
			documents = registry
		}
	}

	// 4. Extraction
	var extractor contracts.Extractor = extraction.Disabled{}
	if cfg.Gemini.APIKey != "" {
		httpClient := httputil.NewWithTimeout(cfg, log, cfg.Gemini.Timeout).HTTPClient()
		gemini, err := extraction.NewGemini(ctx, cfg.Gemini, httpClient, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		extractor = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, uncached documents cannot be analyzed")
	}

	a.orchestrator = analyze.NewOrchestrator(
		a.uploads,
		a.responses,
		documents,
		pdftext.NewReader(cfg.PDFMaxPages, log),
		extractor,
		a.engine,
		memory.NewProbe(cfg.MCPMemory, log),
		log,
	)

	return a, nil
}

func (a *app) openRegistry(ctx context.Context) (*storage.DocumentRegistry, error) {
	db, err := database.New(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	registry := storage.NewDocumentRegistry(db.Pool)
	if err := registry.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	a.db, a.registry = db, registry
	a.log.Info("Document registry connected")
	return registry, nil
}

// newScheduler registers the retention jobs
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log)
	for _, job := range []scheduler.Job{
		jobs.NewUploadRetentionJob(a.uploads, a.cfg.CleanupSchedule, a.cfg.Retention(), a.log),
		jobs.NewResponseCacheRetentionJob(a.responses, a.cfg.CleanupSchedule, a.cfg.Retention(), a.log),
	} {
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
