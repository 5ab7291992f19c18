// Package analyze runs the document pipeline: store the upload, extract the
// statements (cached by content hash), compute metrics, decide and assemble the report.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/internal/decision"
	"github.com/wonny/ipo-scorecard/internal/metrics"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

// Request-level failures; the HTTP layer maps them to 400
var (
	ErrNotPDF      = errors.New("only PDF files are accepted")
	ErrEmptyUpload = errors.New("uploaded file is empty")
)

const (
	termsReason   = "Parsed from PDF via schema-constrained extraction"
	qualityReason = "Deterministic calculations on extracted financials"
	sourceTitle   = "Uploaded PDF"
)

// Upload is one document submitted for analysis
type Upload struct {
	Content  []byte
	Filename string
	Slug     string // optional; derived from Filename when empty
}

// Orchestrator wires the collaborators of one analysis run
// ⭐ SSOT: 분석 파이프라인 조율은 여기서만
type Orchestrator struct {
	uploads   contracts.UploadStore
	responses contracts.ResponseCache
	documents contracts.DocumentRepository // optional
	reader    contracts.TextReader
	extractor contracts.Extractor
	engine    *decision.Engine
	memory    contracts.MemoryProbe

	logger *logger.Logger
}

// NewOrchestrator creates a new orchestrator. documents may be nil.
func NewOrchestrator(
	uploads contracts.UploadStore,
	responses contracts.ResponseCache,
	documents contracts.DocumentRepository,
	reader contracts.TextReader,
	extractor contracts.Extractor,
	engine *decision.Engine,
	memory contracts.MemoryProbe,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		uploads:   uploads,
		responses: responses,
		documents: documents,
		reader:    reader,
		extractor: extractor,
		engine:    engine,
		memory:    memory,
		logger:    logger.WithComponent("analyze"),
	}
}

// Run analyzes one upload and returns the report
func (o *Orchestrator) Run(ctx context.Context, up Upload) (*contracts.Report, error) {
	startTime := time.Now()

	if !strings.HasSuffix(strings.ToLower(up.Filename), ".pdf") {
		return nil, ErrNotPDF
	}
	if len(up.Content) == 0 {
		return nil, ErrEmptyUpload
	}

	stored, err := o.uploads.Save(ctx, up.Content)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	slug := up.Slug
	if slug == "" {
		slug = Slug(up.Filename)
	}

	log := o.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"file_id": stored.ID,
		"slug":    slug,
	})
	log.WithField("size", stored.Size).Info("Starting analysis")

	env, err := o.structured(ctx, stored, log)
	if err != nil {
		return nil, err
	}

	o.record(ctx, stored, up.Filename, slug, log)

	card := o.Evaluate(env.Extracted.FinancialRows())
	status := o.memory.ListTools(ctx)

	report := assemble(slug, stored.Path, env, card, status)

	log.WithFields(map[string]interface{}{
		"verdict":  card.Verdict.Label,
		"score":    card.Verdict.Score,
		"rows":     len(env.Extracted.Financials),
		"duration": time.Since(startTime).Seconds(),
	}).Info("Analysis completed")

	return report, nil
}

// Evaluate runs the deterministic core on already-extracted rows
func (o *Orchestrator) Evaluate(rows []contracts.FinancialRow) contracts.Scorecard {
	m := metrics.Compute(rows)
	return contracts.Scorecard{Metrics: m, Verdict: o.engine.Decide(m)}
}

// structured returns the cached extraction, or reads and extracts the document
func (o *Orchestrator) structured(ctx context.Context, stored *contracts.StoredFile, log *logger.Logger) (*contracts.Envelope, error) {
	if env, ok := o.responses.Get(ctx, stored.ID); ok {
		log.Info("Response cache hit")
		return normalize(env), nil
	}

	text, err := o.reader.ReadText(ctx, stored.Path)
	if err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	env, err := o.extractor.ExtractStructured(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract statements: %w", err)
	}
	env = normalize(env)

	if err := o.responses.Set(ctx, stored.ID, env); err != nil {
		log.WithError(err).Warn("Failed to cache structured response")
	}
	return env, nil
}

func (o *Orchestrator) record(ctx context.Context, stored *contracts.StoredFile, filename, slug string, log *logger.Logger) {
	if o.documents == nil {
		return
	}
	doc := &contracts.Document{
		FileID:    stored.ID,
		Filename:  filename,
		Slug:      slug,
		SizeBytes: stored.Size,
	}
	if err := o.documents.Record(ctx, doc); err != nil {
		log.WithError(err).Warn("Failed to record document")
	}
}

// Slug derives a report slug from an upload filename: stem, spaces → '-', lower-case
func Slug(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.ReplaceAll(stem, " ", "-"))
}

func normalize(env *contracts.Envelope) *contracts.Envelope {
	if env == nil {
		return contracts.EmptyEnvelope()
	}
	if env.Extracted.Financials == nil {
		env.Extracted.Financials = []contracts.StatementRow{}
	}
	return env
}

func assemble(slug, path string, env *contracts.Envelope, card contracts.Scorecard, status contracts.MemoryStatus) *contracts.Report {
	reasons := card.Verdict.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	plain := ""
	if len(reasons) > 0 {
		n := len(reasons)
		if n > 2 {
			n = 2
		}
		plain = strings.Join(reasons[:n], " ")
	}

	return &contracts.Report{
		Slug: slug,
		Components: []interface{}{
			contracts.TermsComponent{
				Component:  contracts.ComponentTermsAndFinancials,
				Company:    env.Extracted.Meta.Company,
				Terms:      env.Extracted.Terms,
				Financials: env.Extracted.Financials,
				Reasons:    []string{termsReason},
			},
			contracts.QualityComponent{
				Component: contracts.ComponentFinancialQuality,
				Metrics:   card.Metrics,
				Valuation: map[string]interface{}{},
				Reasons:   []string{qualityReason},
			},
			contracts.VerdictComponent{
				Component:    contracts.ComponentVerdict,
				Verdict:      card.Verdict.Label,
				Confidence:   card.Verdict.Confidence,
				Why:          reasons,
				PlainEnglish: plain,
			},
		},
		Sources:   []contracts.Source{{Title: sourceTitle, URL: path}},
		MCPMemory: status,
	}
}
