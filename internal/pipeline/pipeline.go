package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/docaudit/internal/batcher"
	"github.com/dshills/docaudit/internal/evaluator"
	"github.com/dshills/docaudit/internal/metrics"
	"github.com/dshills/docaudit/internal/parser"
	"github.com/dshills/docaudit/internal/prompt"
	"github.com/dshills/docaudit/internal/reconciler"
	"github.com/dshills/docaudit/internal/storage"
	"github.com/dshills/docaudit/internal/telemetry"
	"github.com/dshills/docaudit/pkg/types"
)

var (
	// ErrNoEvaluator is returned when a Pipeline is built without an evaluator
	ErrNoEvaluator = errors.New("pipeline requires an evaluator")

	// ErrRunInProgress is returned when Run is called while another run is active
	ErrRunInProgress = errors.New("analysis run already in progress")
)

// Config contains the collaborators and settings for a Pipeline
type Config struct {
	Evaluator evaluator.Evaluator // Required
	Catalog   *metrics.Catalog    // Default catalog when nil
	Storage   storage.Storage     // Optional result sink
	Telemetry *telemetry.Metrics  // Optional
	Logger    *slog.Logger        // slog.Default() when nil

	Batch               batcher.Config
	Workers             int  // Concurrent scanners (default: runtime.NumCPU())
	IncludeUndocumented bool // Evaluate methods without a doc comment
}

// Statistics summarizes one run
type Statistics struct {
	UnitsScanned        int
	UnitsFailed         int
	MethodsExtracted    int
	MethodsDocumented   int
	DeclarationsSkipped int
	Batches             int
	OversizeBatches     int
	MethodsEvaluated    int
	MissingResults      int
	ValidationFailures  int
	AverageScore        float64
	Duration            time.Duration
	Errors              []string
}

// Report is the outcome of a run. Methods keep source order; each carries
// its EvaluationResult, or nil when no result could be matched.
type Report struct {
	RunID      string
	Methods    []*types.Method
	Statistics *Statistics
}

// Pipeline coordinates scan -> batch -> evaluate -> reconcile -> persist
type Pipeline struct {
	parser     *parser.Parser
	assembler  *batcher.Assembler
	renderer   *prompt.Renderer
	reconciler *reconciler.Reconciler
	catalog    *metrics.Catalog
	evaluator  evaluator.Evaluator
	store      storage.Storage
	telemetry  *telemetry.Metrics
	logger     *slog.Logger

	workers             int
	includeUndocumented bool
	lock                RunLock
}

// New creates a Pipeline from cfg
func New(cfg Config) (*Pipeline, error) {
	if cfg.Evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if cfg.Catalog == nil {
		cfg.Catalog = metrics.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Batch == (batcher.Config{}) {
		cfg.Batch = batcher.DefaultConfig()
	}

	return &Pipeline{
		parser:              parser.New(cfg.Logger),
		assembler:           batcher.New(cfg.Batch, cfg.Logger),
		renderer:            prompt.New(cfg.Catalog),
		reconciler:          reconciler.New(cfg.Catalog, cfg.Logger),
		catalog:             cfg.Catalog,
		evaluator:           cfg.Evaluator,
		store:               cfg.Storage,
		telemetry:           cfg.Telemetry,
		logger:              cfg.Logger.With("component", "pipeline"),
		workers:             cfg.Workers,
		includeUndocumented: cfg.IncludeUndocumented,
	}, nil
}

// Run analyzes units. roots describes the analyzed paths for the stored
// run record. Per-unit and per-batch failures are reported in Statistics;
// only cancellation and storage failures abort the run.
func (p *Pipeline) Run(ctx context.Context, units []*types.SourceUnit, roots ...string) (*Report, error) {
	if !p.lock.TryAcquire() {
		return nil, ErrRunInProgress
	}
	defer p.lock.Release()

	start := time.Now()
	report := &Report{
		RunID:      uuid.NewString(),
		Statistics: &Statistics{Errors: make([]string, 0)},
	}
	stats := report.Statistics

	run := &storage.Run{
		ID:       report.RunID,
		Roots:    strings.Join(roots, ","),
		Provider: p.evaluator.Provider(),
		Model:    p.evaluator.Model(),
	}
	if p.store != nil {
		if err := p.store.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
	}

	err := p.analyze(ctx, units, report)
	stats.Duration = time.Since(start)

	if p.store != nil {
		if perr := p.persist(ctx, run, report, err); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return nil, err
	}

	p.logger.Info("analysis complete",
		"run_id", report.RunID,
		"units", stats.UnitsScanned,
		"methods", len(report.Methods),
		"evaluated", stats.MethodsEvaluated,
		"missing", stats.MissingResults,
		"batches", stats.Batches,
		"duration", stats.Duration)
	return report, nil
}

func (p *Pipeline) analyze(ctx context.Context, units []*types.SourceUnit, report *Report) error {
	stats := report.Statistics

	results, err := p.scanUnits(ctx, units, stats)
	if err != nil {
		return fmt.Errorf("failed to scan sources: %w", err)
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		for _, m := range res.Methods {
			stats.MethodsExtracted++
			if m.Doc != nil {
				stats.MethodsDocumented++
			}
			if m.Doc != nil || p.includeUndocumented {
				report.Methods = append(report.Methods, m)
			}
		}
	}

	if len(report.Methods) == 0 {
		p.logger.Warn("no methods to evaluate", "units", len(units))
		return nil
	}

	guidelines := p.catalog.FormattedGuidelines()
	batches := p.assembler.Assemble(report.Methods, guidelines)
	stats.Batches = len(batches)

	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.telemetry.RecordBatch(b.Oversize)
		if b.Oversize {
			stats.OversizeBatches++
		}
		if err := p.evaluateBatch(ctx, b, guidelines, stats); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Errors = append(stats.Errors, fmt.Sprintf("batch %d: %v", b.Index, err))
			stats.MissingResults += b.Len()
			p.logger.Error("batch evaluation failed", "batch", b.Index, "methods", b.Len(), "error", err)
		}
		p.logger.Info("batch processed", "batch", b.Index+1, "of", len(batches), "methods", b.Len())
	}

	stats.AverageScore = averageScore(report.Methods)
	return nil
}

// scanUnits parses units concurrently. The returned slice is parallel to
// units; a unit that fails validation leaves a nil entry.
func (p *Pipeline) scanUnits(ctx context.Context, units []*types.SourceUnit, stats *Statistics) ([]*types.ParseResult, error) {
	results := make([]*types.ParseResult, len(units))
	semaphore := make(chan struct{}, p.workers)

	var (
		scanned int32
		failed  int32
		skipped int32
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, unit := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			if unit == nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.Errors = append(stats.Errors, fmt.Sprintf("unit %d: %v", i, types.ErrMissingSourcePath))
				mu.Unlock()
				p.telemetry.RecordUnit(true, 0, 0)
				return nil
			}
			if err := unit.Validate(); err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.Errors = append(stats.Errors, fmt.Sprintf("unit %d: %v", i, err))
				mu.Unlock()
				p.telemetry.RecordUnit(true, 0, 0)
				return nil
			}

			res := p.parser.Parse(unit)
			results[i] = res
			atomic.AddInt32(&scanned, 1)
			atomic.AddInt32(&skipped, int32(len(res.Errors)))
			p.telemetry.RecordUnit(false, len(res.Methods), len(res.Errors))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.UnitsScanned = int(scanned)
	stats.UnitsFailed = int(failed)
	stats.DeclarationsSkipped = int(skipped)
	return results, nil
}

// evaluateBatch sends one batch and attaches the reconciled results
func (p *Pipeline) evaluateBatch(ctx context.Context, b *types.Batch, guidelines string, stats *Statistics) error {
	text := p.renderer.RenderBatch(b, guidelines, p.assembler.Config().MaxTokens)

	start := time.Now()
	resp, err := p.evaluator.Evaluate(ctx, evaluator.Request{Prompt: text})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		p.telemetry.RecordEvaluation(p.evaluator.Provider(), true, 0, 0, elapsed)
		return err
	}
	p.telemetry.RecordEvaluation(resp.Provider, false, resp.InputTokens, resp.OutputTokens, elapsed)

	results := p.reconciler.Reconcile(resp.Text, b.Len())

	validationFailures, missing := 0, 0
	for i, m := range b.Methods {
		res, ok := results[i+1]
		if !ok {
			missing++
			p.logger.Warn("no evaluation result for method",
				"batch", b.Index,
				"position", i+1,
				"method", m.QualifiedName())
			continue
		}
		m.Result = res
		for _, mr := range res.Metrics() {
			if !mr.Validated {
				validationFailures++
			}
		}
		p.telemetry.ObserveScore(res.OverallScore())
	}

	stats.MethodsEvaluated += b.Len() - missing
	stats.MissingResults += missing
	stats.ValidationFailures += validationFailures
	p.telemetry.RecordReconciliation(len(results), validationFailures, missing)
	return nil
}

// persist writes the run outcome. runErr marks the run failed.
func (p *Pipeline) persist(ctx context.Context, run *storage.Run, report *Report, runErr error) error {
	// Record the final state even when the run was cancelled
	ctx = context.WithoutCancel(ctx)
	stats := report.Statistics

	if runErr == nil {
		if err := p.saveMethods(ctx, report); err != nil {
			runErr = err
		}
	}

	run.MethodsTotal = len(report.Methods)
	run.MethodsEvaluated = stats.MethodsEvaluated
	run.BatchesTotal = stats.Batches
	run.AverageScore = stats.AverageScore
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := p.store.FinishRun(ctx, run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return runErr
}

func (p *Pipeline) saveMethods(ctx context.Context, report *Report) error {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range report.Methods {
		if _, err := tx.SaveMethodResult(ctx, report.RunID, m); err != nil {
			return fmt.Errorf("failed to store %s: %w", m.QualifiedName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func averageScore(methods []*types.Method) float64 {
	var sum float64
	n := 0
	for _, m := range methods {
		if m.Result == nil {
			continue
		}
		sum += m.Result.OverallScore()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
