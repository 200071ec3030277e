package storage

import (
	"context"
	"time"

	"github.com/dshills/docaudit/pkg/types"
)

// Run status values
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Storage defines the interface for persisting and querying analysis runs
type Storage interface {
	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	FinishRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Method operations
	SaveMethodResult(ctx context.Context, runID string, method *types.Method) (*MethodRecord, error)
	ListMethodResults(ctx context.Context, runID string) ([]*MethodRecord, error)

	// Search operations
	SearchMethods(ctx context.Context, runID string, query string, limit int, filters *SearchFilters) ([]*MethodRecord, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Run is one analysis over a set of source paths
type Run struct {
	ID               string // UUID
	Roots            string // Analyzed paths, comma separated
	Provider         string
	Model            string
	Status           string
	MethodsTotal     int
	MethodsEvaluated int
	BatchesTotal     int
	AverageScore     float64
	Error            string
	StartedAt        time.Time
	FinishedAt       time.Time
}

// MethodRecord is a stored method with its evaluation
type MethodRecord struct {
	ID              int64
	RunID           string
	Name            string
	ClassName       string
	PackageName     string
	FilePath        string
	Signature       string
	StartLine       int
	EndLine         int
	Description     string
	RawDoc          string
	Evaluated       bool
	OverallScore    float64
	Metrics         []types.MetricResult
	Recommendations []string
	CreatedAt       time.Time
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	ClassName     string  // Exact class name
	PackageName   string  // Exact package name
	FilePattern   string  // Glob pattern for file paths
	MaxScore      float64 // Upper bound on overall score, 0 disables
	EvaluatedOnly bool    // Skip methods without a result
}

// FromMethod converts an analyzed method into a record for runID
func FromMethod(runID string, m *types.Method) *MethodRecord {
	rec := &MethodRecord{
		RunID:       runID,
		Name:        m.Name,
		ClassName:   m.ClassName,
		PackageName: m.PackageName,
		FilePath:    m.FilePath,
		Signature:   m.Signature,
		StartLine:   m.StartLine,
		EndLine:     m.EndLine,
		RawDoc:      m.RawDoc,
	}
	if m.Doc != nil {
		rec.Description = m.Doc.Description
	}
	if m.Result != nil {
		rec.Evaluated = true
		rec.OverallScore = m.Result.OverallScore()
		rec.Metrics = m.Result.Metrics()
		rec.Recommendations = m.Result.Recommendations()
	}
	return rec
}

// Result rebuilds the evaluation, or nil for an unevaluated method
func (r *MethodRecord) Result() *types.EvaluationResult {
	if !r.Evaluated {
		return nil
	}
	res := types.NewEvaluationResult()
	for _, m := range r.Metrics {
		res.AddMetric(m)
	}
	for _, rec := range r.Recommendations {
		res.AddRecommendation(rec)
	}
	return res
}

// QualifiedName returns Class.method
func (r *MethodRecord) QualifiedName() string {
	if r.ClassName == "" {
		return r.Name
	}
	return r.ClassName + "." + r.Name
}

// Method rebuilds the stored parts of an analyzed method. Parameter lists
// and doc tags are not persisted.
func (r *MethodRecord) Method() *types.Method {
	m := &types.Method{
		Name:        r.Name,
		ClassName:   r.ClassName,
		PackageName: r.PackageName,
		FilePath:    r.FilePath,
		Signature:   r.Signature,
		StartLine:   r.StartLine,
		EndLine:     r.EndLine,
		RawDoc:      r.RawDoc,
		Result:      r.Result(),
	}
	if r.Description != "" || r.RawDoc != "" {
		m.Doc = &types.DocComment{Description: r.Description, Raw: r.RawDoc}
	}
	return m
}
