package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/docaudit/internal/pipeline"
	"github.com/dshills/docaudit/internal/searcher"
	"github.com/dshills/docaudit/internal/source"
	"github.com/dshills/docaudit/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeNoSources          = -32001 // Path contains no Java sources
	ErrorCodeAnalysisInProgress = -32002 // Another analysis run is active
	ErrorCodeRunNotFound        = -32003 // Run ID is unknown
	ErrorCodeNoEvaluator        = -32004 // No evaluation provider for a live run
)

// maxReportedErrors caps the error list in tool responses
const maxReportedErrors = 5

// handleAnalyzeDocumentation handles the analyze_documentation tool invocation
func (s *Server) handleAnalyzeDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	p := s.live
	if getBoolDefault(args, "dry_run", false) {
		p = s.dryRun
	}
	if p == nil {
		return nil, newMCPError(ErrorCodeNoEvaluator, "no evaluation provider configured", map[string]interface{}{
			"hint": "set ANTHROPIC_API_KEY or pass dry_run",
		})
	}

	units, err := s.source.Load(path)
	if errors.Is(err, source.ErrNoSources) {
		return nil, newMCPError(ErrorCodeNoSources, "no Java sources found", map[string]interface{}{
			"path": path,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load sources", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result, err := p.Run(ctx, units, path)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		return nil, newMCPError(ErrorCodeAnalysisInProgress, "analysis already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "analysis failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	stats := result.Statistics
	response := map[string]interface{}{
		"run_id":              result.RunID,
		"units_scanned":       stats.UnitsScanned,
		"units_failed":        stats.UnitsFailed,
		"methods_extracted":   stats.MethodsExtracted,
		"methods_documented":  stats.MethodsDocumented,
		"methods_evaluated":   stats.MethodsEvaluated,
		"missing_results":     stats.MissingResults,
		"validation_failures": stats.ValidationFailures,
		"batches":             stats.Batches,
		"oversize_batches":    stats.OversizeBatches,
		"average_score":       fmt.Sprintf("%.2f", stats.AverageScore),
		"duration_ms":         stats.Duration.Milliseconds(),
	}
	if n := len(stats.Errors); n > 0 {
		if n > maxReportedErrors {
			response["errors"] = stats.Errors[:maxReportedErrors]
			response["error_count"] = n
		} else {
			response["errors"] = stats.Errors
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetRun handles the get_run tool invocation
func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	runID, ok := args["run_id"].(string)
	if !ok || runID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "run_id parameter is required", map[string]interface{}{
			"param":  "run_id",
			"reason": "missing or empty",
		})
	}

	run, err := s.storage.GetRun(ctx, runID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeRunNotFound, "run not found", map[string]interface{}{
			"run_id": runID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get run", map[string]interface{}{
			"error": err.Error(),
		})
	}

	records, err := s.storage.ListMethodResults(ctx, runID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list methods", map[string]interface{}{
			"error": err.Error(),
		})
	}

	methods := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		methods = append(methods, recordJSON(rec))
	}

	response := map[string]interface{}{
		"run": map[string]interface{}{
			"id":                run.ID,
			"roots":             run.Roots,
			"provider":          run.Provider,
			"model":             run.Model,
			"status":            run.Status,
			"methods_total":     run.MethodsTotal,
			"methods_evaluated": run.MethodsEvaluated,
			"batches_total":     run.BatchesTotal,
			"average_score":     fmt.Sprintf("%.2f", run.AverageScore),
			"error":             run.Error,
			"started_at":        run.StartedAt.Format(time.RFC3339),
			"finished_at":       formatTime(run.FinishedAt),
		},
		"methods": methods,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchMethods handles the search_methods tool invocation
func (s *Server) handleSearchMethods(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	runID, ok := args["run_id"].(string)
	if !ok || runID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "run_id parameter is required", map[string]interface{}{
			"param":  "run_id",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	maxScore := getFloatDefault(args, "max_score", 0)
	if maxScore < 0 || maxScore > 5 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_score must be between 0 and 5", map[string]interface{}{
			"param": "max_score",
			"value": maxScore,
		})
	}

	if _, err := s.storage.GetRun(ctx, runID); errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeRunNotFound, "run not found", map[string]interface{}{
			"run_id": runID,
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.Query{
		RunID:     runID,
		Text:      getStringDefault(args, "query", ""),
		MaxScore:  maxScore,
		ClassName: getStringDefault(args, "class", ""),
		Limit:     limit,
		UseCache:  true,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		entry := recordJSON(r.Method)
		entry["rank"] = r.Rank
		results = append(results, entry)
	}

	response := map[string]interface{}{
		"results":     results,
		"total":       resp.Total,
		"cache_hit":   resp.CacheHit,
		"duration_ms": resp.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

func recordJSON(rec *storage.MethodRecord) map[string]interface{} {
	entry := map[string]interface{}{
		"name":        rec.Name,
		"class":       rec.ClassName,
		"package":     rec.PackageName,
		"file":        rec.FilePath,
		"signature":   rec.Signature,
		"start_line":  rec.StartLine,
		"end_line":    rec.EndLine,
		"description": rec.Description,
		"evaluated":   rec.Evaluated,
	}
	if rec.Evaluated {
		scores := make(map[string]int, len(rec.Metrics))
		for _, m := range rec.Metrics {
			scores[m.Name] = m.Score
		}
		entry["overall_score"] = fmt.Sprintf("%.2f", rec.OverallScore)
		entry["scores"] = scores
		entry["recommendations"] = rec.Recommendations
	}
	return entry
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable .java file or
// directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() && filepath.Ext(path) != source.JavaExt {
		return ErrNotJavaSource
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a numeric parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotJavaSource   = errors.New("path is neither a directory nor a .java file")
)
