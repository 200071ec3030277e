package reconciler

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dshills/docaudit/pkg/types"
)

// Catalog validates metric candidates and supplies guideline text
type Catalog interface {
	Validate(name string, score int) error
	Guideline(name string, score int) (string, bool)
}

const separator = "---"

var (
	headerPattern         = regexp.MustCompile(`(?i)METHOD[ \t]+(\d+)(?:[ \t]+[^\n]*?)?[ \t]*EVALUATION[ \t]*:`)
	metricPattern         = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z][A-Za-z ]*?)[ \t]*:[ \t]*(\d+)(?:[ \t/,)]|$)`)
	justificationPattern  = regexp.MustCompile(`(?i)Justification:\s*`)
	recommendationPattern = regexp.MustCompile(`(?i)Recommendations:\s*`)
	listItemPattern       = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]*`)
)

// structural labels that look like "Label: N" but never name a metric
var structuralLabels = map[string]bool{
	"justification":      true,
	"recommendations":    true,
	"overall assessment": true,
}

// Section is one per-method slice of a response
type Section struct {
	Index int
	Text  string
}

// Reconciler parses evaluation responses. It holds no mutable state and is
// safe for concurrent use if the catalog is.
type Reconciler struct {
	catalog Catalog
	logger  *slog.Logger
}

// New creates a Reconciler. A nil catalog disables validation; a nil logger
// uses slog.Default().
func New(catalog Catalog, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{catalog: catalog, logger: logger.With("component", "reconciler")}
}

// Reconcile parses response into results keyed by 1-based method index.
// It never fails: unparseable input yields an empty map and a count
// different from expected is logged.
func (r *Reconciler) Reconcile(response string, expected int) map[int]*types.EvaluationResult {
	results := make(map[int]*types.EvaluationResult)

	for _, sec := range SplitSections(response) {
		if _, dup := results[sec.Index]; dup {
			r.logger.Debug("duplicate section replaces earlier one", "index", sec.Index)
		}
		results[sec.Index] = r.parseSection(sec)
	}

	if len(results) != expected {
		r.logger.Warn("response section count mismatch",
			"expected", expected,
			"found", len(results))
	}
	return results
}

// ReconcileSingle parses a response for one method
func (r *Reconciler) ReconcileSingle(response string) (*types.EvaluationResult, bool) {
	res, ok := r.Reconcile(response, 1)[1]
	return res, ok
}

// SplitSections locates every method header and slices the text between
// headers.
func SplitSections(response string) []Section {
	matches := headerPattern.FindAllStringSubmatchIndex(response, -1)
	sections := make([]Section, 0, len(matches))

	for i, m := range matches {
		idx, err := strconv.Atoi(response[m[2]:m[3]])
		if err != nil {
			continue
		}

		start := m[1]
		end := len(response)
		if i+1 < len(matches) {
			end = matches[i+1][0]
			if sep := strings.LastIndex(response[start:end], separator); sep >= 0 {
				end = start + sep
			}
		}

		text := strings.TrimSpace(response[start:end])
		text = strings.TrimSpace(strings.TrimSuffix(text, separator))
		sections = append(sections, Section{Index: idx, Text: text})
	}
	return sections
}

// parseSection extracts metrics and recommendations from one section
func (r *Reconciler) parseSection(sec Section) *types.EvaluationResult {
	result := types.NewEvaluationResult()
	text := sec.Text

	matches := metricPattern.FindAllStringSubmatchIndex(text, -1)
	candidates := matches[:0]
	for _, m := range matches {
		label := strings.TrimSpace(text[m[2]:m[3]])
		if !structuralLabels[strings.ToLower(label)] {
			candidates = append(candidates, m)
		}
	}

	for i, m := range candidates {
		name := strings.TrimSpace(text[m[2]:m[3]])
		score, err := strconv.Atoi(text[m[4]:m[5]])
		if err != nil {
			r.logger.Debug("unreadable score skipped", "index", sec.Index, "metric", name)
			continue
		}

		windowEnd := len(text)
		if i+1 < len(candidates) {
			windowEnd = candidates[i+1][0]
		}

		mr := types.MetricResult{
			Name:          name,
			Score:         score,
			Justification: justification(text[m[1]:windowEnd]),
		}
		r.validate(sec.Index, &mr)
		result.AddMetric(mr)
	}

	for _, rec := range recommendations(text) {
		result.AddRecommendation(rec)
	}

	if result.Len() == 0 {
		r.logger.Debug("section has no recognizable metrics", "index", sec.Index)
	}
	return result
}

// validate attaches the guideline for a valid candidate. Invalid
// candidates are kept without one.
func (r *Reconciler) validate(index int, mr *types.MetricResult) {
	if r.catalog == nil {
		return
	}
	if err := r.catalog.Validate(mr.Name, mr.Score); err != nil {
		r.logger.Warn("metric validation failed",
			"index", index,
			"metric", mr.Name,
			"score", mr.Score,
			"error", err)
		return
	}
	if g, ok := r.catalog.Guideline(mr.Name, mr.Score); ok {
		mr.Guideline = g
		mr.Validated = true
	}
}

// justification returns the text after the first "Justification:" marker
// in window, up to a blank line or a line starting with a capital letter.
func justification(window string) string {
	loc := justificationPattern.FindStringIndex(window)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(cutAtBoundary(window[loc[1]:], false))
}

// recommendations returns the numbered items after "Recommendations:"
func recommendations(text string) []string {
	loc := recommendationPattern.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	span := strings.TrimSpace(cutAtBoundary(text[loc[1]:], true))

	starts := listItemPattern.FindAllStringIndex(span, -1)
	items := make([]string, 0, len(starts))
	for i, s := range starts {
		end := len(span)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		if item := strings.TrimSpace(span[s[1]:end]); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// cutAtBoundary truncates s at the first blank line or newline followed by
// an upper-case letter, and optionally at a "---" separator. The first
// character of s is never treated as a boundary.
func cutAtBoundary(s string, stopAtSeparator bool) string {
	end := len(s)
	if i := strings.Index(s, "\n\n"); i >= 0 && i < end {
		end = i
	}
	for i := 0; i+1 < end; i++ {
		if s[i] == '\n' && unicode.IsUpper(rune(s[i+1])) {
			end = i
			break
		}
	}
	if stopAtSeparator {
		if i := strings.Index(s[:end], separator); i >= 0 {
			end = i
		}
	}
	return s[:end]
}
