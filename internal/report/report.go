package report

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/docaudit/pkg/types"
)

// ErrNoMethods is returned when there is nothing to report
var ErrNoMethods = errors.New("no methods to report")

const (
	generatedAtLayout = "2006-01-02T15:04:05"
	fileNameLayout    = "20060102_150405"
)

// Document is the XML report root
type Document struct {
	XMLName      xml.Name `xml:"javadoc-analysis-report"`
	GeneratedAt  string   `xml:"generated-at,attr"`
	TotalMethods int      `xml:"total-methods,attr"`
	RunID        string   `xml:"run-id,attr,omitempty"`
	Summary      Summary  `xml:"summary"`
	Methods      []Method `xml:"methods>method"`
}

// Summary holds run-wide statistics
type Summary struct {
	TotalMethods       int          `xml:"total-methods"`
	MethodsWithMetrics int          `xml:"methods-with-metrics"`
	AverageScore       string       `xml:"average-score"`
	Distribution       Distribution `xml:"score-distribution"`
}

// Distribution counts evaluated methods per overall score range
type Distribution struct {
	Score1To2 int `xml:"score-1-2"`
	Score2To3 int `xml:"score-2-3"`
	Score3To4 int `xml:"score-3-4"`
	Score4To5 int `xml:"score-4-5"`
	Score5    int `xml:"score-5"`
}

// Method is one analyzed method
type Method struct {
	Name        string         `xml:"name"`
	ClassName   string         `xml:"class-name"`
	PackageName string         `xml:"package-name"`
	FilePath    string         `xml:"file-path"`
	Signature   string         `xml:"signature"`
	ReturnType  string         `xml:"return-type"`
	StartLine   int            `xml:"start-line"`
	EndLine     int            `xml:"end-line"`
	Parameters  []Parameter    `xml:"parameters>parameter,omitempty"`
	Javadoc     *Javadoc       `xml:"javadoc,omitempty"`
	Result      *MetricsResult `xml:"metrics-result,omitempty"`
}

// Parameter is one declared parameter
type Parameter struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr,omitempty"`
}

// Javadoc is the structured documentation comment
type Javadoc struct {
	Description string      `xml:"description,omitempty"`
	ReturnTag   string      `xml:"return-tag,omitempty"`
	ParamTags   []ParamTag  `xml:"param-tags>param-tag,omitempty"`
	ThrowsTags  []ThrowsTag `xml:"throws-tags>throws-tag,omitempty"`
	OtherTags   []OtherTag  `xml:"other-tags>other-tag,omitempty"`
	RawText     string      `xml:"raw-text,omitempty"`
}

type ParamTag struct {
	Name        string `xml:"name,attr"`
	Description string `xml:"description,omitempty"`
}

type ThrowsTag struct {
	ExceptionType string `xml:"exception-type,attr"`
	Description   string `xml:"description,omitempty"`
}

type OtherTag struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,omitempty"`
}

// MetricsResult is a method's evaluation
type MetricsResult struct {
	OverallScore    string         `xml:"overall-score"`
	Metrics         []MetricResult `xml:"metric-results>metric-result,omitempty"`
	Recommendations []string       `xml:"recommendations>recommendation,omitempty"`
}

// MetricResult is one metric score. Feedback carries the justification.
type MetricResult struct {
	Name      string `xml:"name,attr"`
	Score     int    `xml:"score,attr"`
	Guideline string `xml:"guideline,omitempty"`
	Feedback  string `xml:"feedback,omitempty"`
}

// Build converts methods into a report document
func Build(methods []*types.Method, generatedAt time.Time) *Document {
	doc := &Document{
		GeneratedAt:  generatedAt.Format(generatedAtLayout),
		TotalMethods: len(methods),
		Methods:      make([]Method, 0, len(methods)),
	}

	var sum float64
	for _, m := range methods {
		doc.Methods = append(doc.Methods, convertMethod(m))
		if m.Result == nil {
			continue
		}
		score := m.Result.OverallScore()
		sum += score
		doc.Summary.MethodsWithMetrics++
		doc.Summary.Distribution.add(score)
	}

	avg := 0.0
	if doc.Summary.MethodsWithMetrics > 0 {
		avg = sum / float64(doc.Summary.MethodsWithMetrics)
	}
	doc.Summary.TotalMethods = len(methods)
	doc.Summary.AverageScore = fmt.Sprintf("%.2f", avg)
	return doc
}

func (d *Distribution) add(score float64) {
	switch {
	case score >= 1 && score < 2:
		d.Score1To2++
	case score >= 2 && score < 3:
		d.Score2To3++
	case score >= 3 && score < 4:
		d.Score3To4++
	case score >= 4 && score < 5:
		d.Score4To5++
	case score >= 5:
		d.Score5++
	}
}

func convertMethod(m *types.Method) Method {
	out := Method{
		Name:        m.Name,
		ClassName:   m.ClassName,
		PackageName: m.PackageName,
		FilePath:    m.FilePath,
		Signature:   m.Signature,
		ReturnType:  m.ReturnType,
		StartLine:   m.StartLine,
		EndLine:     m.EndLine,
	}

	for i, name := range m.ParameterNames {
		p := Parameter{Name: name}
		if i < len(m.ParameterTypes) {
			p.Type = m.ParameterTypes[i]
		}
		out.Parameters = append(out.Parameters, p)
	}

	if m.Doc != nil {
		jd := &Javadoc{
			Description: m.Doc.Description,
			ReturnTag:   m.Doc.Return,
			RawText:     m.Doc.Raw,
		}
		for _, p := range m.Doc.Params {
			jd.ParamTags = append(jd.ParamTags, ParamTag{Name: p.Name, Description: p.Description})
		}
		for _, t := range m.Doc.Throws {
			jd.ThrowsTags = append(jd.ThrowsTags, ThrowsTag{ExceptionType: t.Type, Description: t.Description})
		}
		for _, o := range m.Doc.Other {
			jd.OtherTags = append(jd.OtherTags, OtherTag{Name: o.Name, Content: o.Content})
		}
		out.Javadoc = jd
	}

	if m.Result != nil {
		mr := &MetricsResult{
			OverallScore:    fmt.Sprintf("%.2f", m.Result.OverallScore()),
			Recommendations: m.Result.Recommendations(),
		}
		for _, r := range m.Result.Metrics() {
			mr.Metrics = append(mr.Metrics, MetricResult{
				Name:      r.Name,
				Score:     r.Score,
				Guideline: r.Guideline,
				Feedback:  r.Justification,
			})
		}
		out.Result = mr
	}
	return out
}

// Write encodes doc as indented XML with a declaration
func Write(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Read decodes a report written by Write
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &doc, nil
}

// FileName returns the report file name for t
func FileName(t time.Time) string {
	return "javadoc_analysis_" + t.Format(fileNameLayout) + ".xml"
}

// Generator writes report files into a directory
type Generator struct {
	outputDir string
	logger    *slog.Logger
	now       func() time.Time
}

// NewGenerator creates a Generator. A nil logger uses slog.Default().
func NewGenerator(outputDir string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		outputDir: outputDir,
		logger:    logger.With("component", "report"),
		now:       time.Now,
	}
}

// Generate writes methods to a timestamped file and returns its path
func (g *Generator) Generate(methods []*types.Method, runID string) (string, error) {
	if len(methods) == 0 {
		g.logger.Warn("no methods provided for report generation")
		return "", ErrNoMethods
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	now := g.now()
	path := filepath.Join(g.outputDir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}

	doc := Build(methods, now)
	doc.RunID = runID
	if err := Write(f, doc); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}

	g.logger.Info("xml report generated", "path", path, "methods", len(methods))
	return path, nil
}
