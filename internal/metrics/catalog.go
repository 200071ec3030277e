package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/docaudit/pkg/types"
)

var (
	// ErrUnknownMetric is returned for a name the catalog does not define
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrScoreOutOfRange is returned for a score outside 1-5
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrNoGuideline is returned when a known metric has no text for a score
	ErrNoGuideline = errors.New("no guideline for score")

	// ErrEmptyMetricName is returned when validating a blank metric name
	ErrEmptyMetricName = errors.New("metric name cannot be empty")

	// ErrDuplicateMetric is returned when a catalog defines a name twice
	ErrDuplicateMetric = errors.New("duplicate metric")
)

// ValidationError describes a rejected (metric, score) pair
type ValidationError struct {
	Metric    string
	Score     int
	Available []string
	Err       error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnknownMetric):
		return fmt.Sprintf("metric %q is not defined; available metrics: %s",
			e.Metric, strings.Join(e.Available, ", "))
	case errors.Is(e.Err, ErrScoreOutOfRange):
		return fmt.Sprintf("score must be between %d and %d, but was: %d",
			types.MinScore, types.MaxScore, e.Score)
	case errors.Is(e.Err, ErrNoGuideline):
		return fmt.Sprintf("no guideline available for metric %q with score %d", e.Metric, e.Score)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the sentinel error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Catalog is an immutable set of metric definitions in definition order
type Catalog struct {
	byName map[string]types.Metric
	order  []string
}

// NewCatalog validates and copies defs into a new Catalog
func NewCatalog(defs []types.Metric) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]types.Metric, len(defs)),
		order:  make([]string, 0, len(defs)),
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("metric %q: %w", d.Name, err)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMetric, d.Name)
		}

		guidelines := make(map[int]string, len(d.Guidelines))
		for s, g := range d.Guidelines {
			guidelines[s] = g
		}
		d.Guidelines = guidelines

		c.byName[d.Name] = d
		c.order = append(c.order, d.Name)
	}
	return c, nil
}

// Default returns a catalog of DefaultMetrics
func Default() *Catalog {
	c, err := NewCatalog(DefaultMetrics())
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of metrics
func (c *Catalog) Len() int {
	return len(c.order)
}

// Get returns a metric by exact name. The Guidelines map must be treated
// as read-only.
func (c *Catalog) Get(name string) (types.Metric, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// Names returns metric names in definition order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// All returns the metrics in definition order
func (c *Catalog) All() []types.Metric {
	out := make([]types.Metric, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// Validate checks that name is known, score lies on the scale and the
// metric has guideline text for score. Failures are *ValidationError.
func (c *Catalog) Validate(name string, score int) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Metric: name, Score: score, Err: ErrEmptyMetricName}
	}
	m, ok := c.byName[name]
	if !ok {
		return &ValidationError{Metric: name, Score: score, Available: c.Names(), Err: ErrUnknownMetric}
	}
	if !types.ValidScore(score) {
		return &ValidationError{Metric: name, Score: score, Err: ErrScoreOutOfRange}
	}
	if _, ok := m.Guideline(score); !ok {
		return &ValidationError{Metric: name, Score: score, Err: ErrNoGuideline}
	}
	return nil
}

// Guideline returns the guideline text for an exact metric and score
func (c *Catalog) Guideline(name string, score int) (string, bool) {
	m, ok := c.byName[name]
	if !ok {
		return "", false
	}
	return m.Guideline(score)
}

// FormattedGuidelines renders the rating instructions sent with every
// batch.
func (c *Catalog) FormattedGuidelines() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please rate the documentation on the following metrics using a scale of %d-%d:\n\n",
		types.MinScore, types.MaxScore)

	for _, name := range c.order {
		m := c.byName[name]
		fmt.Fprintf(&b, "%s (%d-%d):\n", m.Name, types.MinScore, types.MaxScore)
		fmt.Fprintf(&b, "Description: %s\n", m.Description)
		for s := types.MinScore; s <= types.MaxScore; s++ {
			g, ok := m.Guideline(s)
			if !ok {
				g = fmt.Sprintf("No guideline available for score %d", s)
			}
			fmt.Fprintf(&b, "  %d: %s\n", s, g)
		}
		b.WriteString("\n")
	}

	b.WriteString("For each metric, provide:\n")
	fmt.Fprintf(&b, "1. A numerical rating (%d-%d)\n", types.MinScore, types.MaxScore)
	b.WriteString("2. A brief explanation justifying your rating\n")
	b.WriteString("3. The guideline text that corresponds to your rating\n")
	fmt.Fprintf(&b, "4. Specific recommendations for improvement if the rating is less than %d\n", types.MaxScore)
	return b.String()
}
