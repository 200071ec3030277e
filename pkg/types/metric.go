package types

import "sort"

// Score bounds of the closed rating scale
const (
	MinScore = 1
	MaxScore = 5
)

// Metric is one rubric dimension with a guideline per score
type Metric struct {
	Name        string
	Description string
	Guidelines  map[int]string
	Weight      float64
}

// Guideline returns the guideline text for an exact score
func (m *Metric) Guideline(score int) (string, bool) {
	g, ok := m.Guidelines[score]
	return g, ok
}

// Scores returns the scores that carry a guideline, ascending
func (m *Metric) Scores() []int {
	scores := make([]int, 0, len(m.Guidelines))
	for s := range m.Guidelines {
		scores = append(scores, s)
	}
	sort.Ints(scores)
	return scores
}

// Validate checks the metric definition
func (m *Metric) Validate() error {
	if m.Name == "" {
		return ErrEmptyName
	}
	if len(m.Guidelines) == 0 {
		return ErrMissingGuidelines
	}
	for s := range m.Guidelines {
		if !ValidScore(s) {
			return ErrScoreOutOfRange
		}
	}
	return nil
}

// ValidScore reports whether score lies on the closed scale
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
