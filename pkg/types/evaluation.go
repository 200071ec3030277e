package types

import "encoding/json"

// MetricResult is the outcome for one metric of one method
type MetricResult struct {
	Name          string `json:"name"`
	Score         int    `json:"score"`
	Guideline     string `json:"guideline,omitempty"`
	Justification string `json:"justification,omitempty"`
	Validated     bool   `json:"validated"`
}

// EvaluationResult holds the metric results and recommendations for one
// method. The overall score is derived and cannot be set directly.
type EvaluationResult struct {
	metrics         map[string]MetricResult
	order           []string
	recommendations []string
	overall         float64
}

// NewEvaluationResult returns an empty result with overall score 0
func NewEvaluationResult() *EvaluationResult {
	return &EvaluationResult{metrics: make(map[string]MetricResult)}
}

// AddMetric records a metric result, replacing any earlier result with the
// same name, and recomputes the overall score.
func (r *EvaluationResult) AddMetric(mr MetricResult) {
	if r.metrics == nil {
		r.metrics = make(map[string]MetricResult)
	}
	if _, seen := r.metrics[mr.Name]; !seen {
		r.order = append(r.order, mr.Name)
	}
	r.metrics[mr.Name] = mr
	r.recalculate()
}

func (r *EvaluationResult) recalculate() {
	if len(r.metrics) == 0 {
		r.overall = 0
		return
	}
	total := 0
	for _, mr := range r.metrics {
		total += mr.Score
	}
	r.overall = float64(total) / float64(len(r.metrics))
}

// OverallScore returns the mean of all recorded scores, 0 when none
func (r *EvaluationResult) OverallScore() float64 {
	return r.overall
}

// Metric returns the result recorded for name
func (r *EvaluationResult) Metric(name string) (MetricResult, bool) {
	mr, ok := r.metrics[name]
	return mr, ok
}

// Metrics returns results in first-recorded order
func (r *EvaluationResult) Metrics() []MetricResult {
	out := make([]MetricResult, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.metrics[name])
	}
	return out
}

// Len returns the number of recorded metrics
func (r *EvaluationResult) Len() int {
	return len(r.metrics)
}

// AddRecommendation appends a recommendation, ignoring empty strings
func (r *EvaluationResult) AddRecommendation(rec string) {
	if rec == "" {
		return
	}
	r.recommendations = append(r.recommendations, rec)
}

// Recommendations returns a copy of the recommendation list
func (r *EvaluationResult) Recommendations() []string {
	out := make([]string, len(r.recommendations))
	copy(out, r.recommendations)
	return out
}

type evaluationJSON struct {
	OverallScore    float64        `json:"overall_score"`
	Metrics         []MetricResult `json:"metrics"`
	Recommendations []string       `json:"recommendations"`
}

// MarshalJSON exposes the derived overall score alongside the metrics
func (r *EvaluationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(evaluationJSON{
		OverallScore:    r.OverallScore(),
		Metrics:         r.Metrics(),
		Recommendations: r.Recommendations(),
	})
}

// UnmarshalJSON rebuilds the result through AddMetric so the overall score
// stays derived.
func (r *EvaluationResult) UnmarshalJSON(data []byte) error {
	var raw evaluationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = EvaluationResult{metrics: make(map[string]MetricResult)}
	for _, mr := range raw.Metrics {
		r.AddMetric(mr)
	}
	for _, rec := range raw.Recommendations {
		r.AddRecommendation(rec)
	}
	return nil
}
