package reconciler

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docaudit/internal/metrics"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestReconcile_SimpleScenario(t *testing.T) {
	resp := "METHOD 1 EVALUATION:\nCompleteness: 4\nJustification: ok\nClarity: 5\nJustification: great\n"

	results := New(metrics.Default(), nil).Reconcile(resp, 1)
	require.Len(t, results, 1)

	res := results[1]
	require.NotNil(t, res)
	assert.Equal(t, 4.5, res.OverallScore())

	c, ok := res.Metric("Completeness")
	require.True(t, ok)
	assert.Equal(t, "ok", c.Justification)
	assert.True(t, c.Validated)
	assert.Equal(t, "Comprehensive coverage with minor omissions", c.Guideline)

	cl, _ := res.Metric("Clarity")
	assert.Equal(t, "great", cl.Justification)
}

func TestReconcile_BatchFixture(t *testing.T) {
	results := New(metrics.Default(), nil).Reconcile(loadFixture(t, "batch-response.txt"), 5)
	require.Len(t, results, 5)
	for i := 1; i <= 5; i++ {
		require.Contains(t, results, i)
		assert.Equal(t, 3, results[i].Len(), "method %d", i)
	}

	first := results[1]
	comp, _ := first.Metric("Completeness")
	assert.Equal(t, 4, comp.Score)
	assert.Contains(t, comp.Justification, "covers the essential information")
	align, _ := first.Metric("Code Alignment")
	assert.Equal(t, 5, align.Score)
	assert.Contains(t, align.Justification, "accurately reflects the code")
	assert.InDelta(t, 14.0/3.0, first.OverallScore(), 1e-9)
	assert.Equal(t, []string{
		"Consider adding a brief mention of the initialization of empty collections for items and counts.",
	}, first.Recommendations())

	second := results[2]
	assert.Equal(t, []string{
		"Include information about updating the count.",
		"Consider providing more details on how the count is updated.",
	}, second.Recommendations())

	assert.Empty(t, results[3].Recommendations())
	assert.Equal(t, 5.0, results[3].OverallScore())

	fourth, _ := results[4].Metric("Code Alignment")
	assert.Equal(t, "The method does not throw ArithmeticException itself\nbecause the check happens earlier.", fourth.Justification)
	assert.Contains(t, results[4].Recommendations()[0], "Remove the @throws tag for ArithmeticException")

	assert.Len(t, results[5].Recommendations(), 2)
}

func TestReconcile_SectionsWithThreeMetrics(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		var b strings.Builder
		want := make(map[int]float64)
		for i := 1; i <= n; i++ {
			s1, s2, s3 := 1+i%5, 1+(i+1)%5, 1+(i+3)%5
			fmt.Fprintf(&b, "METHOD %d m%d() EVALUATION:\n", i, i)
			fmt.Fprintf(&b, "Completeness: %d\nJustification: a\n\n", s1)
			fmt.Fprintf(&b, "Clarity: %d\nJustification: b\n\n", s2)
			fmt.Fprintf(&b, "Code Alignment: %d\nJustification: c\n\n", s3)
			b.WriteString("Recommendations:\n1. Do better.\n\n")
			if i < n {
				b.WriteString("---\n\n")
			}
			want[i] = float64(s1+s2+s3) / 3
		}

		results := New(metrics.Default(), nil).Reconcile(b.String(), n)
		require.Len(t, results, n)
		for i, score := range want {
			assert.InDelta(t, score, results[i].OverallScore(), 1e-9)
			assert.Equal(t, 3, results[i].Len())
			assert.Equal(t, []string{"Do better."}, results[i].Recommendations())
		}
	}
}

func TestReconcile_Degenerate(t *testing.T) {
	r := New(metrics.Default(), nil)
	assert.Empty(t, r.Reconcile("", 0))
	assert.Empty(t, r.Reconcile("This is not a valid API response format", 3))

	_, ok := r.ReconcileSingle("nothing here")
	assert.False(t, ok)
}

func TestReconcile_CountMismatchKeepsPartialResults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	resp := "METHOD 2 EVALUATION:\nClarity: 3\n"
	results := New(nil, logger).Reconcile(resp, 3)

	require.Len(t, results, 1)
	_, has1 := results[1]
	assert.False(t, has1)
	assert.Equal(t, 3.0, results[2].OverallScore())
	assert.Contains(t, buf.String(), "section count mismatch")
}

func TestReconcile_ValidationFailureStillRecorded(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	resp := "METHOD 1 x EVALUATION:\nAccuracy: 4\nJustification: n/a\nClarity: 9\nCompleteness: 2\n"
	res, ok := New(metrics.Default(), logger).ReconcileSingle(resp)
	require.True(t, ok)

	acc, ok := res.Metric("Accuracy")
	require.True(t, ok)
	assert.False(t, acc.Validated)
	assert.Empty(t, acc.Guideline)
	assert.Equal(t, "n/a", acc.Justification)

	cl, ok := res.Metric("Clarity")
	require.True(t, ok)
	assert.Equal(t, 9, cl.Score)
	assert.False(t, cl.Validated)

	comp, _ := res.Metric("Completeness")
	assert.True(t, comp.Validated)

	assert.InDelta(t, 5.0, res.OverallScore(), 1e-9)
	assert.Contains(t, buf.String(), "metric validation failed")
}

func TestReconcile_NoCatalog(t *testing.T) {
	res, ok := New(nil, nil).ReconcileSingle("METHOD 1 EVALUATION:\nStyle: 2\n")
	require.True(t, ok)
	m, _ := res.Metric("Style")
	assert.Equal(t, 2, m.Score)
	assert.False(t, m.Validated)
}

func TestReconcile_ZeroMetricsSection(t *testing.T) {
	res, ok := New(nil, nil).ReconcileSingle("METHOD 1 EVALUATION:\nI could not evaluate this.\n")
	require.True(t, ok)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 0.0, res.OverallScore())
}

func TestReconcile_StructuralLabelsIgnored(t *testing.T) {
	resp := "METHOD 1 EVALUATION:\nClarity: 4\nJustification: 3 typos remain\nOverall Assessment: 4\n"
	res, ok := New(nil, nil).ReconcileSingle(resp)
	require.True(t, ok)
	assert.Equal(t, 1, res.Len())
	cl, _ := res.Metric("Clarity")
	assert.Equal(t, "3 typos remain", cl.Justification)
}

func TestSplitSections(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want []Section
	}{
		{
			name: "separator found",
			resp: "METHOD 1 a EVALUATION:\nx\n---\nMETHOD 2 b EVALUATION:\ny",
			want: []Section{{1, "x"}, {2, "y"}},
		},
		{
			name: "no separator falls back to next header",
			resp: "METHOD 1 EVALUATION: x\nMETHOD 2 EVALUATION: y\n---",
			want: []Section{{1, "x"}, {2, "y"}},
		},
		{
			name: "case insensitive",
			resp: "Method 3 foo() Evaluation:\nbody",
			want: []Section{{3, "body"}},
		},
		{
			name: "out of order",
			resp: "METHOD 2 EVALUATION: b\n---\nMETHOD 1 EVALUATION: a",
			want: []Section{{2, "b"}, {1, "a"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSections(tt.resp))
		})
	}
}

func TestRecommendations(t *testing.T) {
	text := "Recommendations:\n1. Update to version 2.0 docs.\n2) Add examples.\n\nTrailing text"
	assert.Equal(t, []string{"Update to version 2.0 docs.", "Add examples."}, recommendations(text))
	assert.Nil(t, recommendations("no marker"))
	assert.Empty(t, recommendations("Recommendations: None"))
}

func TestDuplicateSectionLastWins(t *testing.T) {
	resp := "METHOD 1 EVALUATION:\nClarity: 2\n---\nMETHOD 1 EVALUATION:\nClarity: 4\n"
	results := New(nil, nil).Reconcile(resp, 1)
	require.Len(t, results, 1)
	assert.Equal(t, 4.0, results[1].OverallScore())
}
