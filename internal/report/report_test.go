package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docaudit/pkg/types"
)

func evaluated(name string, scores ...int) *types.Method {
	res := types.NewEvaluationResult()
	names := []string{"Completeness", "Clarity", "Code Alignment"}
	for i, s := range scores {
		res.AddMetric(types.MetricResult{
			Name:          names[i],
			Score:         s,
			Guideline:     "guideline",
			Justification: "because",
			Validated:     true,
		})
	}
	res.AddRecommendation("Document every parameter with @param")
	return &types.Method{
		Name:           name,
		ClassName:      "Widget",
		PackageName:    "com.example",
		FilePath:       "src/Widget.java",
		Signature:      "public int " + name + "(int a, String b)",
		ReturnType:     "int",
		ParameterNames: []string{"a", "b"},
		ParameterTypes: []string{"int", "String"},
		StartLine:      10,
		EndLine:        20,
		Doc: &types.DocComment{
			Description: "Does a thing.",
			Params:      []types.ParamTag{{Name: "a", Description: "first"}},
			Return:      "the count",
			HasReturn:   true,
			Throws:      []types.ThrowsTag{{Type: "IOException", Description: "on failure"}},
			Other:       []types.OtherTag{{Name: "since", Content: "1.2"}},
			Raw:         "/** Does a thing. */",
		},
		Result: res,
	}
}

func TestBuildSummary(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	methods := []*types.Method{
		evaluated("alpha", 5, 5, 5),
		evaluated("beta", 1, 2, 2),
		evaluated("gamma", 4, 3, 3),
		{Name: "delta", ClassName: "Widget"},
	}

	doc := Build(methods, at)

	assert.Equal(t, "2024-03-05T14:07:09", doc.GeneratedAt)
	assert.Equal(t, 4, doc.TotalMethods)
	assert.Equal(t, 4, doc.Summary.TotalMethods)
	assert.Equal(t, 3, doc.Summary.MethodsWithMetrics)
	// (5 + 5/3 + 10/3) / 3
	assert.Equal(t, "3.33", doc.Summary.AverageScore)
	assert.Equal(t, Distribution{Score1To2: 1, Score3To4: 1, Score5: 1}, doc.Summary.Distribution)
	require.Len(t, doc.Methods, 4)
	assert.Nil(t, doc.Methods[3].Result)
	assert.Nil(t, doc.Methods[3].Javadoc)
}

func TestBuildEmpty(t *testing.T) {
	doc := Build(nil, time.Now())
	assert.Equal(t, 0, doc.TotalMethods)
	assert.Equal(t, "0.00", doc.Summary.AverageScore)
	assert.Empty(t, doc.Methods)
}

func TestDistributionBounds(t *testing.T) {
	var d Distribution
	for _, s := range []float64{0, 1, 1.99, 2, 3.5, 4.99, 5} {
		d.add(s)
	}
	assert.Equal(t, Distribution{Score1To2: 2, Score2To3: 1, Score3To4: 1, Score4To5: 1, Score5: 1}, d)
}

func TestWriteLayout(t *testing.T) {
	doc := Build([]*types.Method{evaluated("alpha", 4, 5, 3)}, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	doc.RunID = "run-1"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	for _, want := range []string{
		`<javadoc-analysis-report generated-at="2024-01-02T03:04:05" total-methods="1" run-id="run-1">`,
		`<average-score>4.00</average-score>`,
		`<score-4-5>1</score-4-5>`,
		`<parameter name="a" type="int"></parameter>`,
		`<return-tag>the count</return-tag>`,
		`<param-tag name="a">`,
		`<throws-tag exception-type="IOException">`,
		`<other-tag name="since">`,
		`<raw-text>/** Does a thing. */</raw-text>`,
		`<overall-score>4.00</overall-score>`,
		`<metric-result name="Clarity" score="5">`,
		`<feedback>because</feedback>`,
		`<recommendation>Document every parameter with @param</recommendation>`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestReadRoundTrip(t *testing.T) {
	doc := Build([]*types.Method{evaluated("alpha", 4, 5, 3)}, time.Now())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got.Methods, 1)
	require.NotNil(t, got.Methods[0].Result)
	assert.Len(t, got.Methods[0].Result.Metrics, 3)
	assert.Equal(t, "Widget", got.Methods[0].ClassName)
	assert.Equal(t, "IOException", got.Methods[0].Javadoc.ThrowsTags[0].ExceptionType)
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(strings.NewReader("<javadoc-analysis-report>"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 11, 30, 9, 8, 7, 0, time.UTC)
	assert.Equal(t, "javadoc_analysis_20241130_090807.xml", FileName(at))
}

func TestGenerator(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	g := NewGenerator(dir, nil)
	g.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	t.Run("writes file", func(t *testing.T) {
		path, err := g.Generate([]*types.Method{evaluated("alpha", 3, 3, 3)}, "run-7")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "javadoc_analysis_20240601_120000.xml"), path)

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		doc, err := Read(f)
		require.NoError(t, err)
		assert.Equal(t, "run-7", doc.RunID)
		assert.Equal(t, 1, doc.TotalMethods)
	})

	t.Run("no methods", func(t *testing.T) {
		_, err := g.Generate(nil, "run-8")
		assert.ErrorIs(t, err, ErrNoMethods)
	})
}

func TestScoreCodes(t *testing.T) {
	doc := Build([]*types.Method{
		evaluated("alpha", 4, 5, 3),
		{Name: "skipped"},
		evaluated("gamma", 2),
	}, time.Now())

	mapping := MappingFromNames([]string{"Completeness", "Clarity"})
	assert.Equal(t, map[string]int{"Completeness": 1, "Clarity": 2}, mapping)

	codes := doc.ScoreCodes(mapping)
	assert.Equal(t, []string{"Q1_1-4", "Q1_2-5", "Q3_1-2"}, codes)
}
