package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docaudit/internal/storage"
	"github.com/dshills/docaudit/pkg/types"
)

func method(name, class string, score int) *types.Method {
	m := &types.Method{
		Name:        name,
		ClassName:   class,
		PackageName: "com.acme",
		FilePath:    "src/" + class + ".java",
		Signature:   "public void " + name + "()",
		Result:      types.NewEvaluationResult(),
	}
	m.Result.AddMetric(types.MetricResult{Name: "Completeness", Score: score})
	return m
}

func setup(t *testing.T) (*Searcher, *storage.SQLiteStorage, string) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	run := &storage.Run{ID: uuid.NewString(), Roots: "src"}
	require.NoError(t, store.CreateRun(ctx, run))

	for _, m := range []*types.Method{
		method("load", "Config", 4),
		method("save", "Config", 2),
		method("parseArgs", "Cli", 1),
		method("parseEnv", "Cli", 5),
	} {
		_, err := store.SaveMethodResult(ctx, run.ID, m)
		require.NoError(t, err)
	}
	return NewSearcher(store), store, run.ID
}

func names(resp *Response) []string {
	out := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, r.Method.Name)
	}
	return out
}

func TestSearch(t *testing.T) {
	s, _, runID := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"all methods worst first", Query{RunID: runID}, []string{"parseArgs", "save", "load", "parseEnv"}},
		{"text match", Query{RunID: runID, Text: "parseArgs"}, []string{"parseArgs"}},
		{"max score", Query{RunID: runID, MaxScore: 2}, []string{"parseArgs", "save"}},
		{"class filter", Query{RunID: runID, ClassName: "Config"}, []string{"save", "load"}},
		{"limit", Query{RunID: runID, Limit: 1}, []string{"parseArgs"}},
		{"file pattern", Query{RunID: runID, FilePattern: "src/Cli*"}, []string{"parseArgs", "parseEnv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(resp))
			assert.Equal(t, len(tt.want), resp.Total)
			for i, r := range resp.Results {
				assert.Equal(t, i+1, r.Rank)
			}
		})
	}
}

func TestSearchValidation(t *testing.T) {
	s, _, runID := setup(t)
	ctx := context.Background()

	_, err := s.Search(ctx, Query{})
	assert.ErrorIs(t, err, ErrMissingRun)

	_, err = s.Search(ctx, Query{RunID: runID, MaxScore: 6})
	assert.ErrorIs(t, err, ErrInvalidMaxScore)

	_, err = s.Search(ctx, Query{RunID: runID, MaxScore: -1})
	assert.ErrorIs(t, err, ErrInvalidMaxScore)

	q := Query{RunID: runID, Limit: 1000}
	require.NoError(t, validateQuery(&q))
	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, time.Hour, q.CacheTTL)
}

func TestSearchUnknownRun(t *testing.T) {
	s, _, _ := setup(t)
	resp, err := s.Search(context.Background(), Query{RunID: "missing"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchCache(t *testing.T) {
	s, store, runID := setup(t)
	ctx := context.Background()
	q := Query{RunID: runID, UseCache: true}

	first, err := s.Search(ctx, q)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	// A method saved after the first query is not visible until invalidation
	_, err = store.SaveMethodResult(ctx, runID, method("reset", "Config", 1))
	require.NoError(t, err)

	second, err := s.Search(ctx, q)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, names(first), names(second))

	s.InvalidateCache()
	third, err := s.Search(ctx, q)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Len(t, third.Results, 5)
}

func TestSearchCacheExpiry(t *testing.T) {
	s, _, runID := setup(t)
	ctx := context.Background()
	q := Query{RunID: runID, UseCache: true, CacheTTL: time.Nanosecond}

	_, err := s.Search(ctx, q)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	resp, err := s.Search(ctx, q)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}
