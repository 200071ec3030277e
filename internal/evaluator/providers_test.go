package evaluator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/docaudit/internal/metrics"
	"github.com/dshills/docaudit/internal/prompt"
	"github.com/dshills/docaudit/internal/reconciler"
	"github.com/dshills/docaudit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func newTestProvider(t *testing.T, url string, cache *Cache) *AnthropicProvider {
	t.Helper()
	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 5 * time.Second,
		Retry:   fastRetry(),
	}, cache, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func writeMessage(w http.ResponseWriter, texts ...string) {
	content := make([]map[string]any, 0, len(texts))
	for _, text := range texts {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":   DefaultAnthropicModel,
		"content": content,
		"usage":   map[string]int{"input_tokens": 12, "output_tokens": 34},
	})
}

func TestAnthropicProvider(t *testing.T) {
	t.Run("request shape and text concatenation", func(t *testing.T) {
		var got messagesRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, AnthropicVersion, r.Header.Get("anthropic-version"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeMessage(w, "METHOD 1 EVALUATION:\n", "Clarity: 4\n")
		}))
		defer server.Close()

		p := newTestProvider(t, server.URL, nil)
		resp, err := p.Evaluate(context.Background(), Request{Prompt: "evaluate this"})
		require.NoError(t, err)

		assert.Equal(t, "METHOD 1 EVALUATION:\nClarity: 4\n", resp.Text)
		assert.Equal(t, ProviderAnthropic, resp.Provider)
		assert.Equal(t, 12, resp.InputTokens)
		assert.Equal(t, 34, resp.OutputTokens)

		assert.Equal(t, DefaultAnthropicModel, got.Model)
		assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
		assert.Zero(t, got.Temperature)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "user", got.Messages[0].Role)
		assert.Equal(t, "evaluate this", got.Messages[0].Content)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			writeMessage(w, "ok")
		}))
		defer server.Close()

		p := newTestProvider(t, server.URL, nil)
		resp, err := p.Evaluate(context.Background(), Request{Prompt: "p"})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Text)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors are permanent", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, `{"error":"invalid x-api-key"}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		p := newTestProvider(t, server.URL, nil)
		_, err := p.Evaluate(context.Background(), Request{Prompt: "p"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProviderFailed)

		var perm *PermanentError
		require.ErrorAs(t, err, &perm)
		assert.Equal(t, http.StatusUnauthorized, perm.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("rate limited responses are retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		p := newTestProvider(t, server.URL, nil)
		_, err := p.Evaluate(context.Background(), Request{Prompt: "p"})
		assert.ErrorIs(t, err, ErrProviderFailed)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("empty content is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeMessage(w)
		}))
		defer server.Close()

		p := newTestProvider(t, server.URL, nil)
		_, err := p.Evaluate(context.Background(), Request{Prompt: "p"})
		assert.ErrorIs(t, err, ErrProviderFailed)
	})

	t.Run("cache avoids second call", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeMessage(w, "cached body")
		}))
		defer server.Close()

		p := newTestProvider(t, server.URL, NewCache(10))
		first, err := p.Evaluate(context.Background(), Request{Prompt: "same"})
		require.NoError(t, err)
		assert.False(t, first.Cached)

		second, err := p.Evaluate(context.Background(), Request{Prompt: "same"})
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, "cached body", second.Text)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("empty prompt rejected before network", func(t *testing.T) {
		p := newTestProvider(t, "http://127.0.0.1:0", nil)
		_, err := p.Evaluate(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Setenv(EnvAnthropicAPIKey, "")
		_, err := NewAnthropicProvider(AnthropicConfig{}, nil, nil)
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("metadata and defaults", func(t *testing.T) {
		t.Setenv(EnvAnthropicAPIKey, "env-key")
		p, err := NewAnthropicProvider(AnthropicConfig{}, nil, nil)
		require.NoError(t, err)
		defer p.Close()

		assert.Equal(t, ProviderAnthropic, p.Provider())
		assert.Equal(t, DefaultAnthropicModel, p.Model())
		assert.Equal(t, "env-key", p.cfg.APIKey)
		assert.Equal(t, DefaultAnthropicURL, p.cfg.BaseURL)
	})
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Evaluate(ctx, Request{Prompt: "p"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticProvider(t *testing.T) {
	t.Run("canned responses then synthesized", func(t *testing.T) {
		p := NewStaticProvider("first", "second")
		ctx := context.Background()

		r1, err := p.Evaluate(ctx, Request{Prompt: "x"})
		require.NoError(t, err)
		r2, err := p.Evaluate(ctx, Request{Prompt: "x"})
		require.NoError(t, err)
		r3, err := p.Evaluate(ctx, Request{Prompt: "x"})
		require.NoError(t, err)

		assert.Equal(t, "first", r1.Text)
		assert.Equal(t, "second", r2.Text)
		assert.Empty(t, r3.Text, "a prompt without method blocks yields no sections")
		assert.Equal(t, 3, p.Calls())
		assert.Equal(t, ProviderStatic, r3.Provider)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewStaticProvider().Evaluate(ctx, Request{Prompt: "x"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSynthesizeIsReconcilable(t *testing.T) {
	catalog := metrics.Default()
	documented := &types.Method{
		Name:           "add",
		Signature:      "public int add(int a, int b)",
		Body:           "return a + b;",
		RawDoc:         "/** Adds.\n * @param a first\n * @param b second\n * @return sum */",
		ParameterNames: []string{"a", "b"},
		ParameterTypes: []string{"int", "int"},
		ReturnType:     "int",
	}
	partial := &types.Method{
		Name:           "scale",
		Signature:      "public int scale(int a, int factor)",
		Body:           "return a * factor;",
		RawDoc:         "/** Scales.\n * @param a value */",
		ParameterNames: []string{"a", "factor"},
		ParameterTypes: []string{"int", "int"},
		ReturnType:     "int",
	}
	bare := &types.Method{
		Name:       "reset",
		Signature:  "public void reset()",
		Body:       "",
		ReturnType: "void",
	}

	text := prompt.New(catalog).Render([]*types.Method{documented, partial, bare}, catalog.FormattedGuidelines())
	response := Synthesize(text)

	results := reconciler.New(catalog, nil).Reconcile(response, 3)
	require.Len(t, results, 3)

	assert.InDelta(t, 5.0, results[1].OverallScore(), 1e-9)
	assert.Empty(t, results[1].Recommendations())

	assert.InDelta(t, 3.0, results[2].OverallScore(), 1e-9)
	assert.Equal(t, []string{
		"Document every parameter with @param",
		"Describe the return value with @return",
	}, results[2].Recommendations())

	assert.InDelta(t, 1.0, results[3].OverallScore(), 1e-9)
	assert.Equal(t, []string{"Add a Javadoc comment"}, results[3].Recommendations())

	for _, r := range results {
		assert.Equal(t, catalog.Len(), r.Len())
		for _, m := range r.Metrics() {
			assert.True(t, m.Validated, m.Name)
		}
	}
}
