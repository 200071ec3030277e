package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("model-a", "prompt")
	b := CacheKey("model-b", "prompt")
	c := CacheKey("model-a", "prompt")

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b, "model must be part of the key")
	assert.Equal(t, a, c)
	assert.NotEqual(t, CacheKey("ab", "c"), CacheKey("a", "bc"))
}

func TestValidateRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateRequest(Request{}), ErrEmptyPrompt)
	assert.ErrorIs(t, ValidateRequest(Request{Prompt: " \n\t"}), ErrEmptyPrompt)
	assert.NoError(t, ValidateRequest(Request{Prompt: "evaluate"}))
}

func TestCache(t *testing.T) {
	t.Run("get marks cached", func(t *testing.T) {
		cache := NewCache(10)
		cache.Set("k", &Response{Text: "body", Provider: ProviderAnthropic})

		got, ok := cache.Get("k")
		require.True(t, ok)
		assert.Equal(t, "body", got.Text)
		assert.True(t, got.Cached)

		_, ok = cache.Get("missing")
		assert.False(t, ok)
	})

	t.Run("stored value not aliased", func(t *testing.T) {
		cache := NewCache(10)
		resp := &Response{Text: "original"}
		cache.Set("k", resp)
		resp.Text = "changed"

		got, _ := cache.Get("k")
		assert.Equal(t, "original", got.Text)
	})

	t.Run("lru eviction", func(t *testing.T) {
		cache := NewCache(2)
		cache.Set("a", &Response{Text: "a"})
		cache.Set("b", &Response{Text: "b"})
		cache.Set("c", &Response{Text: "c"})

		assert.Equal(t, 2, cache.Size())
		_, ok := cache.Get("a")
		assert.False(t, ok)
	})

	t.Run("invalid size falls back", func(t *testing.T) {
		cache := NewCache(0)
		cache.Set("a", &Response{})
		assert.Equal(t, 1, cache.Size())
		cache.Clear()
		assert.Equal(t, 0, cache.Size())
	})
}

func TestPermanentError(t *testing.T) {
	inner := errors.New("invalid x-api-key")
	err := &PermanentError{StatusCode: 401, Err: inner}

	assert.Contains(t, err.Error(), "401")
	assert.ErrorIs(t, err, inner)
}

func TestRetryWithBackoff(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: 0, MaxDelay: 0, Multiplier: 2}

	t.Run("succeeds after transient errors", func(t *testing.T) {
		calls := 0
		got, err := retryWithBackoff(context.Background(), cfg, func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), cfg, func() (int, error) {
			calls++
			return 0, errors.New("still down")
		})
		assert.EqualError(t, err, "still down")
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), cfg, func() (int, error) {
			calls++
			return 0, &PermanentError{StatusCode: 400, Err: errors.New("bad request")}
		})
		var perm *PermanentError
		assert.ErrorAs(t, err, &perm)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		_, err := retryWithBackoff(ctx, cfg, func() (int, error) {
			calls++
			return 0, errors.New("transient")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), RetryConfig{}, func() (int, error) {
			calls++
			return 1, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}
