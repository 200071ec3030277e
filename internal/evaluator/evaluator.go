package evaluator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyPrompt       = errors.New("prompt cannot be empty")
	ErrProviderFailed    = errors.New("evaluation provider failed")
	ErrUnsupported       = errors.New("unsupported provider")
	ErrNoProviderEnabled = errors.New("no evaluation provider configured")
)

// PermanentError wraps a failure that retrying cannot fix, such as a
// rejected API key.
type PermanentError struct {
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent failure (status %d): %v", e.StatusCode, e.Err)
}

// Unwrap returns the wrapped error
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Request is one rendered prompt
type Request struct {
	Prompt string
}

// Response is the free-text evaluation for one request
type Response struct {
	Text         string
	Provider     string
	Model        string
	Cached       bool
	InputTokens  int
	OutputTokens int
}

// Evaluator sends a prompt to an evaluation service and returns its text
type Evaluator interface {
	// Evaluate submits one prompt and waits for the response
	Evaluate(ctx context.Context, req Request) (*Response, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the evaluator
	Close() error
}

// Cache provides in-memory LRU caching of responses keyed by model and
// prompt hash.
type Cache struct {
	cache *lru.Cache[string, Response]
}

// NewCache creates a new response cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 1000
	}
	cache, err := lru.New[string, Response](maxLen)
	if err != nil {
		cache, _ = lru.New[string, Response](1000)
	}
	return &Cache{cache: cache}
}

// Get returns a cached response marked as Cached
func (c *Cache) Get(key string) (*Response, bool) {
	resp, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	resp.Cached = true
	return &resp, true
}

// Set stores a response
func (c *Cache) Set(key string, resp *Response) {
	c.cache.Add(key, *resp)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// CacheKey hashes model and prompt together so a model change never
// returns a stale evaluation.
func CacheKey(model, prompt string) string {
	h := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(h[:])
}

// ValidateRequest validates an evaluation request
func ValidateRequest(req Request) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
