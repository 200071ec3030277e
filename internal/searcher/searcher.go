package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/docaudit/internal/storage"
	"github.com/dshills/docaudit/pkg/types"
)

// Limits applied to Query.Limit
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	// ErrMissingRun is returned when a query names no run
	ErrMissingRun = errors.New("run id cannot be empty")
	// ErrInvalidMaxScore is returned for a score bound outside the scale
	ErrInvalidMaxScore = errors.New("max score out of range")
)

// Query selects stored methods of one run
type Query struct {
	RunID         string
	Text          string  // Full-text terms; empty lists every method
	MaxScore      float64 // Only methods scoring at or below this, 0 disables
	ClassName     string
	PackageName   string
	FilePattern   string
	EvaluatedOnly bool
	Limit         int
	UseCache      bool
	CacheTTL      time.Duration
}

// Result is one ranked method
type Result struct {
	Rank   int
	Method *storage.MethodRecord
}

// Response contains search results and metadata
type Response struct {
	Results  []Result
	Total    int
	Duration time.Duration
	CacheHit bool
}

type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Searcher finds weakly documented methods in stored runs
type Searcher struct {
	storage storage.Storage
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store storage.Storage) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Searcher{storage: store, cache: cache}
}

// Search returns methods of q.RunID, lowest overall score first
func (s *Searcher) Search(ctx context.Context, q Query) (*Response, error) {
	start := time.Now()

	if s.storage == nil {
		return nil, fmt.Errorf("storage not initialized")
	}
	if err := validateQuery(&q); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	if q.UseCache {
		if cached, ok := s.checkCache(q); ok {
			cached.CacheHit = true
			cached.Duration = time.Since(start)
			return cached, nil
		}
	}

	records, err := s.storage.SearchMethods(ctx, q.RunID, q.Text, q.Limit, &storage.SearchFilters{
		ClassName:     q.ClassName,
		PackageName:   q.PackageName,
		FilePattern:   q.FilePattern,
		MaxScore:      q.MaxScore,
		EvaluatedOnly: q.EvaluatedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	resp := &Response{Results: make([]Result, 0, len(records))}
	for i, rec := range records {
		resp.Results = append(resp.Results, Result{Rank: i + 1, Method: rec})
	}
	resp.Total = len(resp.Results)
	resp.Duration = time.Since(start)

	if q.UseCache && resp.Total > 0 {
		s.storeInCache(q, resp)
	}
	return resp, nil
}

// validateQuery checks q and fills defaults
func validateQuery(q *Query) error {
	if strings.TrimSpace(q.RunID) == "" {
		return ErrMissingRun
	}
	if q.MaxScore < 0 || q.MaxScore > float64(types.MaxScore) {
		return fmt.Errorf("%w: %.2f", ErrInvalidMaxScore, q.MaxScore)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.CacheTTL == 0 {
		q.CacheTTL = time.Hour
	}
	return nil
}

func (s *Searcher) checkCache(q Query) (*Response, bool) {
	hash := computeQueryHash(q)

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil, false
	}
	resp := copyResponse(entry.response)
	s.cacheMu.RUnlock()
	return resp, true
}

func (s *Searcher) storeInCache(q Query, resp *Response) {
	entry := &cacheEntry{
		response:  copyResponse(resp),
		expiresAt: time.Now().Add(q.CacheTTL),
	}
	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(q), entry)
	s.cacheMu.Unlock()
}

// copyResponse copies the result slice; records are shared and treated as
// read-only.
func copyResponse(src *Response) *Response {
	dst := *src
	dst.Results = append([]Result(nil), src.Results...)
	return &dst
}

// computeQueryHash computes a unique hash for a query
func computeQueryHash(q Query) [32]byte {
	key := fmt.Sprintf("%s|%s|%.2f|%s|%s|%s|%t|%d",
		q.RunID, q.Text, q.MaxScore, q.ClassName, q.PackageName, q.FilePattern, q.EvaluatedOnly, q.Limit)
	return sha256.Sum256([]byte(key))
}

// InvalidateCache drops every cached response. Stored runs are immutable
// once finished, so this is only needed after deleting a run.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}
