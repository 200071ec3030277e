// Package searcher finds weakly documented methods in stored analysis runs.
//
// Results are ordered by overall score, lowest first, so the methods most
// in need of documentation work come first. Optional query text narrows the
// set with SQLite FTS5 over method name, signature and doc description.
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store)
//
//	resp, err := s.Search(ctx, searcher.Query{
//	    RunID:    runID,
//	    Text:     "parse",
//	    MaxScore: 3,
//	    Limit:    10,
//	})
//
//	for _, r := range resp.Results {
//	    fmt.Printf("[%d] %s (score: %.2f)\n",
//	        r.Rank, r.Method.QualifiedName(), r.Method.OverallScore)
//	}
//
// # Caching
//
// With UseCache set, responses are kept in an LRU keyed by a hash of the
// query for CacheTTL (default one hour).
package searcher
