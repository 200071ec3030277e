// Package storage provides SQLite-based persistence for analysis runs.
//
// The storage layer manages:
//   - Run metadata (paths, provider, model, totals)
//   - Extracted methods with their documentation
//   - Per-metric scores and recommendations
//   - A full-text search index over methods
//
// # Database Schema
//
// Tables:
//   - runs: One row per analysis, keyed by UUID
//   - methods: Methods extracted in a run
//   - metric_results: Metric scores in response order
//   - recommendations: Numbered recommendations in list order
//   - methods_fts: FTS5 index over name, signature and description
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.docaudit/docaudit.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	run := &storage.Run{ID: uuid.NewString(), Roots: "src/main/java"}
//	if err := db.CreateRun(ctx, run); err != nil {
//	    return err
//	}
//
//	for _, m := range methods {
//	    if _, err := db.SaveMethodResult(ctx, run.ID, m); err != nil {
//	        return err
//	    }
//	}
//	err = db.FinishRun(ctx, run)
//
// # Transactions
//
// Use transactions to store a whole run atomically:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	for _, m := range methods {
//	    tx.SaveMethodResult(ctx, run.ID, m)
//	}
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Search
//
// SearchMethods returns the worst documented methods first. Query text is
// matched with FTS5; each whitespace-separated term is quoted, so operators
// such as OR or NEAR in user input are matched literally:
//
//	weak, err := db.SearchMethods(ctx, runID, "parse", 10, &storage.SearchFilters{
//	    MaxScore: 3.0,
//	})
//
// # Build Modes
//
// The default build uses modernc.org/sqlite (pure Go). Building with
// -tags "sqlite_cgo,sqlite_fts5" switches to github.com/mattn/go-sqlite3.
//
// # Migrations
//
// Schema versions are semantic versions applied in order; the highest
// recorded version in schema_version is the current one.
package storage
