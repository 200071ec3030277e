package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/docaudit/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRun is returned for a run without an ID
	ErrInvalidRun = errors.New("run id is required")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// Run operations

func createRun(ctx context.Context, q querier, run *Run) error {
	if run.ID == "" {
		return ErrInvalidRun
	}
	if run.Status == "" {
		run.Status = RunRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO runs (id, roots, provider, model, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Roots, run.Provider, run.Model, run.Status, run.StartedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("run %s: %w", run.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

const runColumns = `id, roots, provider, model, status, methods_total, methods_evaluated,
		       batches_total, average_score, error, started_at, finished_at`

func scanRun(scan func(dest ...interface{}) error) (*Run, error) {
	var run Run
	var provider, model, runErr sql.NullString
	var finishedAt sql.NullTime
	err := scan(
		&run.ID, &run.Roots, &provider, &model, &run.Status, &run.MethodsTotal,
		&run.MethodsEvaluated, &run.BatchesTotal, &run.AverageScore, &runErr,
		&run.StartedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Provider = provider.String
	run.Model = model.String
	run.Error = runErr.String
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}

func getRun(ctx context.Context, q querier, id string) (*Run, error) {
	row := q.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func finishRun(ctx context.Context, q querier, run *Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.Status == "" || run.Status == RunRunning {
		run.Status = RunCompleted
		if run.Error != "" {
			run.Status = RunFailed
		}
	}

	result, err := q.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, methods_total = ?, methods_evaluated = ?, batches_total = ?,
		    average_score = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, run.Status, run.MethodsTotal, run.MethodsEvaluated, run.BatchesTotal,
		run.AverageScore, run.Error, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func listRuns(ctx context.Context, q querier, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := q.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func deleteRun(ctx context.Context, q querier, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) CreateRun(ctx context.Context, run *Run) error {
	return createRun(ctx, s.db, run)
}

func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*Run, error) {
	return getRun(ctx, s.db, id)
}

func (s *SQLiteStorage) FinishRun(ctx context.Context, run *Run) error {
	return finishRun(ctx, s.db, run)
}

func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	return listRuns(ctx, s.db, limit)
}

func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	return deleteRun(ctx, s.db, id)
}

// Method operations

// saveMethod inserts the method row followed by its metric and
// recommendation rows. Callers provide the transaction.
func saveMethod(ctx context.Context, q querier, runID string, m *types.Method) (*MethodRecord, error) {
	rec := FromMethod(runID, m)
	now := time.Now()

	result, err := q.ExecContext(ctx, `
		INSERT INTO methods (run_id, name, class_name, package_name, file_path, signature,
		                     start_line, end_line, description, raw_doc, evaluated, overall_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.Name, rec.ClassName, rec.PackageName, rec.FilePath, rec.Signature,
		rec.StartLine, rec.EndLine, rec.Description, rec.RawDoc, rec.Evaluated, rec.OverallScore, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("method %s: %w", rec.QualifiedName(), ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to save method: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	rec.ID = id
	rec.CreatedAt = now

	for i, mr := range rec.Metrics {
		_, err := q.ExecContext(ctx, `
			INSERT INTO metric_results (method_id, position, name, score, guideline, justification, validated)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, i, mr.Name, mr.Score, mr.Guideline, mr.Justification, mr.Validated)
		if err != nil {
			return nil, fmt.Errorf("failed to save metric %s: %w", mr.Name, err)
		}
	}

	for i, text := range rec.Recommendations {
		_, err := q.ExecContext(ctx, `
			INSERT INTO recommendations (method_id, position, text) VALUES (?, ?, ?)
		`, id, i, text)
		if err != nil {
			return nil, fmt.Errorf("failed to save recommendation: %w", err)
		}
	}

	return rec, nil
}

// SaveMethodResult stores a method and its evaluation atomically
func (s *SQLiteStorage) SaveMethodResult(ctx context.Context, runID string, m *types.Method) (*MethodRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := saveMethod(ctx, tx, runID, m)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rec, nil
}

const methodColumns = `m.id, m.run_id, m.name, m.class_name, m.package_name, m.file_path, m.signature,
		       m.start_line, m.end_line, m.description, m.raw_doc, m.evaluated, m.overall_score, m.created_at`

func scanMethods(rows *sql.Rows) ([]*MethodRecord, error) {
	defer func() { _ = rows.Close() }()

	records := make([]*MethodRecord, 0)
	for rows.Next() {
		var rec MethodRecord
		var className, packageName, description, rawDoc sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.Name, &className, &packageName, &rec.FilePath, &rec.Signature,
			&rec.StartLine, &rec.EndLine, &description, &rawDoc, &rec.Evaluated, &rec.OverallScore, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.ClassName = className.String
		rec.PackageName = packageName.String
		rec.Description = description.String
		rec.RawDoc = rawDoc.String
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// attachDetails loads metric and recommendation rows. Rows for the method
// list must already be closed since the pool holds one connection.
func attachDetails(ctx context.Context, q querier, records []*MethodRecord) error {
	for _, rec := range records {
		rows, err := q.QueryContext(ctx, `
			SELECT name, score, guideline, justification, validated
			FROM metric_results WHERE method_id = ? ORDER BY position
		`, rec.ID)
		if err != nil {
			return fmt.Errorf("failed to load metrics: %w", err)
		}
		for rows.Next() {
			var mr types.MetricResult
			var guideline, justification sql.NullString
			if err := rows.Scan(&mr.Name, &mr.Score, &guideline, &justification, &mr.Validated); err != nil {
				_ = rows.Close()
				return err
			}
			mr.Guideline = guideline.String
			mr.Justification = justification.String
			rec.Metrics = append(rec.Metrics, mr)
		}
		if err := rows.Close(); err != nil {
			return err
		}

		rows, err = q.QueryContext(ctx, `
			SELECT text FROM recommendations WHERE method_id = ? ORDER BY position
		`, rec.ID)
		if err != nil {
			return fmt.Errorf("failed to load recommendations: %w", err)
		}
		for rows.Next() {
			var text string
			if err := rows.Scan(&text); err != nil {
				_ = rows.Close()
				return err
			}
			rec.Recommendations = append(rec.Recommendations, text)
		}
		if err := rows.Close(); err != nil {
			return err
		}
	}
	return nil
}

func listMethods(ctx context.Context, q querier, runID string) ([]*MethodRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+methodColumns+`
		FROM methods m
		WHERE m.run_id = ?
		ORDER BY m.id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list methods: %w", err)
	}
	records, err := scanMethods(rows)
	if err != nil {
		return nil, err
	}
	if err := attachDetails(ctx, q, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SQLiteStorage) ListMethodResults(ctx context.Context, runID string) ([]*MethodRecord, error) {
	return listMethods(ctx, s.db, runID)
}

// Search operations

// searchMethods lists a run's methods, worst overall score first. A
// non-empty query restricts results to FTS matches over name, signature
// and description.
func searchMethods(ctx context.Context, q querier, runID, query string, limit int, filters *SearchFilters) ([]*MethodRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	sqlQuery := "SELECT " + methodColumns + " FROM methods m"
	args := []interface{}{}
	order := " ORDER BY m.overall_score ASC, m.id"

	if match := ftsQuery(query); match != "" {
		sqlQuery += " JOIN methods_fts ON methods_fts.rowid = m.id WHERE methods_fts MATCH ? AND m.run_id = ?"
		args = append(args, match, runID)
		order = " ORDER BY m.overall_score ASC, rank"
	} else {
		sqlQuery += " WHERE m.run_id = ?"
		args = append(args, runID)
	}

	sqlQuery, args = applyFilters(sqlQuery, args, filters)
	sqlQuery += order + " LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute method search: %w", err)
	}
	records, err := scanMethods(rows)
	if err != nil {
		return nil, err
	}
	if err := attachDetails(ctx, q, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SQLiteStorage) SearchMethods(ctx context.Context, runID, query string, limit int, filters *SearchFilters) ([]*MethodRecord, error) {
	return searchMethods(ctx, s.db, runID, query, limit, filters)
}

// applyFilters adds WHERE clause filters for method search
func applyFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}
	if filters.ClassName != "" {
		query += " AND m.class_name = ?"
		args = append(args, filters.ClassName)
	}
	if filters.PackageName != "" {
		query += " AND m.package_name = ?"
		args = append(args, filters.PackageName)
	}
	if filters.FilePattern != "" {
		query += " AND m.file_path GLOB ?"
		args = append(args, filters.FilePattern)
	}
	if filters.EvaluatedOnly || filters.MaxScore > 0 {
		query += " AND m.evaluated = 1"
	}
	if filters.MaxScore > 0 {
		query += " AND m.overall_score <= ?"
		args = append(args, filters.MaxScore)
	}
	return query, args
}

// ftsQuery quotes every term so FTS5 operators and punctuation in user
// input are matched literally. Terms are ANDed.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

// Transaction implementations

func (t *sqliteTx) CreateRun(ctx context.Context, run *Run) error {
	return createRun(ctx, t.tx, run)
}

func (t *sqliteTx) GetRun(ctx context.Context, id string) (*Run, error) {
	return getRun(ctx, t.tx, id)
}

func (t *sqliteTx) FinishRun(ctx context.Context, run *Run) error {
	return finishRun(ctx, t.tx, run)
}

func (t *sqliteTx) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	return listRuns(ctx, t.tx, limit)
}

func (t *sqliteTx) DeleteRun(ctx context.Context, id string) error {
	return deleteRun(ctx, t.tx, id)
}

func (t *sqliteTx) SaveMethodResult(ctx context.Context, runID string, m *types.Method) (*MethodRecord, error) {
	return saveMethod(ctx, t.tx, runID, m)
}

func (t *sqliteTx) ListMethodResults(ctx context.Context, runID string) ([]*MethodRecord, error) {
	return listMethods(ctx, t.tx, runID)
}

func (t *sqliteTx) SearchMethods(ctx context.Context, runID, query string, limit int, filters *SearchFilters) ([]*MethodRecord, error) {
	return searchMethods(ctx, t.tx, runID, query, limit, filters)
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (t *sqliteTx) Close() error {
	return errors.New("cannot close transaction, use Commit or Rollback")
}
