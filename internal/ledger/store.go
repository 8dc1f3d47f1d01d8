package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vidscribe/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases must be deleted and recreated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists run and chunk state backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the run ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "ledger.db"))
}

// OpenPath opens the ledger database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// BeginRun registers a new run and its planned chunks.
func (s *Store) BeginRun(ctx context.Context, runID, source string, chunkDurationSec int, spans []ChunkSpan) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id required")
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, chunk_duration, total_chunks, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, source, chunkDurationSec, len(spans), RunRunning, now, now,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, span := range spans {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (run_id, chunk_index, start_sec, end_sec, status, updated_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			runID, span.Index, span.StartSec, span.EndSec, ChunkPlanned, now,
		); err != nil {
			return fmt.Errorf("insert chunk %d: %w", span.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// MarkChunk records a chunk status transition along with an optional detail
// message (used for failures).
func (s *Store) MarkChunk(ctx context.Context, runID string, index int, status ChunkStatus, detail string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(ctx,
		`UPDATE chunks SET status = ?, error_message = ?, updated_at = ? WHERE run_id = ? AND chunk_index = ?`,
		status, nullableString(detail), now, runID, index,
	)
}

// MarkChunkDownloaded records a validated artifact for a chunk.
func (s *Store) MarkChunkDownloaded(ctx context.Context, runID string, index int, artifactPath string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(ctx,
		`UPDATE chunks SET status = ?, artifact_path = ?, error_message = NULL, updated_at = ?
         WHERE run_id = ? AND chunk_index = ?`,
		ChunkDownloaded, artifactPath, now, runID, index,
	)
}

// MarkChunkCompleted records the final transcript location for a chunk.
func (s *Store) MarkChunkCompleted(ctx context.Context, runID string, index int, transcriptPath string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(ctx,
		`UPDATE chunks SET status = ?, transcript_path = ?, error_message = NULL, updated_at = ?
         WHERE run_id = ? AND chunk_index = ?`,
		ChunkCompleted, transcriptPath, now, runID, index,
	)
}

// FinishRun records the terminal status of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, errMessage string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, nullableString(errMessage), now, runID,
	)
}

// GetRun fetches a run by identifier. Returns nil when not found.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, chunk_duration, total_chunks, status, error_message, created_at, updated_at
         FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, chunk_duration, total_chunks, status, error_message, created_at, updated_at
         FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListChunks returns the chunk rows for a run ordered by index.
func (s *Store) ListChunks(ctx context.Context, runID string) ([]Chunk, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, chunk_index, start_sec, end_sec, status, artifact_path, transcript_path, error_message, updated_at
         FROM chunks WHERE run_id = ? ORDER BY chunk_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			chunk      Chunk
			artifact   sql.NullString
			transcript sql.NullString
			errMsg     sql.NullString
			updatedAt  string
		)
		if err := rows.Scan(&chunk.RunID, &chunk.Index, &chunk.StartSec, &chunk.EndSec,
			&chunk.Status, &artifact, &transcript, &errMsg, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.ArtifactPath = artifact.String
		chunk.TranscriptPath = transcript.String
		chunk.ErrorMessage = errMsg.String
		chunk.UpdatedAt = parseTimestamp(updatedAt)
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		errMsg    sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&run.ID, &run.Source, &run.ChunkDuration, &run.TotalChunks,
		&run.Status, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	run.ErrorMessage = errMsg.String
	run.CreatedAt = parseTimestamp(createdAt)
	run.UpdatedAt = parseTimestamp(updatedAt)
	return &run, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
