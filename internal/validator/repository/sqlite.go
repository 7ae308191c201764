package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scan-validator/internal/validator/engine"
	"scan-validator/internal/validator/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run or cached verdict does not exist.
var ErrNotFound = errors.New("not found")

// ============================================================
// Models
// ============================================================

// Run is one batch validation pass.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Artifacts int       `json:"artifacts"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRun creates a run with a fresh identifier.
func NewRun(source string, artifacts int) Run {
	return Run{
		ID:        uuid.NewString(),
		Source:    source,
		Artifacts: artifacts,
		CreatedAt: time.Now().UTC(),
	}
}

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the schema migration.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveRun stores a run together with its results in one transaction.
func (r *Repository) SaveRun(ctx context.Context, run Run, results []engine.Result) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO runs (id, source, artifacts, created_at)
        VALUES (?, ?, ?, ?)
    `, run.ID, run.Source, run.Artifacts, run.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range results {
		if err := saveResult(ctx, tx, run.ID, res); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveResult appends one result to an existing run.
func (r *Repository) SaveResult(ctx context.Context, runID string, res engine.Result) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := saveResult(ctx, tx, runID, res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func saveResult(ctx context.Context, db execer, runID string, res engine.Result) error {
	flags, err := json.Marshal(res.Flags)
	if err != nil {
		return fmt.Errorf("encode flags %s: %w", res.ArtifactID, err)
	}
	if _, err := db.ExecContext(ctx, `
        INSERT INTO results (run_id, artifact_id, hash, flags, error)
        VALUES (?, ?, ?, ?, ?)
    `, runID, res.ArtifactID, res.Hash, string(flags), res.Err); err != nil {
		return fmt.Errorf("insert result %s: %w", res.ArtifactID, err)
	}
	if res.Failed() {
		return nil
	}
	return cacheFlags(ctx, db, res.Hash, flags)
}

// GetRun loads run metadata.
func (r *Repository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, source, artifacts, created_at
        FROM runs
        WHERE id = ?
    `, id)

	var (
		run     Run
		created string
	)
	if err := row.Scan(&run.ID, &run.Source, &run.Artifacts, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = ts
	return &run, nil
}

// ListResults returns the results of a run ordered by artifact id.
func (r *Repository) ListResults(ctx context.Context, runID string) ([]engine.Result, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT artifact_id, hash, flags, error
        FROM results
        WHERE run_id = ?
        ORDER BY artifact_id
    `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Result
	for rows.Next() {
		var (
			res   engine.Result
			flags string
		)
		if err := rows.Scan(&res.ArtifactID, &res.Hash, &flags, &res.Err); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(flags), &res.Flags); err != nil {
			return nil, fmt.Errorf("decode flags %s: %w", res.ArtifactID, err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ============================================================
// Verdict cache
// ============================================================

// CachedFlags returns the stored verdict for a scan document hash.
func (r *Repository) CachedFlags(ctx context.Context, hash string) (models.Flags, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT flags FROM scan_cache WHERE hash = ?`, hash).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Flags{}, ErrNotFound
		}
		return models.Flags{}, err
	}

	var flags models.Flags
	if err := json.Unmarshal([]byte(raw), &flags); err != nil {
		return models.Flags{}, fmt.Errorf("decode cached flags: %w", err)
	}
	return flags, nil
}

// CacheFlags stores a verdict for a scan document hash.
func (r *Repository) CacheFlags(ctx context.Context, hash string, flags models.Flags) error {
	data, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("encode flags: %w", err)
	}
	return cacheFlags(ctx, r.db, hash, data)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func cacheFlags(ctx context.Context, db execer, hash string, flags []byte) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO scan_cache (hash, flags, created_at)
        VALUES (?, ?, ?)
        ON CONFLICT(hash) DO UPDATE SET flags = excluded.flags
    `, hash, string(flags), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("cache flags: %w", err)
	}
	return nil
}

// ============================================================
// Connection
// ============================================================

// OpenSQLite opens the results database at dbPath, creating the directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
