package artifact

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/slough-labs/invertflow/internal/unify"
)

//go:embed schema.sql
var schemaSQL string

// Catalog is the SQLite-backed run catalog.
type Catalog struct {
	db *sql.DB
}

// Run is one recorded pipeline run.
type Run struct {
	ID         string
	CreatedAt  time.Time
	ConfigHash string
	Samples    int
	LongRows   int
	Excluded   int
}

// Manifest is one artifact entry of a run.
type Manifest struct {
	Name   string
	Path   string
	Rows   int
	SHA256 string
}

// OpenCatalog creates or opens the run catalog at path, applying the
// required pragmas and the schema. Idempotent; safe to call repeatedly.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection to
	// avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// RecordRun inserts a run, its artifact manifest, and its unmapped-code
// diagnostics in one transaction.
func (c *Catalog) RecordRun(ctx context.Context, run Run, manifests []Manifest, codes []unify.UnmappedCode) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, config_hash, samples, long_rows, excluded)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.ConfigHash,
		run.Samples,
		run.LongRows,
		run.Excluded,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	for _, m := range manifests {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO artifacts (run_id, name, path, rows, sha256)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, m.Name, m.Path, m.Rows, m.SHA256)
		if err != nil {
			return fmt.Errorf("record artifact %s: %w", m.Name, err)
		}
	}

	for _, code := range codes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO unmapped_codes (run_id, kind, code, occurrences)
			VALUES (?, ?, ?, ?)
		`, run.ID, code.Kind, code.Code, code.Occurrences)
		if err != nil {
			return fmt.Errorf("record unmapped code %s/%s: %w", code.Kind, code.Code, err)
		}
	}

	return tx.Commit()
}

// LatestRun returns the most recently recorded run, or sql.ErrNoRows
// wrapped when the catalog is empty.
func (c *Catalog) LatestRun(ctx context.Context) (*Run, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, created_at, config_hash, samples, long_rows, excluded
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	return scanRun(row)
}

// RunByID returns one run by its ID.
func (c *Catalog) RunByID(ctx context.Context, id string) (*Run, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, created_at, config_hash, samples, long_rows, excluded
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	var created string
	if err := row.Scan(&r.ID, &created, &r.ConfigHash, &r.Samples, &r.LongRows, &r.Excluded); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse run timestamp %q: %w", created, err)
	}
	r.CreatedAt = t
	return &r, nil
}

// Artifacts returns a run's manifest ordered by artifact name.
func (c *Catalog) Artifacts(ctx context.Context, runID string) ([]Manifest, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name, path, rows, sha256
		FROM artifacts
		WHERE run_id = ?
		ORDER BY name ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	var out []Manifest
	for rows.Next() {
		var m Manifest
		if err := rows.Scan(&m.Name, &m.Path, &m.Rows, &m.SHA256); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UnmappedCodes returns a run's diagnostics ordered by (kind, code).
func (c *Catalog) UnmappedCodes(ctx context.Context, runID string) ([]unify.UnmappedCode, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT kind, code, occurrences
		FROM unmapped_codes
		WHERE run_id = ?
		ORDER BY kind ASC, code ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query unmapped codes: %w", err)
	}
	defer rows.Close()

	var out []unify.UnmappedCode
	for rows.Next() {
		var u unify.UnmappedCode
		if err := rows.Scan(&u.Kind, &u.Code, &u.Occurrences); err != nil {
			return nil, fmt.Errorf("scan unmapped code: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
