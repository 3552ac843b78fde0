package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Catalog indexes runs in a SQLite database so they can be listed and
// queried without walking the run directories.
type Catalog struct {
	db *sql.DB
}

func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			source      TEXT,
			width       INTEGER NOT NULL,
			height      INTEGER NOT NULL,
			fps         REAL NOT NULL,
			frames      INTEGER NOT NULL,
			seek_policy TEXT,
			output      TEXT,
			metrics     TEXT
		);
		CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
	`)
	return err
}

// Put inserts or replaces the catalog entry for meta.
func (c *Catalog) Put(ctx context.Context, meta RunMetadata) error {
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return fmt.Errorf("storage: encode metrics: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, name, created_at, source, width, height, fps, frames, seek_policy, output, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Timestamp.UnixNano(), meta.Source, meta.Width, meta.Height,
		meta.FPS, meta.Frames, meta.SeekPolicy, meta.Output, string(metrics))
	if err != nil {
		return fmt.Errorf("storage: insert run: %w", err)
	}
	return nil
}

const runColumns = "id, name, created_at, source, width, height, fps, frames, seek_policy, output, metrics"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunMetadata, error) {
	var (
		meta    RunMetadata
		created int64
		source  sql.NullString
		policy  sql.NullString
		output  sql.NullString
		metrics sql.NullString
	)
	if err := row.Scan(&meta.ID, &meta.Name, &created, &source, &meta.Width, &meta.Height,
		&meta.FPS, &meta.Frames, &policy, &output, &metrics); err != nil {
		return RunMetadata{}, err
	}
	meta.Timestamp = time.Unix(0, created)
	meta.Source = source.String
	meta.SeekPolicy = policy.String
	meta.Output = output.String
	if metrics.Valid && metrics.String != "" {
		if err := json.Unmarshal([]byte(metrics.String), &meta.Metrics); err != nil {
			return RunMetadata{}, fmt.Errorf("storage: decode metrics: %w", err)
		}
	}
	if meta.FPS > 0 {
		meta.Duration = float64(meta.Frames) / meta.FPS
	}
	return meta, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (RunMetadata, error) {
	row := c.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	meta, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return RunMetadata{}, fmt.Errorf("storage: load run: %w", err)
	}
	return meta, nil
}

// Recent lists up to limit runs, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]RunMetadata, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunMetadata
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan run: %w", err)
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate runs: %w", err)
	}
	return out, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
