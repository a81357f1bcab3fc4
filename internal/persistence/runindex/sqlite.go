// Package runindex keeps a queryable record of simulation runs in SQLite.
package runindex

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"faction-ca/internal/core"
	"faction-ca/internal/sims/factions"
)

// Run is one completed simulation.
type Run struct {
	ID          int64
	StartedAt   time.Time
	Name        string
	Rows        int
	Cols        int
	Factions    int
	Rules       string
	Threads     int
	Workers     int
	Generations int
	DeathToll   int
	Duration    time.Duration
	// Digest identifies the final grid; equal digests mean equal worlds.
	Digest string
	Params map[string]string
}

// Index is a SQLite-backed run index.
type Index struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the index at path.
func OpenSQLite(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			name TEXT NOT NULL,
			rows INTEGER NOT NULL,
			cols INTEGER NOT NULL,
			factions INTEGER NOT NULL,
			rules TEXT NOT NULL,
			threads INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			generations INTEGER NOT NULL,
			death_toll INTEGER NOT NULL,
			duration_us INTEGER NOT NULL,
			digest TEXT NOT NULL,
			params_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS generations (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			generation INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			invaded INTEGER NOT NULL,
			duration_us INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);`,
		`CREATE INDEX IF NOT EXISTS runs_digest ON runs(digest);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (x *Index) Close() error { return x.db.Close() }

// RecordRun stores r and its per-generation stats in one transaction and
// returns the new run id.
func (x *Index) RecordRun(ctx context.Context, r Run, gens []factions.GenerationStat) (int64, error) {
	params := r.Params
	if params == nil {
		params = map[string]string{}
	}
	pj, err := json.Marshal(params)
	if err != nil {
		return 0, err
	}
	started := r.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs
		(started_at, name, rows, cols, factions, rules, threads, workers, generations, death_toll, duration_us, digest, params_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		started.UTC().Format(time.RFC3339Nano), r.Name, r.Rows, r.Cols, r.Factions, r.Rules,
		r.Threads, r.Workers, r.Generations, r.DeathToll, r.Duration.Microseconds(), r.Digest, string(pj))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO generations (run_id, generation, deaths, invaded, duration_us) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, g := range gens {
		invaded := 0
		if g.Invaded {
			invaded = 1
		}
		if _, err := stmt.ExecContext(ctx, id, g.Generation, g.Deaths, invaded, g.Duration.Microseconds()); err != nil {
			return 0, fmt.Errorf("insert generation %d: %w", g.Generation, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (x *Index) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, started_at, name, rows, cols, factions, rules, threads, workers, generations, death_toll, duration_us, digest, params_json
		FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			started string
			durUS   int64
			pj      string
		)
		if err := rows.Scan(&r.ID, &started, &r.Name, &r.Rows, &r.Cols, &r.Factions, &r.Rules,
			&r.Threads, &r.Workers, &r.Generations, &r.DeathToll, &durUS, &r.Digest, &pj); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %d: started_at: %w", r.ID, err)
		}
		r.Duration = time.Duration(durUS) * time.Microsecond
		if err := json.Unmarshal([]byte(pj), &r.Params); err != nil {
			return nil, fmt.Errorf("run %d: params: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Generations returns the per-generation stats of a run in order.
func (x *Index) Generations(ctx context.Context, runID int64) ([]factions.GenerationStat, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT generation, deaths, invaded, duration_us FROM generations WHERE run_id = ? ORDER BY generation`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []factions.GenerationStat
	for rows.Next() {
		var (
			g       factions.GenerationStat
			invaded int
			durUS   int64
		)
		if err := rows.Scan(&g.Generation, &g.Deaths, &invaded, &durUS); err != nil {
			return nil, err
		}
		g.Invaded = invaded != 0
		g.Duration = time.Duration(durUS) * time.Microsecond
		out = append(out, g)
	}
	return out, rows.Err()
}

// Digest returns a stable hex digest of a grid's shape and cells.
func Digest(g *core.Grid) string {
	h := sha256.New()
	var dims [16]byte
	binary.LittleEndian.PutUint64(dims[:8], uint64(g.Rows))
	binary.LittleEndian.PutUint64(dims[8:], uint64(g.Cols))
	h.Write(dims[:])
	cells := g.Cells()
	buf := make([]byte, len(cells))
	for i, f := range cells {
		buf[i] = byte(f)
	}
	h.Write(buf)
	return hex.EncodeToString(h.Sum(nil))
}
