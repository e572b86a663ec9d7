// Package historydb persists submitted cracking jobs and their results so
// a crackserver restart, or a second poll of GET /v1/jobs/{id}, doesn't
// lose work a worker already finished. It is used only by cmd/crackserver;
// the core dungeon/reverser/enumerate packages know nothing about storage.
package historydb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/XMinty77/DungeonCracker/internal/dungeon"
)

// Job is one row of job history: the request that was submitted, plus
// whatever result or error the search produced.
type Job struct {
	Seq   int64
	ID    string
	Mode  string // "prepare", "crack", "crack_partial"
	State string // "QUEUED", "RUNNING", "DONE", "ERROR"

	SpawnerX, SpawnerY, SpawnerZ int32
	Version                      string
	Biome                        string
	FloorSize                    string
	FloorGrid                    string
	BranchStart, BranchEnd       int64

	SubmittedAtUnix int64
	FinishedAtUnix  int64

	Prepare *dungeon.PrepareResult
	Result  *dungeon.CrackResult

	Error   string
	Message string
}

// DB wraps the sqlite connection. Job writes are read-your-writes
// consistent: unlike the teacher's high-throughput tick/audit indexer,
// which buffers through an async channel because nothing ever reads its
// own write back, a client polling GET /v1/jobs/{id} right after
// submitting must see the row it just inserted, so DB serializes access
// through a mutex over a single connection instead.
type DB struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("historydb: empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
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

	return &DB{db: db}, nil
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
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS jobs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			mode TEXT NOT NULL,
			state TEXT NOT NULL,
			spawner_x INTEGER NOT NULL,
			spawner_y INTEGER NOT NULL,
			spawner_z INTEGER NOT NULL,
			version TEXT NOT NULL,
			biome TEXT NOT NULL,
			floor_size TEXT NOT NULL,
			floor_grid TEXT NOT NULL,
			branch_start INTEGER NOT NULL,
			branch_end INTEGER NOT NULL,
			submitted_at_unix INTEGER NOT NULL,
			finished_at_unix INTEGER NOT NULL,
			prepare_json TEXT,
			result_json TEXT,
			error TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_submitted ON jobs(submitted_at_unix, seq);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	return nil
}

func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Close()
}

// InsertJob records a newly-submitted job in the QUEUED state.
func (d *DB) InsertJob(j Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(
		`INSERT INTO jobs(id,mode,state,spawner_x,spawner_y,spawner_z,version,biome,floor_size,floor_grid,branch_start,branch_end,submitted_at_unix,finished_at_unix)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,0)`,
		j.ID, j.Mode, j.State, j.SpawnerX, j.SpawnerY, j.SpawnerZ, j.Version, j.Biome, j.FloorSize, j.FloorGrid, j.BranchStart, j.BranchEnd, j.SubmittedAtUnix,
	)
	return err
}

// UpdateState transitions a job's state, used when a worker picks it up.
func (d *DB) UpdateState(id, state string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(`UPDATE jobs SET state=? WHERE id=?`, state, id)
	return err
}

// FinishPrepare records a completed "prepare" job.
func (d *DB) FinishPrepare(id string, result dungeon.PrepareResult, finishedAtUnix int64) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = d.db.Exec(
		`UPDATE jobs SET state='DONE', prepare_json=?, finished_at_unix=? WHERE id=?`,
		string(b), finishedAtUnix, id,
	)
	return err
}

// FinishCrack records a completed "crack" or "crack_partial" job.
func (d *DB) FinishCrack(id string, result dungeon.CrackResult, finishedAtUnix int64) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = d.db.Exec(
		`UPDATE jobs SET state='DONE', result_json=?, finished_at_unix=? WHERE id=?`,
		string(b), finishedAtUnix, id,
	)
	return err
}

// FinishError records a job that failed before producing a result.
func (d *DB) FinishError(id, code, message string, finishedAtUnix int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(
		`UPDATE jobs SET state='ERROR', error=?, message=?, finished_at_unix=? WHERE id=?`,
		code, message, finishedAtUnix, id,
	)
	return err
}

// GetJob looks up one job by its public ID.
func (d *DB) GetJob(id string) (Job, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	row := d.db.QueryRow(
		`SELECT seq,id,mode,state,spawner_x,spawner_y,spawner_z,version,biome,floor_size,floor_grid,branch_start,branch_end,
		        submitted_at_unix,finished_at_unix,prepare_json,result_json,error,message
		 FROM jobs WHERE id=?`, id,
	)
	return scanJob(row)
}

// ListJobs returns up to limit jobs with seq > sinceCursor, oldest first,
// plus the cursor to pass on the next call. A nextCursor equal to
// sinceCursor means there is nothing more.
func (d *DB) ListJobs(sinceCursor uint64, limit int) ([]Job, uint64, error) {
	if limit <= 0 {
		limit = 50
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rows, err := d.db.Query(
		`SELECT seq,id,mode,state,spawner_x,spawner_y,spawner_z,version,biome,floor_size,floor_grid,branch_start,branch_end,
		        submitted_at_unix,finished_at_unix,prepare_json,result_json,error,message
		 FROM jobs WHERE seq > ? ORDER BY seq ASC LIMIT ?`, sinceCursor, limit,
	)
	if err != nil {
		return nil, sinceCursor, err
	}
	defer rows.Close()

	var out []Job
	next := sinceCursor
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, sinceCursor, err
		}
		out = append(out, j)
		next = uint64(j.Seq)
	}
	if err := rows.Err(); err != nil {
		return nil, sinceCursor, err
	}
	return out, next, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var prepareJSON, resultJSON sql.NullString

	err := row.Scan(
		&j.Seq, &j.ID, &j.Mode, &j.State,
		&j.SpawnerX, &j.SpawnerY, &j.SpawnerZ,
		&j.Version, &j.Biome, &j.FloorSize, &j.FloorGrid,
		&j.BranchStart, &j.BranchEnd,
		&j.SubmittedAtUnix, &j.FinishedAtUnix,
		&prepareJSON, &resultJSON,
		&j.Error, &j.Message,
	)
	if err != nil {
		return Job{}, err
	}

	if prepareJSON.Valid && prepareJSON.String != "" {
		var p dungeon.PrepareResult
		if err := json.Unmarshal([]byte(prepareJSON.String), &p); err != nil {
			return Job{}, err
		}
		j.Prepare = &p
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var r dungeon.CrackResult
		if err := json.Unmarshal([]byte(resultJSON.String), &r); err != nil {
			return Job{}, err
		}
		j.Result = &r
	}
	return j, nil
}
