// Package statsdb persists a run's final per-component counters and
// per-core IPC samples into a local sqlite database, so a batch of runs
// (one sweep over a policy/geometry parameter grid) can be compared
// after the fact without re-parsing each run's text output. Grounded on
// the teacher's tracing.SQLiteTraceWriter: a prepared-statement batch
// writer over a handful of flat tables, opened once per run under a
// unique generated name.
package statsdb

import (
	"database/sql"
	"fmt"

	// registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/simulator"
)

// DB records one or more runs' component counters and IPC samples.
type DB struct {
	db    *sql.DB
	runID string
}

// Open creates (or reuses) the sqlite database at path and starts a
// fresh run with a generated run ID (spec's cross-run comparison key).
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("statsdb: opening %q: %w", path, err)
	}

	d := &DB{db: db, runID: xid.New().String()}

	if err := d.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// RunID identifies this DB's current run across every table.
func (d *DB) RunID() string {
	return d.runID
}

func (d *DB) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS counters (
			run_id    TEXT NOT NULL,
			component TEXT NOT NULL,
			name      TEXT NOT NULL,
			value     INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ipc (
			run_id             TEXT NOT NULL,
			cpu_id             INTEGER NOT NULL,
			checkpoint_icount  INTEGER NOT NULL,
			finish_icount      INTEGER NOT NULL,
			checkpoint_cycle   INTEGER NOT NULL,
			finish_cycle       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS counters_run_idx ON counters (run_id)`,
		`CREATE INDEX IF NOT EXISTS ipc_run_idx ON ipc (run_id)`,
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("statsdb: creating schema: %w", err)
		}
	}

	return nil
}

// WriteCounters persists every counter of each named component. Callers
// pass the same names used to register components with the simulator, so
// a later query can join a run's counters back to its definition file.
func (d *DB) WriteCounters(components map[string]component.Component) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("statsdb: begin: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO counters (run_id, component, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("statsdb: prepare: %w", err)
	}
	defer stmt.Close()

	for name, c := range components {
		for statName, value := range c.StatsRegistry().Snapshot() {
			if _, err := stmt.Exec(d.runID, name, statName, value); err != nil {
				tx.Rollback()
				return fmt.Errorf("statsdb: inserting counter %s.%s: %w", name, statName, err)
			}
		}
	}

	return tx.Commit()
}

// WriteIPC persists every core's IPC record for the current run.
func (d *DB) WriteIPC(records []simulator.IPCRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("statsdb: begin: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ipc (run_id, cpu_id, checkpoint_icount, finish_icount, checkpoint_cycle, finish_cycle) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("statsdb: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(d.runID, r.CPUID, r.CheckpointICount, r.FinishICount, r.CheckpointCycle, r.FinishCycle); err != nil {
			tx.Rollback()
			return fmt.Errorf("statsdb: inserting IPC record for cpu %d: %w", r.CPUID, err)
		}
	}

	return tx.Commit()
}

// Close releases the underlying sqlite connection.
func (d *DB) Close() error {
	return d.db.Close()
}
