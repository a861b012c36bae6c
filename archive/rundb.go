// Copyright 2024 Quasar Labs
// This file is part of the Quasar uncertainty quantification toolkit.
//
// Quasar is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quasar is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Quasar. If not, see <http://www.gnu.org/licenses/>.

// Package archive provides an SQLite based archive of sampling runs.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	// Your main or test packages require this import so the sql package is properly initialized.
	_ "github.com/mattn/go-sqlite3"
)

const (
	// bufferSize of the in-memory buffer for storing sample records
	bufferSize = 1000

	// SQL statement for inserting a new run record
	insertRunSQL = `
INSERT INTO runs (
	method, dimension, seed, tag
) VALUES (
	?, ?, ?, ?
)
`
	// SQL statement for inserting one coordinate of a sample point
	insertSampleSQL = `
INSERT INTO samples (
	runId, sampleIdx, axis, value, weight
) VALUES (
	?, ?, ?, ?, ?
)
`

	// SQL statement for inserting a run diagnostic
	insertDiagnosticSQL = `
INSERT INTO diagnostics (
	runId, name, value
) VALUES (
	?, ?, ?
)
`

	// SQL statement for creating archive tables
	createSQL = `
PRAGMA journal_mode = MEMORY;
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	createTimestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	method TEXT,
	dimension INTEGER,
	seed INTEGER,
	tag TEXT
);
CREATE TABLE IF NOT EXISTS samples (
	runId INTEGER,
	sampleIdx INTEGER,
	axis INTEGER,
	value FLOAT,
	weight FLOAT
);
CREATE TABLE IF NOT EXISTS diagnostics (
	runId INTEGER,
	name TEXT,
	value FLOAT
);
`

	// SQL statement for listing archived runs with their draw counts
	selectRunsSQL = `
SELECT r.id, r.method, r.dimension, r.seed, r.tag, r.createTimestamp,
	(SELECT COUNT(DISTINCT s.sampleIdx) FROM samples s WHERE s.runId = r.id) AS drawn
FROM runs r
ORDER BY r.id
`

	// SQL statement for reading the sample points of one run
	selectSamplesSQL = `
SELECT sampleIdx, axis, value, weight
FROM samples
WHERE runId = ?
ORDER BY sampleIdx, axis
`

	// SQL statement for reading the diagnostics of one run
	selectDiagnosticsSQL = `
SELECT name, value
FROM diagnostics
WHERE runId = ?
ORDER BY name
`
)

// Sample is one archived draw of a run. The point is stored as one row
// per coordinate so runs of any dimension share a single table.
type Sample struct {
	Run    int64     // run the sample belongs to
	Index  int       // draw index within the run
	Point  []float64 // sample coordinates
	Weight float64   // sample weight, 1 for unweighted methods
}

// Run describes one archived run.
type Run struct {
	ID        int64     `db:"id"`
	Method    string    `db:"method"`
	Dimension int       `db:"dimension"`
	Seed      int64     `db:"seed"`
	Tag       string    `db:"tag"`
	Created   time.Time `db:"createTimestamp"`
	Drawn     int       `db:"drawn"`
}

// Diagnostic is one named scalar recorded for a run.
type Diagnostic struct {
	Name  string  `db:"name"`
	Value float64 `db:"value"`
}

// sampleRow is the wide format a sample point is stored in.
type sampleRow struct {
	Index  int     `db:"sampleIdx"`
	Axis   int     `db:"axis"`
	Value  float64 `db:"value"`
	Weight float64 `db:"weight"`
}

//go:generate mockgen -source rundb.go -destination rundb_mock.go -package archive
type RunDB interface {
	Close() error
	BeginRun(method string, dimension int, seed int64, tag string) (int64, error)
	Add(sample Sample) error
	Flush() error
	AddDiagnostic(run int64, name string, value float64) error
	Runs() ([]Run, error)
	Samples(run int64) ([][]float64, []float64, error)
	Diagnostics(run int64) ([]Diagnostic, error)
	DeleteRun(run int64) (int64, error)
}

// runDB is an archive database for sampling runs.
type runDB struct {
	sql        *sqlx.DB  // Sqlite3 database
	runStmt    *sql.Stmt // Prepared insert statement for a run
	sampleStmt *sql.Stmt // Prepared insert statement for a sample coordinate
	diagStmt   *sql.Stmt // Prepared insert statement for a diagnostic
	buffer     []Sample  // record buffer
}

// NewRunDB constructs a new archive database.
func NewRunDB(dbFile string) (RunDB, error) {
	return newRunDB(dbFile)
}

func newRunDB(dbFile string) (*runDB, error) {
	// open SQLITE3 DB
	sqlDB, err := sqlx.Open("sqlite3", dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %v; %v", dbFile, err)
	}
	// create archive schema if not exists
	if _, err = sqlDB.Exec(createSQL); err != nil {
		return nil, fmt.Errorf("sqlDB.Exec, err: %q", err)
	}
	// prepare INSERT statements for subsequent use
	runStmt, err := sqlDB.Prepare(insertRunSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare a SQL statement for runs; %v", err)
	}
	sampleStmt, err := sqlDB.Prepare(insertSampleSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare a SQL statement for samples; %v", err)
	}
	diagStmt, err := sqlDB.Prepare(insertDiagnosticSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare a SQL statement for diagnostics; %v", err)
	}

	return &runDB{
		sql:        sqlDB,
		runStmt:    runStmt,
		sampleStmt: sampleStmt,
		diagStmt:   diagStmt,
		buffer:     make([]Sample, 0, bufferSize),
	}, nil
}

// Close flushes buffered samples and closes the archive database.
func (db *runDB) Close() error {
	defer func() {
		db.diagStmt.Close()
		db.sampleStmt.Close()
		db.runStmt.Close()
		db.sql.Close()
	}()
	if err := db.Flush(); err != nil {
		return err
	}
	return nil
}

// BeginRun inserts a run record and returns its archive id. Samples and
// diagnostics added afterwards reference the run through this id. The
// tag is a free-form label and may stay empty.
func (db *runDB) BeginRun(method string, dimension int, seed int64, tag string) (int64, error) {
	if method == "" {
		return 0, errors.New("a method name is required")
	}
	if dimension <= 0 {
		return 0, fmt.Errorf("BeginRun: dimension must be positive; got %d", dimension)
	}
	res, err := db.runStmt.Exec(method, dimension, seed, tag)
	if err != nil {
		return 0, fmt.Errorf("failed to insert a run record; %v", err)
	}
	return res.LastInsertId()
}

// Add a sample record to the archive database.
func (db *runDB) Add(sample Sample) error {
	if sample.Run <= 0 {
		return errors.New("the sample is not attached to a run")
	}
	if len(sample.Point) == 0 {
		return errors.New("the sample has no coordinates")
	}
	db.buffer = append(db.buffer, sample)
	if len(db.buffer) == cap(db.buffer) {
		if err := db.Flush(); err != nil {
			return fmt.Errorf("unable to flush archived samples: %w", err)
		}
	}
	return nil
}

// Flush the buffered sample records into the database.
func (db *runDB) Flush() error {
	// open new transaction
	tx, err := db.sql.Begin()
	if err != nil {
		return err
	}
	// write sample records into sqlite3 database
	for _, sample := range db.buffer {
		// one row per coordinate
		for axis, value := range sample.Point {
			_, err := tx.Stmt(db.sampleStmt).Exec(sample.Run, sample.Index, axis, value, sample.Weight)
			if err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	// clear buffer
	db.buffer = db.buffer[:0]
	// commit transaction
	return tx.Commit()
}

// AddDiagnostic records a named scalar for a run, for example an
// acceptance rate or an estimator variance.
func (db *runDB) AddDiagnostic(run int64, name string, value float64) error {
	if run <= 0 {
		return errors.New("the diagnostic is not attached to a run")
	}
	if name == "" {
		return errors.New("a diagnostic name is required")
	}
	if _, err := db.diagStmt.Exec(run, name, value); err != nil {
		return fmt.Errorf("failed to insert diagnostic %s; %v", name, err)
	}
	return nil
}

// Runs lists the archived runs together with their distinct draw counts.
func (db *runDB) Runs() ([]Run, error) {
	var runs []Run
	if err := db.sql.Select(&runs, selectRunsSQL); err != nil {
		return nil, fmt.Errorf("failed to query run records; %v", err)
	}
	return runs, nil
}

// Samples reads back the sample points and weights of a run in draw
// order. Buffered samples are flushed first so the read observes all
// prior writes.
func (db *runDB) Samples(run int64) ([][]float64, []float64, error) {
	if err := db.Flush(); err != nil {
		return nil, nil, err
	}
	var rows []sampleRow
	if err := db.sql.Select(&rows, selectSamplesSQL, run); err != nil {
		return nil, nil, fmt.Errorf("failed to query samples of run %d; %v", run, err)
	}
	var (
		points  [][]float64
		weights []float64
		last    int
	)
	for _, row := range rows {
		if len(points) == 0 || row.Index != last {
			points = append(points, nil)
			weights = append(weights, row.Weight)
			last = row.Index
		}
		points[len(points)-1] = append(points[len(points)-1], row.Value)
	}
	return points, weights, nil
}

// Diagnostics reads back the recorded diagnostics of a run by name.
func (db *runDB) Diagnostics(run int64) ([]Diagnostic, error) {
	var diags []Diagnostic
	if err := db.sql.Select(&diags, selectDiagnosticsSQL, run); err != nil {
		return nil, fmt.Errorf("failed to query diagnostics of run %d; %v", run, err)
	}
	return diags, nil
}

// DeleteRun deletes a run record with its samples and diagnostics and
// returns the total number of deleted rows.
func (db *runDB) DeleteRun(run int64) (int64, error) {
	var totalNumRows int64

	if err := db.Flush(); err != nil {
		return 0, err
	}
	tx, err := db.sql.Begin()
	if err != nil {
		return 0, err
	}

	for _, deleteSQL := range []string{
		"DELETE FROM samples WHERE runId = ?;",
		"DELETE FROM diagnostics WHERE runId = ?;",
		"DELETE FROM runs WHERE id = ?;",
	} {
		res, err := tx.Exec(deleteSQL, run)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}

		numRowsAffected, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}

		totalNumRows += numRowsAffected
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return totalNumRows, nil
}
