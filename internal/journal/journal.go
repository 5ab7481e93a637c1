// Package journal records sandbox runs and their S/N detections in a sqlite
// database. Only run metadata and per-stage peaks are stored, never the
// observation buffer.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// maxDetectionsPerInsert keeps a batch insert below sqlite's default limit
// of bound parameters.
const maxDetectionsPerInsert = 100

// Journal handles database operations.
type Journal struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New returns a journal backed by the sqlite file at dbPath. Connections are
// opened, and the schema initialized, on first use.
func New(dbPath string) *Journal {
	return &Journal{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (j *Journal) getWriteDB() (*sql.DB, error) {
	j.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", j.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			j.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			j.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		j.writeDB = db
	})

	return j.writeDB, j.writeDBErr
}

func (j *Journal) getReadDB() (*sql.DB, error) {
	j.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", j.dbPath, "mode=ro"))
		if err != nil {
			j.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		j.readDB = db
	})

	return j.readDB, j.readDBErr
}

// CreateRun inserts a run and returns its ID. scenario may be nil, a JSON
// string or []byte, or any value encoding/json can marshal.
func (j *Journal) CreateRun(ctx context.Context, uid string, scenario any) (runID int64, err error) {
	var scenarioData sql.NullString

	switch v := scenario.(type) {
	case nil:
	case string:
		scenarioData = sql.NullString{String: v, Valid: true}
	case []byte:
		scenarioData = sql.NullString{String: string(v), Valid: true}
	default:
		var p []byte
		if p, err = json.Marshal(v); err != nil {
			err = fmt.Errorf("marshaling scenario: %w", err)
			return
		}
		scenarioData = sql.NullString{String: string(p), Valid: true}
	}

	db, err := j.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, uid, scenarioData)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	runID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
	}
	return
}

func (j *Journal) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := j.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var r Run
	var scenario sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&r.ID, &r.UID, &r.StartTime, &scenario); err != nil {
		err = fmt.Errorf("scanning run: %w", err)
		return
	}
	r.Scenario = fromNullString(scenario)

	return &r, nil
}

func (j *Journal) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := j.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r Run
		var scenario sql.NullString
		if err = rows.Scan(&r.ID, &r.UID, &r.StartTime, &scenario); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		r.Scenario = fromNullString(scenario)
		runs = append(runs, &r)
	}
	err = rows.Err()
	return
}

// StoreDetections inserts the detections of a run in a single transaction.
func (j *Journal) StoreDetections(ctx context.Context, runID int64, detections []Detection) (err error) {
	if len(detections) == 0 {
		return
	}

	db, err := j.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	for start := 0; start < len(detections); start += maxDetectionsPerInsert {
		batch := detections[start:min(start+maxDetectionsPerInsert, len(detections))]
		if err = insertDetections(ctx, tx, runID, batch); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertDetections(ctx context.Context, tx *sql.Tx, runID int64, batch []Detection) error {
	values := make([]any, 0, len(batch)*6)

	valuesPlaceholder := "(?, ?, ?, ?, ?, ?)"

	var sb strings.Builder
	sb.WriteString(insertDetectionSQL)

	for i, d := range batch {
		values = append(values,
			runID,
			d.Stage,
			d.DM,
			d.PeakIndex,
			d.PeakTime,
			d.PeakSNR,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting detections: %w", err)
	}
	return nil
}

func (j *Journal) Detections(ctx context.Context, runID int64) (detections []Detection, err error) {
	db, err := j.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectDetectionsSQL, runID)
	if err != nil {
		err = fmt.Errorf("querying detections: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var d Detection
		if err = rows.Scan(&d.RunID, &d.Stage, &d.DM, &d.PeakIndex, &d.PeakTime, &d.PeakSNR); err != nil {
			err = fmt.Errorf("scanning detection: %w", err)
			return
		}
		detections = append(detections, d)
	}
	err = rows.Err()
	return
}

func (j *Journal) Close() error {
	j.closeOnce.Do(func() {
		var writeErr, readErr error

		if j.writeDB != nil {
			_ = runSQLCommand(j.writeDB, initIndexesSQL)

			writeErr = j.writeDB.Close()
			j.writeDB = nil
		}

		if j.readDB != nil {
			readErr = j.readDB.Close()
			j.readDB = nil
		}

		j.closeErr = errors.Join(writeErr, readErr)
	})

	return j.closeErr
}
