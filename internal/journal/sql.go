package journal

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_detections_run_id ON detections (run_id);
CREATE INDEX IF NOT EXISTS idx_detections_stage ON detections (run_id, stage);`

	insertRunSQL = `
INSERT INTO runs (
                  run_uid,
                  start_time,
                  scenario)
VALUES (?, CURRENT_TIMESTAMP, ?)`

	selectRunSQL = `
SELECT
    id,
    run_uid,
    start_time,
    scenario
FROM runs
WHERE
    id = ?`

	selectRunsSQL = `
SELECT
    id,
    run_uid,
    start_time,
    scenario
FROM runs
ORDER BY id`

	insertDetectionSQL = `
INSERT INTO detections (
                        run_id,
                        stage,
                        dm,
                        peak_index,
                        peak_time,
                        peak_snr)
VALUES `

	selectDetectionsSQL = `
SELECT
    run_id,
    stage,
    dm,
    peak_index,
    peak_time,
    peak_snr
FROM detections
WHERE
    run_id = ?
ORDER BY id`
)
