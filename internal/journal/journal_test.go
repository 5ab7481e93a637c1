package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournal(t *testing.T) *Journal {
	t.Helper()

	j := New(filepath.Join(t.TempDir(), "journal.db"))
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_Runs(t *testing.T) {
	ctx := context.Background()
	j := newJournal(t)

	scenario := map[string]any{"length": 1.0, "pulses": 2}
	first, err := j.CreateRun(ctx, uuid.NewString(), scenario)
	require.NoError(t, err)
	second, err := j.CreateRun(ctx, uuid.NewString(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	run, err := j.Run(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, run.Scenario)
	assert.JSONEq(t, `{"length": 1, "pulses": 2}`, *run.Scenario)
	assert.False(t, run.StartTime.IsZero())

	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Nil(t, runs[1].Scenario)
	assert.Equal(t, second, runs[1].ID)
}

func TestJournal_RunNotFound(t *testing.T) {
	ctx := context.Background()
	j := newJournal(t)

	_, err := j.CreateRun(ctx, uuid.NewString(), `{"a":1}`)
	require.NoError(t, err)

	_, err = j.Run(ctx, 42)
	assert.Error(t, err)
}

func TestJournal_DuplicateUID(t *testing.T) {
	ctx := context.Background()
	j := newJournal(t)

	uid := uuid.NewString()
	_, err := j.CreateRun(ctx, uid, nil)
	require.NoError(t, err)
	_, err = j.CreateRun(ctx, uid, nil)
	assert.Error(t, err)
}

func TestJournal_Detections(t *testing.T) {
	ctx := context.Background()
	j := newJournal(t)

	runID, err := j.CreateRun(ctx, uuid.NewString(), []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, j.StoreDetections(ctx, runID, nil))

	// More than one batch.
	var detections []Detection
	for i := 0; i < 2*maxDetectionsPerInsert+3; i++ {
		detections = append(detections, Detection{
			Stage:     fmt.Sprintf("stage-%d", i),
			DM:        float64(i),
			PeakIndex: i * 10,
			PeakTime:  float64(i) * 0.01,
			PeakSNR:   12.5,
		})
	}
	require.NoError(t, j.StoreDetections(ctx, runID, detections))

	stored, err := j.Detections(ctx, runID)
	require.NoError(t, err)
	require.Len(t, stored, len(detections))
	for i, d := range stored {
		expected := detections[i]
		expected.RunID = runID
		assert.Equal(t, expected, d)
	}

	other, err := j.Detections(ctx, runID+1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestJournal_CloseTwice(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "journal.db"))

	_, err := j.CreateRun(context.Background(), uuid.NewString(), nil)
	require.NoError(t, err)

	assert.NoError(t, j.Close())
	assert.NoError(t, j.Close())
}
