package app

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("sandbox", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestNewConfigFromArgs_Defaults(t *testing.T) {
	t.Setenv("SANDBOX_SCENARIO", "")

	c, err := NewConfigFromArgs(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, ImagePNG, c.Format)
	assert.Equal(t, ClassicTheme, c.Theme)
	assert.Equal(t, 8, c.Decimate)
	assert.Equal(t, ".", c.OutputDir)
	require.NotNil(t, c.Scenario)
	assert.Equal(t, DefaultScenario(), *c.Scenario)
}

func TestNewConfigFromArgs_Flags(t *testing.T) {
	t.Setenv("SANDBOX_SCENARIO", "")
	dir := t.TempDir()

	c, err := NewConfigFromArgs(newFlagSet(), []string{
		"-o", dir,
		"-f", "JPEG",
		"-theme", "Viridis",
		"-seed", "9",
		"-decimate", "4",
		"-journal", "runs.db",
		"-no-annotations",
	})
	require.NoError(t, err)

	assert.Equal(t, dir, c.OutputDir)
	assert.Equal(t, ImageJPEG, c.Format)
	assert.Equal(t, ViridisTheme, c.Theme)
	assert.Equal(t, 4, c.Decimate)
	assert.Equal(t, "runs.db", c.JournalPath)
	assert.True(t, c.NoAnnotations)
	assert.Equal(t, uint64(9), c.Scenario.Observation.Seed)
}

func TestNewConfigFromArgs_Invalid(t *testing.T) {
	t.Setenv("SANDBOX_SCENARIO", "")

	testCases := []struct {
		name string
		args []string
	}{
		{"image format", []string{"-f", "gif"}},
		{"theme", []string{"-theme", "rainbow"}},
		{"decimation", []string{"-decimate", "0"}},
		{"missing scenario", []string{"-c", "/does/not/exist.yaml"}},
		{"unknown flag", []string{"-bogus"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfigFromArgs(newFlagSet(), tc.args)
			assert.Error(t, err)
		})
	}
}
