package dispersion

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/backend"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

func newModel(t *testing.T) (*Model, *backend.Profile) {
	t.Helper()

	p, err := backend.New(backend.DefaultConfig())
	require.NoError(t, err)
	return New(p), p
}

func TestDelays_ZeroDM(t *testing.T) {
	m, p := newModel(t)

	delays := m.Delays(0)
	require.Len(t, delays, p.ChannelCount())
	for i, d := range delays {
		if d != 0 {
			t.Fatalf("channel %d: expected zero delay, got %g", i, d)
		}
	}
}

func TestDelays_Monotonic(t *testing.T) {
	m, _ := newModel(t)

	for _, dm := range []float64{1, 10, 500, 1000, 3000} {
		delays := m.Delays(dm)
		for i := 1; i < len(delays); i++ {
			if delays[i] > delays[i-1] {
				t.Fatalf("dm %g: delay increased from channel %d to %d", dm, i-1, i)
			}
		}
		assert.Greater(t, delays[0], 0.0)
	}
}

func TestDelay_ZeroAtMaxFrequency(t *testing.T) {
	m, p := newModel(t)

	d, err := m.Delay(1000, p.MaxFrequency())
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDelay_KnownValue(t *testing.T) {
	m, p := newModel(t)

	d, err := m.Delay(1000, p.MinFrequency())
	require.NoError(t, err)

	// 4148.808 * 1000 * (1219.7^-2 - 1519.7^-2) is just under one second.
	assert.InDelta(t, 0.9925, d, 1e-3)
	assert.InDelta(t, d, m.MaxDelay(1000), 1e-12)
	assert.InDelta(t, d, m.MaxDelay(-1000), 1e-12)
}

func TestDelay_DomainError(t *testing.T) {
	m, _ := newModel(t)

	for _, f := range []float64{0, -120} {
		_, err := m.Delay(10, f)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrDomain))
	}
}

func TestShifts(t *testing.T) {
	p, err := backend.New(backend.Config{ChannelCount: 4, ChannelBandwidth: 1, MinFrequency: 100, SamplingTime: 0.01, SamplesPerSecond: 100})
	require.NoError(t, err)
	m := New(p)

	assert.Equal(t, []int{0, 0, 0, 0}, m.Shifts(0, p.SamplingTime()))

	shifts := m.Shifts(1, p.SamplingTime())
	delays := m.Delays(1)
	for i := range shifts {
		assert.GreaterOrEqual(t, float64(shifts[i])*p.SamplingTime(), delays[i]-1e-12)
		assert.Less(t, float64(shifts[i]-1)*p.SamplingTime(), delays[i])
	}
}

func TestRoll(t *testing.T) {
	row := []float64{0, 1, 2, 3, 4}

	testCases := []struct {
		shift    int
		expected []float64
	}{
		{0, []float64{0, 1, 2, 3, 4}},
		{2, []float64{2, 3, 4, 0, 1}},
		{-1, []float64{4, 0, 1, 2, 3}},
		{7, []float64{2, 3, 4, 0, 1}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Roll(row, tc.shift), "shift %d", tc.shift)
	}
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, row, "input must not change")
	assert.Empty(t, Roll(nil, 3))
}

func TestRollChannels_RoundTrip(t *testing.T) {
	m, p := newModel(t)

	rng := rand.New(rand.NewPCG(1, 2))
	rows, cols := p.ChannelCount(), 2048
	data := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data.Set(i, j, rng.NormFloat64())
		}
	}

	shifts := m.Shifts(100, p.SamplingTime())
	rolled, err := RollChannels(data, shifts)
	require.NoError(t, err)

	negated := make([]int, len(shifts))
	for i, s := range shifts {
		negated[i] = -s
	}
	restored, err := RollChannels(rolled, negated)
	require.NoError(t, err)

	assert.True(t, mat.Equal(data, restored))
}

func TestRollChannels_ShiftCountMismatch(t *testing.T) {
	_, err := RollChannels(mat.NewDense(2, 3, nil), []int{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}
