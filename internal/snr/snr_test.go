package snr

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestSimpleSNR_ConstantIsZero(t *testing.T) {
	data := mat.NewDense(4, 10, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 10; j++ {
			data.Set(i, j, 0.3)
		}
	}

	for _, axis := range []Axis{AcrossChannels, AcrossTime} {
		series := SimpleSNR(data, axis)
		for i, v := range series {
			if v != 0 {
				t.Fatalf("axis %s, index %d: expected 0, got %g", axis, i, v)
			}
		}
	}
}

func TestSimpleSNR_Length(t *testing.T) {
	data := mat.NewDense(3, 7, nil)

	assert.Len(t, SimpleSNR(data, AcrossChannels), 7)
	assert.Len(t, SimpleSNR(data, AcrossTime), 3)
}

func TestSimpleSNR_Standardized(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	data := mat.NewDense(16, 500, nil)
	for i := 0; i < 16; i++ {
		for j := 0; j < 500; j++ {
			data.Set(i, j, 5+2*rng.NormFloat64())
		}
	}

	for _, axis := range []Axis{AcrossChannels, AcrossTime} {
		mean, std := stat.PopMeanStdDev(SimpleSNR(data, axis), nil)
		assert.InDelta(t, 0, mean, 1e-9, "axis %s", axis)
		assert.InDelta(t, 1, std, 1e-9, "axis %s", axis)
	}
}

func TestSimpleSNR_PulseStandsOut(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	data := mat.NewDense(32, 1000, nil)
	for i := 0; i < 32; i++ {
		for j := 0; j < 1000; j++ {
			data.Set(i, j, rng.NormFloat64())
		}
		data.Set(i, 420, data.At(i, 420)+5)
	}

	idx, peak := Peak(SimpleSNR(data, AcrossChannels))
	assert.Equal(t, 420, idx)
	assert.Greater(t, peak, 10.0)
}

func TestSimpleSNR_KnownValues(t *testing.T) {
	data := mat.NewDense(2, 2, []float64{
		0, 2,
		0, 2,
	})

	series := SimpleSNR(data, AcrossChannels)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{-1, 1}, series)
	assert.Equal(t, []float64{0, 0}, SimpleSNR(data, AcrossTime))
}

func TestPeak(t *testing.T) {
	testCases := []struct {
		series []float64
		idx    int
		value  float64
	}{
		{nil, -1, 0},
		{[]float64{1}, 0, 1},
		{[]float64{1, 3, 2, 3}, 1, 3},
		{[]float64{-5, -2, -7}, 1, -2},
		{[]float64{math.Inf(-1), 0}, 1, 0},
	}

	for _, tc := range testCases {
		idx, value := Peak(tc.series)
		assert.Equal(t, tc.idx, idx, "%v", tc.series)
		assert.Equal(t, tc.value, value, "%v", tc.series)
	}
}
