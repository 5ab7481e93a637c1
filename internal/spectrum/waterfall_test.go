package spectrum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

func sample() *Waterfall {
	return &Waterfall{
		Data: [][]float64{
			{1, 3, 5, 7, 9},
			{2, 2, 4, 4, 6},
		},
		Times:       []float64{0, 0.1, 0.2, 0.3, 0.4},
		TimeIndices: []int{0, 1, 2, 3, 4},
		Frequencies: []float64{100, 101},
		SNR:         []float64{-1, 0, 1, 2, 3},
	}
}

func TestWaterfall_Dims(t *testing.T) {
	w := sample()
	assert.Equal(t, 2, w.Channels())
	assert.Equal(t, 5, w.Samples())

	m := w.Dense()
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 5, c)
	assert.Equal(t, 4.0, m.At(1, 3))

	var empty Waterfall
	assert.Zero(t, empty.Samples())
	assert.True(t, empty.Dense().IsEmpty())
}

func TestWaterfall_Decimate(t *testing.T) {
	w := sample()

	d, err := w.Decimate(2)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{2, 6, 9}, {2, 4, 6}}, d.Data)
	assert.Equal(t, []float64{0, 0.2, 0.4}, d.Times)
	assert.Equal(t, []int{0, 2, 4}, d.TimeIndices)
	assert.Equal(t, []float64{-0.5, 1.5, 3}, d.SNR)
	assert.Equal(t, w.Frequencies, d.Frequencies)

	d.Frequencies[0] = 0
	assert.Equal(t, 100.0, w.Frequencies[0], "decimated copy must not share memory")
}

func TestWaterfall_DecimateByOne(t *testing.T) {
	w := sample()

	d, err := w.Decimate(1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(w.Dense(), d.Dense()))
	assert.Equal(t, w.Times, d.Times)
}

func TestWaterfall_DecimateInvalid(t *testing.T) {
	_, err := sample().Decimate(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}
