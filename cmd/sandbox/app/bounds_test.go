package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIntensityBounds(t *testing.T) {
	row := make([]float64, 100)
	for i := range row {
		row[i] = float64(i + 1)
	}
	row[50] = math.NaN()

	b := NewIntensityBounds([][]float64{row}, 0.01, 0.995)
	assert.LessOrEqual(t, b.Min, 2.0)
	assert.GreaterOrEqual(t, b.Max, 99.0)
	assert.Less(t, b.Min, b.Max)
}

func TestNewIntensityBounds_Degenerate(t *testing.T) {
	b := NewIntensityBounds([][]float64{{3, 3}, {3, 3}}, 0.01, 0.995)
	assert.Equal(t, IntensityBounds{Min: 2.5, Max: 3.5, Mean: 3}, b)

	b = NewIntensityBounds(nil, 0.01, 0.995)
	assert.Equal(t, 0.0, b.Min)
	assert.Equal(t, 1.0, b.Max)
}
