package app

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	defaultLowQuantile  = 0.01
	defaultHighQuantile = 0.995
)

// IntensityBounds is the intensity range mapped onto the color scale.
type IntensityBounds struct {
	Min  float64 // low quantile of the intensity
	Max  float64 // high quantile of the intensity
	Mean float64
}

// NewIntensityBounds computes the bounds of data from the low and high
// quantiles, so that a few bright cells do not wash out the noise. A flat
// input yields a unit-wide range around its value.
func NewIntensityBounds(data [][]float64, low, high float64) IntensityBounds {
	var values []float64
	for _, row := range data {
		for _, v := range row {
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return IntensityBounds{Min: 0, Max: 1, Mean: 0.5}
	}

	slices.Sort(values)
	b := IntensityBounds{
		Min:  stat.Quantile(low, stat.Empirical, values, nil),
		Max:  stat.Quantile(high, stat.Empirical, values, nil),
		Mean: stat.Mean(values, nil),
	}
	if b.Max <= b.Min {
		b.Min, b.Max = b.Mean-0.5, b.Mean+0.5
	}
	return b
}
