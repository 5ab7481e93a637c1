// Package snr estimates the signal-to-noise ratio of a dynamic spectrum.
package snr

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Axis selects the dimension that is averaged away.
type Axis int

const (
	// AcrossChannels averages over channels, giving one value per time sample.
	AcrossChannels Axis = iota
	// AcrossTime averages over time, giving one value per channel.
	AcrossTime
)

func (a Axis) String() string {
	switch a {
	case AcrossChannels:
		return "channels"
	case AcrossTime:
		return "time"
	default:
		return "unknown"
	}
}

// SimpleSNR collapses m along axis and standardizes the result:
// (means - mean(means)) / std(means), using the population standard
// deviation. A flat series yields all zeros.
func SimpleSNR(m mat.Matrix, axis Axis) []float64 {
	means := collapse(m, axis)
	if len(means) == 0 {
		return means
	}

	mean, std := stat.PopMeanStdDev(means, nil)
	if std == 0 || flat(means) {
		clear(means)
		return means
	}

	for i, v := range means {
		means[i] = (v - mean) / std
	}
	return means
}

func collapse(m mat.Matrix, axis Axis) []float64 {
	rows, cols := m.Dims()

	if axis == AcrossTime {
		means := make([]float64, rows)
		row := make([]float64, cols)
		for i := range means {
			mat.Row(row, i, m)
			means[i] = stat.Mean(row, nil)
		}
		return means
	}

	means := make([]float64, cols)
	column := make([]float64, rows)
	for j := range means {
		mat.Col(column, j, m)
		means[j] = stat.Mean(column, nil)
	}
	return means
}

func flat(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

// Peak returns the index and value of the first maximum of series, or
// (-1, 0) when series is empty.
func Peak(series []float64) (int, float64) {
	if len(series) == 0 {
		return -1, 0
	}

	idx := 0
	for i, v := range series {
		if v > series[idx] {
			idx = i
		}
	}
	return idx, series[idx]
}
