// Package spectrum holds plain-array views of a dynamic spectrum for plotting
// and export.
package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

// Waterfall is a snapshot of an observation: intensity per channel and time
// sample together with its axes. It shares no memory with the observation it
// was taken from.
type Waterfall struct {
	Data        [][]float64 `json:"data"`        // Intensity, indexed [channel][sample]
	Times       []float64   `json:"times"`       // Time of each sample in seconds
	TimeIndices []int       `json:"timeIndices"` // Sample index of each column
	Frequencies []float64   `json:"frequencies"` // Frequency of each channel in MHz, lowest first
	SNR         []float64   `json:"snr"`         // S/N per time sample
}

// Channels returns the number of frequency channels.
func (w *Waterfall) Channels() int {
	return len(w.Data)
}

// Samples returns the number of time samples.
func (w *Waterfall) Samples() int {
	if len(w.Data) == 0 {
		return 0
	}
	return len(w.Data[0])
}

// Dense returns the intensity as a new matrix.
func (w *Waterfall) Dense() *mat.Dense {
	rows, cols := w.Channels(), w.Samples()
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}

	m := mat.NewDense(rows, cols, nil)
	for i, row := range w.Data {
		m.SetRow(i, row)
	}
	return m
}

// Decimate averages groups of factor adjacent time samples. A trailing
// partial group is averaged over the samples it has. The time axes keep the
// first entry of every group.
func (w *Waterfall) Decimate(factor int) (*Waterfall, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: spectrum: decimation factor must be positive: %d", errs.ErrInvalidArgument, factor)
	}

	n := w.Samples()
	groups := (n + factor - 1) / factor

	out := &Waterfall{
		Data:        make([][]float64, len(w.Data)),
		Times:       make([]float64, 0, groups),
		TimeIndices: make([]int, 0, groups),
		Frequencies: append([]float64(nil), w.Frequencies...),
		SNR:         make([]float64, 0, groups),
	}

	for i, row := range w.Data {
		out.Data[i] = average(row, factor)
	}
	for start := 0; start < n; start += factor {
		if start < len(w.Times) {
			out.Times = append(out.Times, w.Times[start])
		}
		if start < len(w.TimeIndices) {
			out.TimeIndices = append(out.TimeIndices, w.TimeIndices[start])
		}
	}
	if len(w.SNR) > 0 {
		out.SNR = average(w.SNR, factor)
	}

	return out, nil
}

func average(x []float64, factor int) []float64 {
	out := make([]float64, 0, (len(x)+factor-1)/factor)
	for start := 0; start < len(x); start += factor {
		out = append(out, stat.Mean(x[start:min(start+factor, len(x))], nil))
	}
	return out
}
