// Package dispersion implements the cold-plasma dispersion delay law and the
// per-channel circular shifts used to dedisperse a dynamic spectrum.
package dispersion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/backend"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

// K is the dispersion constant in s·MHz², scaled so that frequencies are
// given in MHz and delays come out in seconds.
const K = 4.148808 * 1000

// Model computes the arrival delay of a dispersed pulse relative to the top
// of the band.
type Model struct {
	maxFrequency float64
	frequencies  []float64
}

// New returns the delay model for the band described by the profile.
func New(p *backend.Profile) *Model {
	return &Model{
		maxFrequency: p.MaxFrequency(),
		frequencies:  p.Frequencies(),
	}
}

// MaxFrequency is the reference frequency at which the delay is zero.
func (m *Model) MaxFrequency() float64 {
	return m.maxFrequency
}

// Delay returns the delay in seconds of a pulse with dispersion measure dm
// observed at frequency f (MHz).
func (m *Model) Delay(dm, f float64) (float64, error) {
	if !(f > 0) {
		return 0, fmt.Errorf("%w: dispersion: frequency must be positive: %g", errs.ErrDomain, f)
	}
	return delay(dm, f, m.maxFrequency), nil
}

// Delays returns the delay of every channel for the given dispersion
// measure. Delays decrease as frequency increases.
func (m *Model) Delays(dm float64) []float64 {
	delays := make([]float64, len(m.frequencies))
	for i, f := range m.frequencies {
		delays[i] = delay(dm, f, m.maxFrequency)
	}
	return delays
}

// MaxDelay returns the largest absolute delay across the band, which is
// the delay of the lowest channel.
func (m *Model) MaxDelay(dm float64) float64 {
	if len(m.frequencies) == 0 {
		return 0
	}
	return math.Abs(delay(dm, m.frequencies[0], m.maxFrequency))
}

// Shifts converts the per-channel delays into whole-sample offsets,
// rounding up.
func (m *Model) Shifts(dm, samplingTime float64) []int {
	delays := m.Delays(dm)
	shifts := make([]int, len(delays))
	for i, d := range delays {
		shifts[i] = int(math.Ceil(d / samplingTime))
	}
	return shifts
}

func delay(dm, f, fmax float64) float64 {
	return K * (math.Pow(f, -2) - math.Pow(fmax, -2)) * dm
}

// Roll rotates row circularly so that the value at index shift moves to
// index 0. Negative shifts rotate the other way. The result is a new slice.
func Roll(row []float64, shift int) []float64 {
	n := len(row)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	shift %= n
	if shift < 0 {
		shift += n
	}
	copy(out, row[shift:])
	copy(out[n-shift:], row[:shift])
	return out
}

// RollChannels returns a copy of data with every row rotated by the shift
// of its channel. len(shifts) must equal the number of rows.
func RollChannels(data mat.Matrix, shifts []int) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if len(shifts) != rows {
		return nil, fmt.Errorf("%w: dispersion: %d shifts for %d channels", errs.ErrInvalidArgument, len(shifts), rows)
	}

	out := mat.NewDense(rows, cols, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, data)
		out.SetRow(i, Roll(row, shifts[i]))
	}
	return out, nil
}
