// Package observation simulates a dynamic spectrum recorded by a radio
// telescope. An Observation owns a (channel, sample) buffer filled with
// Gaussian noise and offers pulse and RFI injection, RFI mitigation,
// dedispersion and S/N estimation on it.
//
// An Observation is not safe for concurrent use.
package observation

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/backend"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/dispersion"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/rfim"
)

// indexTolerance absorbs float rounding in time to sample conversions, as a
// fraction of one sample.
const indexTolerance = 1e-9

// WithLogger sets the logger for the observation
func WithLogger(logger *slog.Logger) func(o *Observation) {
	return func(o *Observation) {
		o.logger = logger.With(
			slog.Int("channels", o.profile.ChannelCount()),
			slog.Int("samples", o.sampleCount),
		)
	}
}

// WithSeed makes the noise reproducible.
func WithSeed(seed uint64) func(o *Observation) {
	return func(o *Observation) {
		o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithBoundsPolicy sets how injections crossing the buffer edges are handled.
// The default is BoundsClamp.
func WithBoundsPolicy(p BoundsPolicy) func(o *Observation) {
	return func(o *Observation) {
		o.bounds = p
	}
}

// WithWidthNormalization divides the pulse amplitude by its width in samples
// in addition to the channel count, so that the integrated pulse energy does
// not depend on the width.
func WithWidthNormalization(enabled bool) func(o *Observation) {
	return func(o *Observation) {
		o.normalizeByWidth = enabled
	}
}

// Observation is a simulated dynamic spectrum.
type Observation struct {
	profile *backend.Profile
	model   *dispersion.Model

	length      float64
	t0          float64
	sampleCount int

	data        *mat.Dense
	noiseMedian float64
	noiseStd    float64

	bounds           BoundsPolicy
	normalizeByWidth bool
	rng              *rand.Rand
	logger           *slog.Logger
}

// New creates an observation of length seconds starting at t0 and fills it
// with noise. The noise is drawn from N(0, 1) and shifted up by the absolute
// value of its minimum so that every sample is non-negative. Its median and
// standard deviation are captured once and serve as the baseline for every
// injection.
func New(p *backend.Profile, length, t0 float64, options ...func(o *Observation)) (*Observation, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: observation: nil profile", errs.ErrInvalidParameter)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("%w: observation: length must be positive: %g", errs.ErrInvalidParameter, length)
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) {
		return nil, fmt.Errorf("%w: observation: t0 must be finite: %g", errs.ErrInvalidParameter, t0)
	}

	sampleCount := int(math.Floor(length*float64(p.SamplesPerSecond()) + indexTolerance))
	if sampleCount < 1 {
		return nil, fmt.Errorf("%w: observation: %g s holds no sample at %d samples/s", errs.ErrInvalidParameter, length, p.SamplesPerSecond())
	}

	o := Observation{
		profile:     p,
		model:       dispersion.New(p),
		length:      length,
		t0:          t0,
		sampleCount: sampleCount,
		bounds:      BoundsClamp,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&o)
	}

	o.fillNoise()

	o.logger.Debug("observation created",
		slog.Float64("length", length),
		slog.Float64("t0", t0),
		slog.Float64("noiseMedian", o.noiseMedian),
		slog.Float64("noiseStd", o.noiseStd),
	)

	return &o, nil
}

func (o *Observation) fillNoise() {
	cells := make([]float64, o.profile.ChannelCount()*o.sampleCount)

	lowest := math.Inf(1)
	for i := range cells {
		cells[i] = o.rng.NormFloat64()
		lowest = min(lowest, cells[i])
	}

	offset := math.Abs(lowest)
	for i := range cells {
		cells[i] += offset
	}

	o.noiseMedian = rfim.Median(cells)
	o.noiseStd = stat.PopStdDev(cells, nil)
	o.data = mat.NewDense(o.profile.ChannelCount(), o.sampleCount, cells)
}

func (o *Observation) Profile() *backend.Profile  { return o.profile }
func (o *Observation) Length() float64            { return o.length }
func (o *Observation) T0() float64                { return o.t0 }
func (o *Observation) SampleCount() int           { return o.sampleCount }
func (o *Observation) ChannelCount() int          { return o.profile.ChannelCount() }
func (o *Observation) BoundsPolicy() BoundsPolicy { return o.bounds }
func (o *Observation) WidthNormalization() bool   { return o.normalizeByWidth }

// NoiseMedian is the median of the buffer at construction.
func (o *Observation) NoiseMedian() float64 { return o.noiseMedian }

// NoiseStd is the population standard deviation of the buffer at
// construction.
func (o *Observation) NoiseStd() float64 { return o.noiseStd }

// Data returns a copy of the buffer, indexed (channel, sample).
func (o *Observation) Data() *mat.Dense {
	return mat.DenseCopyOf(o.data)
}

// At returns the value of one cell of the buffer.
func (o *Observation) At(channel, sample int) float64 {
	return o.data.At(channel, sample)
}

// Shifts returns the per-channel sample offsets of a pulse with dispersion
// measure dm, relative to the top of the band.
func (o *Observation) Shifts(dm float64) []int {
	return o.model.Shifts(dm, o.profile.SamplingTime())
}

func (o *Observation) checkDelay(dm float64) error {
	if d := o.model.MaxDelay(dm); d > o.length {
		return fmt.Errorf("%w: observation: delay of %.6g s at dm %g exceeds the %g s observation", errs.ErrInvalidArgument, d, dm, o.length)
	}
	return nil
}
