package observation

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/dispersion"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/metrics"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/rfim"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/snr"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/spectrum"
)

// CleanTime runs the time-domain RFI filter over the buffer. With persist the
// buffer is replaced by the cleaned data; otherwise it is left untouched. The
// returned matrix is always a copy.
func (o *Observation) CleanTime(c rfim.Config, persist bool) (*mat.Dense, rfim.Stats, error) {
	return o.clean(metrics.FilterTime, persist, func(data mat.Matrix) (*mat.Dense, rfim.Stats, error) {
		return rfim.CleanTime(data, c)
	})
}

// CleanFrequency runs the band-pass corrected frequency-domain RFI filter
// over the buffer. persist behaves as in CleanTime.
func (o *Observation) CleanFrequency(c rfim.Config, persist bool) (*mat.Dense, rfim.Stats, error) {
	return o.clean(metrics.FilterFrequency, persist, func(data mat.Matrix) (*mat.Dense, rfim.Stats, error) {
		return rfim.CleanFrequency(data, c)
	})
}

// CleanZeroDM runs the zero-DM filter over the buffer. persist behaves as in
// CleanTime.
func (o *Observation) CleanZeroDM(threshold float64, persist bool) (*mat.Dense, rfim.Stats, error) {
	return o.clean(metrics.FilterZeroDM, persist, func(data mat.Matrix) (*mat.Dense, rfim.Stats, error) {
		return rfim.ZeroDM(data, threshold)
	})
}

func (o *Observation) clean(filter string, persist bool, fn func(mat.Matrix) (*mat.Dense, rfim.Stats, error)) (*mat.Dense, rfim.Stats, error) {
	started := time.Now()

	cleaned, stats, err := fn(o.data)
	if err != nil {
		return nil, rfim.Stats{}, fmt.Errorf("%s cleaning: %w", filter, err)
	}

	elapsed := time.Since(started)
	metrics.ObserveClean(filter, elapsed, stats.Flagged)
	o.logger.Debug("rfi mitigation",
		slog.String("filter", filter),
		slog.Bool("persist", persist),
		slog.Duration("elapsed", elapsed),
		slog.Group("stats",
			slog.Int("passes", stats.Passes),
			slog.Int("flagged", stats.Flagged),
		),
	)

	if !persist {
		return cleaned, stats, nil
	}

	o.data = cleaned
	return mat.DenseCopyOf(cleaned), stats, nil
}

// Dedisperse rotates every channel circularly by the negative of its
// dispersion shift at dm, aligning a pulse of that dm at its top-of-band
// arrival sample. persist behaves as in CleanTime.
func (o *Observation) Dedisperse(dm float64, persist bool) (*mat.Dense, error) {
	if !finite(dm) {
		return nil, fmt.Errorf("%w: dedispersion dm must be finite: %g", errs.ErrInvalidArgument, dm)
	}
	if err := o.checkDelay(dm); err != nil {
		return nil, err
	}

	dedispersed, err := dispersion.RollChannels(o.data, o.Shifts(dm))
	if err != nil {
		return nil, err
	}

	o.logger.Debug("dedispersed",
		slog.Float64("dm", dm),
		slog.Float64("maxDelay", o.model.MaxDelay(dm)),
		slog.Bool("persist", persist),
	)

	if !persist {
		return dedispersed, nil
	}

	o.data = dedispersed
	return mat.DenseCopyOf(dedispersed), nil
}

// SNR returns the simple S/N of the buffer along axis.
func (o *Observation) SNR(axis snr.Axis) []float64 {
	return snr.SimpleSNR(o.data, axis)
}

// Waterfall exports the buffer and its axes for plotting. The S/N is taken
// across channels.
func (o *Observation) Waterfall() *spectrum.Waterfall {
	w, _ := o.WaterfallOf(o.data)
	return w
}

// WaterfallOf exports m, typically a matrix returned by a non-persisted
// cleaning or dedispersion, with the axes of this observation. m must have
// the shape of the buffer.
func (o *Observation) WaterfallOf(m mat.Matrix) (*spectrum.Waterfall, error) {
	rows, cols := m.Dims()
	if rows != o.ChannelCount() || cols != o.sampleCount {
		return nil, fmt.Errorf("%w: matrix is %dx%d, observation is %dx%d", errs.ErrInvalidArgument, rows, cols, o.ChannelCount(), o.sampleCount)
	}

	data := make([][]float64, rows)
	for i := range data {
		data[i] = mat.Row(nil, i, m)
	}

	return &spectrum.Waterfall{
		Data:        data,
		Times:       o.Times(),
		TimeIndices: o.TimeIndices(),
		Frequencies: o.profile.Frequencies(),
		SNR:         snr.SimpleSNR(m, snr.AcrossChannels),
	}, nil
}

// PeakSNR returns the sample index and value of the S/N maximum across
// channels, together with its local time.
func (o *Observation) PeakSNR() (index int, value, at float64) {
	index, value = snr.Peak(o.SNR(snr.AcrossChannels))
	if index < 0 {
		return index, value, math.NaN()
	}
	return index, value, o.SampleTime(index)
}
