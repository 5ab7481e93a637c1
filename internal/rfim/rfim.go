// Package rfim removes radio-frequency interference from dynamic spectra by
// iterative sigma clipping. Flagged samples are replaced by a local baseline
// rather than dropped, so the shape of the data is preserved for
// dedispersion and S/N estimation.
//
// Every filter is a pure function: the input matrix is never modified and a
// cleaned copy is returned.
package rfim

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

const (
	DefaultTimeThreshold      = 3.25
	DefaultFrequencyThreshold = 2.75
	DefaultZeroDMThreshold    = 3.25
	DefaultBinSize            = 32
)

// Config parameterizes a sigma-clipping filter.
type Config struct {
	Iterations int     `yaml:"iterations" json:"iterations"` // number of clipping passes, at least 1
	Threshold  float64 `yaml:"threshold" json:"threshold"`   // sigma multiplier
	Symmetric  bool    `yaml:"symmetric" json:"symmetric"`   // two-sided test instead of upper tail only
	BinSize    int     `yaml:"binSize" json:"binSize"`       // channels per bandpass bin, frequency domain only
	Workers    int     `yaml:"workers" json:"workers"`       // goroutines sharing the slices, 0 or 1 runs serially
}

// DefaultTimeConfig returns the settings used for time-domain cleaning.
func DefaultTimeConfig() Config {
	return Config{Iterations: 1, Threshold: DefaultTimeThreshold}
}

// DefaultFrequencyConfig returns the settings used for frequency-domain
// cleaning.
func DefaultFrequencyConfig() Config {
	return Config{Iterations: 1, Threshold: DefaultFrequencyThreshold, BinSize: DefaultBinSize}
}

func (c *Config) validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%w: rfim: iterations must be at least 1: %d", errs.ErrInvalidArgument, c.Iterations)
	}
	if !(c.Threshold > 0) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("%w: rfim: threshold must be positive: %g", errs.ErrInvalidArgument, c.Threshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: rfim: workers must not be negative: %d", errs.ErrInvalidArgument, c.Workers)
	}
	return nil
}

// Stats summarizes a cleaning run.
type Stats struct {
	Passes  int // clipping passes performed
	Flagged int // samples replaced, summed over passes
}

// outlier reports whether x is flagged against the slice statistics.
// A zero standard deviation means the slice has no outliers.
func outlier(x, mean, std, threshold float64, symmetric bool) bool {
	if std == 0 {
		return false
	}
	if symmetric {
		return math.Abs(x-mean) > threshold*std
	}
	return x > mean+threshold*std
}

// CleanTime applies the time-domain filter channel by channel. For every
// pass, samples of a channel exceeding its mean by more than Threshold
// standard deviations are replaced by that mean. Statistics are recomputed
// from the channel's current values on each pass and never mix channels.
func CleanTime(data mat.Matrix, c Config) (*mat.Dense, Stats, error) {
	if err := c.validate(); err != nil {
		return nil, Stats{}, err
	}

	out := mat.DenseCopyOf(data)
	rows, _ := out.Dims()

	var flagged atomic.Int64
	forEach(rows, c.Workers, func(ch int) {
		row := out.RawRowView(ch)

		var n int64
		for k := 0; k < c.Iterations; k++ {
			mean, std := stat.PopMeanStdDev(row, nil)
			for j, x := range row {
				if outlier(x, mean, std, c.Threshold, c.Symmetric) {
					row[j] = mean
					n++
				}
			}
		}
		flagged.Add(n)
	})

	return out, Stats{Passes: c.Iterations, Flagged: int(flagged.Load())}, nil
}

// CleanFrequency applies the band-pass corrected frequency-domain filter
// sample by sample. For every pass, the spectrum of a time sample is split
// into bins of BinSize channels; the bin means form a coarse baseline that
// is subtracted to remove the bandpass shape. Channels whose residual
// exceeds the residual mean by more than Threshold standard deviations are
// replaced by the baseline value of their bin.
//
// BinSize must divide the channel count.
func CleanFrequency(data mat.Matrix, c Config) (*mat.Dense, Stats, error) {
	if err := c.validate(); err != nil {
		return nil, Stats{}, err
	}

	rows, cols := data.Dims()
	if c.BinSize < 1 {
		return nil, Stats{}, fmt.Errorf("%w: rfim: bin size must be positive: %d", errs.ErrInvalidArgument, c.BinSize)
	}
	if rows%c.BinSize != 0 {
		return nil, Stats{}, fmt.Errorf("%w: rfim: bin size %d does not divide %d channels", errs.ErrInvalidArgument, c.BinSize, rows)
	}

	out := mat.DenseCopyOf(data)

	var flagged atomic.Int64
	forEach(cols, c.Workers, func(t int) {
		column := mat.Col(nil, t, out)
		baseline := make([]float64, rows)
		residual := make([]float64, rows)

		var n int64
		for k := 0; k < c.Iterations; k++ {
			binBaseline(baseline, column, c.BinSize)
			for i := range column {
				residual[i] = column[i] - baseline[i]
			}

			mean, std := stat.PopMeanStdDev(residual, nil)
			for i, r := range residual {
				if outlier(r, mean, std, c.Threshold, c.Symmetric) {
					column[i] = baseline[i]
					n++
				}
			}
		}

		out.SetCol(t, column)
		flagged.Add(n)
	})

	return out, Stats{Passes: c.Iterations, Flagged: int(flagged.Load())}, nil
}

// binBaseline fills dst with the mean of each bin of size consecutive
// values of src, repeated back to the resolution of src.
func binBaseline(dst, src []float64, size int) {
	for start := 0; start < len(src); start += size {
		bin := src[start : start+size]
		m := stat.Mean(bin, nil)
		for i := range bin {
			dst[start+i] = m
		}
	}
}

// ZeroDM applies the zero-DM filter: the spectrum is averaged over
// channels, and time samples whose average deviates from the median by more
// than threshold standard deviations are replaced, in every channel, by that
// channel's mean over time. Broadband, undispersed interference is removed
// while dispersed pulses mostly survive.
func ZeroDM(data mat.Matrix, threshold float64) (*mat.Dense, Stats, error) {
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		return nil, Stats{}, fmt.Errorf("%w: rfim: threshold must be positive: %g", errs.ErrInvalidArgument, threshold)
	}

	out := mat.DenseCopyOf(data)
	rows, cols := out.Dims()

	channelMeans := make([]float64, rows)
	for i := range channelMeans {
		channelMeans[i] = stat.Mean(out.RawRowView(i), nil)
	}

	sampleMeans := make([]float64, cols)
	column := make([]float64, rows)
	for j := range sampleMeans {
		mat.Col(column, j, out)
		sampleMeans[j] = stat.Mean(column, nil)
	}

	std := stat.PopStdDev(sampleMeans, nil)
	median := Median(sampleMeans)

	var stats Stats
	stats.Passes = 1
	for j, m := range sampleMeans {
		if !outlier(m, median, std, threshold, true) {
			continue
		}
		out.SetCol(j, channelMeans)
		stats.Flagged += rows
	}

	return out, stats, nil
}

// forEach calls fn for every index in [0, n), spreading the indices over
// workers goroutines. Each index is handled by exactly one goroutine.
func forEach(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	workers = min(workers, n)
	indices := make(chan int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()
}
