package observation

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/metrics"
)

// Pulse describes a synthetic dispersed pulse.
type Pulse struct {
	DM    float64 `yaml:"dm" json:"dm"`       // dispersion measure, pc cm^-3
	Width float64 `yaml:"width" json:"width"` // seconds
	Start float64 `yaml:"start" json:"start"` // arrival time at the top of the band, seconds
	SNR   float64 `yaml:"snr" json:"snr"`
}

func (p *Pulse) validate() error {
	if !(p.Width > 0) || math.IsInf(p.Width, 0) {
		return fmt.Errorf("%w: pulse width must be positive: %g", errs.ErrInvalidArgument, p.Width)
	}
	if !(p.DM >= 0) || math.IsInf(p.DM, 0) {
		return fmt.Errorf("%w: pulse dm must be finite and not negative: %g", errs.ErrInvalidArgument, p.DM)
	}
	if !finite(p.Start) {
		return fmt.Errorf("%w: pulse start must be finite: %g", errs.ErrInvalidArgument, p.Start)
	}
	if !finite(p.SNR) {
		return fmt.Errorf("%w: pulse snr must be finite: %g", errs.ErrInvalidArgument, p.SNR)
	}
	return nil
}

// RFI describes periodic narrowband interference: blocks of Width seconds
// repeated every Step seconds in [Start, Stop), over the channels
// [ChannelStart, ChannelStop).
type RFI struct {
	Start        float64 `yaml:"start" json:"start"`               // seconds
	Stop         float64 `yaml:"stop" json:"stop"`                 // seconds, exclusive
	Step         float64 `yaml:"step" json:"step"`                 // seconds between block starts
	ChannelStart int     `yaml:"channelStart" json:"channelStart"` // first channel
	ChannelStop  int     `yaml:"channelStop" json:"channelStop"`   // channel after the last one
	Width        float64 `yaml:"width" json:"width"`               // seconds
	SNR          float64 `yaml:"snr" json:"snr"`
}

func (r *RFI) validate(channels int) error {
	if !(r.Width > 0) || math.IsInf(r.Width, 0) {
		return fmt.Errorf("%w: rfi width must be positive: %g", errs.ErrInvalidArgument, r.Width)
	}
	if !(r.Step > 0) || math.IsInf(r.Step, 0) {
		return fmt.Errorf("%w: rfi step must be positive: %g", errs.ErrInvalidArgument, r.Step)
	}
	if !finite(r.Start) || !finite(r.Stop) || r.Stop <= r.Start {
		return fmt.Errorf("%w: rfi time range [%g, %g) is empty or not finite", errs.ErrInvalidArgument, r.Start, r.Stop)
	}
	if r.ChannelStart < 0 || r.ChannelStop > channels || r.ChannelStart >= r.ChannelStop {
		return fmt.Errorf("%w: rfi channel range [%d, %d) is empty or outside [0, %d)", errs.ErrInvalidArgument, r.ChannelStart, r.ChannelStop, channels)
	}
	if !finite(r.SNR) {
		return fmt.Errorf("%w: rfi snr must be finite: %g", errs.ErrInvalidArgument, r.SNR)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// block is a rectangle of the buffer: channels [ch0, ch1), samples [t0, t1).
// Sample indices may lie outside the buffer until resolved by a BoundsPolicy.
type block struct {
	ch0, ch1 int
	t0, t1   int
}

// InjectPulse writes a dispersed pulse into the buffer. The pulse starts at
// sample TimeToSampleIndex(Start) at the top of the band and is delayed in
// every channel by that channel's dispersion shift. Each channel receives
// DurationToSamples(Width) samples of the constant amplitude
//
//	(noise median + noise std * SNR) / channel count
//
// further divided by the width in samples when width normalization is on.
// Nothing is written if the pulse is invalid or, under BoundsReject, if any
// part of it falls outside the buffer.
func (o *Observation) InjectPulse(p Pulse) error {
	if err := p.validate(); err != nil {
		return err
	}
	if err := o.checkDelay(p.DM); err != nil {
		return err
	}

	start := o.TimeToSampleIndex(p.Start)
	width := o.DurationToSamples(p.Width)
	shifts := o.Shifts(p.DM)

	blocks := make([]block, len(shifts))
	for ch, shift := range shifts {
		t := start + shift
		blocks[ch] = block{ch0: ch, ch1: ch + 1, t0: t, t1: t + width}
	}

	value := (o.noiseMedian + o.noiseStd*p.SNR) / float64(o.ChannelCount())
	if o.normalizeByWidth {
		value /= float64(width)
	}

	if err := o.write(blocks, value); err != nil {
		return err
	}

	metrics.ObservePulse()
	o.logger.Debug("pulse injected",
		slog.Float64("dm", p.DM),
		slog.Float64("snr", p.SNR),
		slog.Int("startIndex", start),
		slog.Int("widthSamples", width),
		slog.Float64("value", value),
	)

	return nil
}

// InjectRFI writes periodic interference into the buffer and returns the
// number of blocks. Start and Stop are converted with TimeToSampleIndex,
// Step and Width with DurationToSamples. Every block has the constant
// amplitude
//
//	(noise median + noise std * SNR) / ceil((stop - start) / (step * width))
//
// Nothing is written if the RFI is invalid or, under BoundsReject, if any
// block falls outside the buffer.
func (o *Observation) InjectRFI(r RFI) (int, error) {
	if err := r.validate(o.ChannelCount()); err != nil {
		return 0, err
	}

	start := o.TimeToSampleIndex(r.Start)
	stop := o.TimeToSampleIndex(r.Stop)
	step := o.DurationToSamples(r.Step)
	width := o.DurationToSamples(r.Width)
	if stop <= start {
		return 0, fmt.Errorf("%w: rfi time range [%g, %g) is shorter than one sample", errs.ErrInvalidArgument, r.Start, r.Stop)
	}

	var blocks []block
	for t := start; t < stop; t += step {
		blocks = append(blocks, block{ch0: r.ChannelStart, ch1: r.ChannelStop, t0: t, t1: t + width})
	}

	value := (o.noiseMedian + r.SNR*o.noiseStd) / math.Ceil(float64(stop-start)/float64(step*width))

	if err := o.write(blocks, value); err != nil {
		return 0, err
	}

	metrics.ObserveRFI(len(blocks))
	o.logger.Debug("rfi injected",
		slog.Int("blocks", len(blocks)),
		slog.Int("channelStart", r.ChannelStart),
		slog.Int("channelStop", r.ChannelStop),
		slog.Int("stepSamples", step),
		slog.Int("widthSamples", width),
		slog.Float64("value", value),
	)

	return len(blocks), nil
}

// write sets every cell of blocks to value, applying the bounds policy to
// sample indices. Under BoundsReject all blocks are checked first.
func (o *Observation) write(blocks []block, value float64) error {
	n := o.sampleCount

	if o.bounds == BoundsReject {
		for _, b := range blocks {
			if b.t0 < 0 || b.t1 > n {
				return fmt.Errorf("%w: samples [%d, %d) fall outside the %d sample buffer", errs.ErrInvalidArgument, b.t0, b.t1, n)
			}
		}
	}

	for _, b := range blocks {
		for ch := b.ch0; ch < b.ch1; ch++ {
			row := o.data.RawRowView(ch)
			for t := b.t0; t < b.t1; t++ {
				if idx, ok := o.bounds.resolve(t, n); ok {
					row[idx] = value
				}
			}
		}
	}
	return nil
}
