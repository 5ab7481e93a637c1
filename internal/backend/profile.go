// Package backend describes the frequency and time sampling grid of a
// radio-telescope receiver.
package backend

import (
	"fmt"
	"math"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

const (
	DefaultChannelCount     = 1536
	DefaultChannelBandwidth = 0.1953125         // MHz
	DefaultMinFrequency     = 1219.700927734375 // MHz
	DefaultSamplingTime     = 0.00008192        // seconds
	DefaultSamplesPerSecond = 12500

	// channelTolerance absorbs float rounding in frequency to channel
	// conversions, as a fraction of one channel.
	channelTolerance = 1e-9
)

// Config is the receiver description a Profile is built from.
// The defaults describe the ARTS backend.
type Config struct {
	ChannelCount     int     `yaml:"channelCount" json:"channelCount"`         // number of frequency channels
	ChannelBandwidth float64 `yaml:"channelBandwidth" json:"channelBandwidth"` // MHz
	MinFrequency     float64 `yaml:"minFrequency" json:"minFrequency"`         // MHz, lower edge of channel 0
	SamplingTime     float64 `yaml:"samplingTime" json:"samplingTime"`         // seconds per sample
	SamplesPerSecond int     `yaml:"samplesPerSecond" json:"samplesPerSecond"` // samples kept per second of observation
}

// DefaultConfig returns the ARTS backend configuration.
func DefaultConfig() Config {
	return Config{
		ChannelCount:     DefaultChannelCount,
		ChannelBandwidth: DefaultChannelBandwidth,
		MinFrequency:     DefaultMinFrequency,
		SamplingTime:     DefaultSamplingTime,
		SamplesPerSecond: DefaultSamplesPerSecond,
	}
}

func (c *Config) Validate() error {
	if c.ChannelCount <= 0 {
		return fmt.Errorf("%w: backend.Config: channel count must be positive: %d", errs.ErrInvalidParameter, c.ChannelCount)
	}
	if !(c.ChannelBandwidth > 0) || math.IsInf(c.ChannelBandwidth, 0) {
		return fmt.Errorf("%w: backend.Config: channel bandwidth must be positive: %g", errs.ErrInvalidParameter, c.ChannelBandwidth)
	}
	if !(c.MinFrequency > 0) || math.IsInf(c.MinFrequency, 0) {
		return fmt.Errorf("%w: backend.Config: minimum frequency must be positive: %g", errs.ErrInvalidParameter, c.MinFrequency)
	}
	if !(c.SamplingTime > 0) || math.IsInf(c.SamplingTime, 0) {
		return fmt.Errorf("%w: backend.Config: sampling time must be positive: %g", errs.ErrInvalidParameter, c.SamplingTime)
	}
	if c.SamplesPerSecond <= 0 {
		return fmt.Errorf("%w: backend.Config: samples per second must be positive: %d", errs.ErrInvalidParameter, c.SamplesPerSecond)
	}
	return nil
}

// Profile is an immutable description of a receiver's frequency and time
// sampling grid. The frequency axis is uniformly spaced and strictly
// increasing.
type Profile struct {
	channelCount     int
	channelBandwidth float64
	minFrequency     float64
	maxFrequency     float64
	samplingTime     float64
	samplesPerSecond int
}

// New validates the configuration and returns the corresponding Profile.
func New(c Config) (*Profile, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &Profile{
		channelCount:     c.ChannelCount,
		channelBandwidth: c.ChannelBandwidth,
		minFrequency:     c.MinFrequency,
		maxFrequency:     c.MinFrequency + float64(c.ChannelCount)*c.ChannelBandwidth,
		samplingTime:     c.SamplingTime,
		samplesPerSecond: c.SamplesPerSecond,
	}, nil
}

// Config returns the configuration the profile was built from.
func (p *Profile) Config() Config {
	return Config{
		ChannelCount:     p.channelCount,
		ChannelBandwidth: p.channelBandwidth,
		MinFrequency:     p.minFrequency,
		SamplingTime:     p.samplingTime,
		SamplesPerSecond: p.samplesPerSecond,
	}
}

func (p *Profile) ChannelCount() int         { return p.channelCount }
func (p *Profile) ChannelBandwidth() float64 { return p.channelBandwidth }
func (p *Profile) MinFrequency() float64     { return p.minFrequency }
func (p *Profile) SamplingTime() float64     { return p.samplingTime }
func (p *Profile) SamplesPerSecond() int     { return p.samplesPerSecond }

// MaxFrequency is the upper edge of the band: the frequency one bandwidth
// above the last channel.
func (p *Profile) MaxFrequency() float64 { return p.maxFrequency }

// FrequencyOf returns the frequency (MHz) of channel i.
func (p *Profile) FrequencyOf(i int) float64 {
	return p.minFrequency + float64(i)*p.channelBandwidth
}

// ChannelIndexOf returns the channel holding frequency f (MHz). It performs
// no bounds check: frequencies outside the band yield indices outside
// [0, ChannelCount).
func (p *Profile) ChannelIndexOf(f float64) int {
	return int(math.Floor((f-p.minFrequency)/p.channelBandwidth + channelTolerance))
}

// ChannelsSpanning returns the number of channels needed to cover a
// frequency range of r MHz.
func (p *Profile) ChannelsSpanning(r float64) int {
	return int(math.Ceil(r / p.channelBandwidth))
}

// Frequencies returns the frequency of every channel, lowest first.
func (p *Profile) Frequencies() []float64 {
	freqs := make([]float64, p.channelCount)
	for i := range freqs {
		freqs[i] = p.FrequencyOf(i)
	}
	return freqs
}

// ChannelIndices maps every channel frequency back to its index.
func (p *Profile) ChannelIndices() []int {
	indices := make([]int, p.channelCount)
	for i := range indices {
		indices[i] = p.ChannelIndexOf(p.FrequencyOf(i))
	}
	return indices
}
