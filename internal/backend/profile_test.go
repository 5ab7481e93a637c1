package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

func TestNew_Defaults(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 1536, p.ChannelCount())
	assert.Equal(t, 12500, p.SamplesPerSecond())
	assert.InDelta(t, 1219.700927734375+1536*0.1953125, p.MaxFrequency(), 1e-9)
	assert.Equal(t, DefaultConfig(), p.Config())
}

func TestNew_InvalidParameters(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero channels", func(c *Config) { c.ChannelCount = 0 }},
		{"negative bandwidth", func(c *Config) { c.ChannelBandwidth = -1 }},
		{"zero min frequency", func(c *Config) { c.MinFrequency = 0 }},
		{"zero sampling time", func(c *Config) { c.SamplingTime = 0 }},
		{"negative samples per second", func(c *Config) { c.SamplesPerSecond = -5 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(&c)

			_, err := New(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidParameter))
		})
	}
}

func TestProfile_FrequencyRoundTrip(t *testing.T) {
	configs := []Config{
		DefaultConfig(),
		{ChannelCount: 4, ChannelBandwidth: 1, MinFrequency: 100, SamplingTime: 0.01, SamplesPerSecond: 100},
		{ChannelCount: 3000, ChannelBandwidth: (1519.700927734375 - 120) / 3000, MinFrequency: 120, SamplingTime: 0.00008192, SamplesPerSecond: 12500},
	}

	for _, c := range configs {
		p, err := New(c)
		require.NoError(t, err)

		for i := 0; i < p.ChannelCount(); i++ {
			if got := p.ChannelIndexOf(p.FrequencyOf(i)); got != i {
				t.Fatalf("channel %d: round trip gave %d", i, got)
			}
		}
		assert.Len(t, p.ChannelIndices(), p.ChannelCount())
	}
}

func TestProfile_FrequencyAxisIncreasing(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	freqs := p.Frequencies()
	require.Len(t, freqs, p.ChannelCount())
	assert.Equal(t, p.MinFrequency(), freqs[0])
	for i := 1; i < len(freqs); i++ {
		assert.InDelta(t, p.ChannelBandwidth(), freqs[i]-freqs[i-1], 1e-9)
	}
}

func TestProfile_ChannelIndexOf_OutOfBand(t *testing.T) {
	p, err := New(Config{ChannelCount: 4, ChannelBandwidth: 1, MinFrequency: 100, SamplingTime: 0.01, SamplesPerSecond: 100})
	require.NoError(t, err)

	assert.Equal(t, -1, p.ChannelIndexOf(99.5))
	assert.Equal(t, 6, p.ChannelIndexOf(106.2))
}

func TestProfile_ChannelsSpanning(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, p.ChannelsSpanning(0.1))
	assert.Equal(t, 1, p.ChannelsSpanning(0.1953125))
	assert.Equal(t, 52, p.ChannelsSpanning(10))
	assert.Equal(t, 0, p.ChannelsSpanning(0))
}
