package observation

import (
	"math"
)

// The time axis is deliberately asymmetric: SampleTime and Times are local
// to the buffer and ignore t0, while TimeToSampleIndex and IndexToTime work
// in absolute time and account for it.

// SampleTime returns the local time of sample i: i * sampling time.
func (o *Observation) SampleTime(i int) float64 {
	return float64(i) * o.profile.SamplingTime()
}

// TimeToSampleIndex returns ceil((t - t0) / sampling time).
func (o *Observation) TimeToSampleIndex(t float64) int {
	return ceilIndex((t - o.t0) / o.profile.SamplingTime())
}

// IndexToTime returns the absolute time of sample i: i * sampling time + t0.
func (o *Observation) IndexToTime(i int) float64 {
	return float64(i)*o.profile.SamplingTime() + o.t0
}

// DurationToSamples returns the number of samples covering a duration,
// rounding up.
func (o *Observation) DurationToSamples(d float64) int {
	return ceilIndex(d / o.profile.SamplingTime())
}

// Times returns the local time of every sample.
func (o *Observation) Times() []float64 {
	times := make([]float64, o.sampleCount)
	for i := range times {
		times[i] = o.SampleTime(i)
	}
	return times
}

// TimeIndices maps every entry of Times through TimeToSampleIndex. With a
// non-zero t0 the result is offset from the column index.
func (o *Observation) TimeIndices() []int {
	indices := make([]int, o.sampleCount)
	for i := range indices {
		indices[i] = o.TimeToSampleIndex(o.SampleTime(i))
	}
	return indices
}

func ceilIndex(x float64) int {
	return int(math.Ceil(x - indexTolerance))
}
