// Package metrics exposes Prometheus collectors for sandbox runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tdsandbox"

// Filter labels.
const (
	FilterTime      = "time"
	FilterFrequency = "frequency"
	FilterZeroDM    = "zerodm"
)

var (
	pulsesInjectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pulses_injected_total",
			Help:      "Total number of dispersed pulses injected into observations.",
		},
	)

	rfiBlocksInjectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rfi_blocks_injected_total",
			Help:      "Total number of periodic RFI blocks injected into observations.",
		},
	)

	flaggedSamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flagged_samples_total",
			Help:      "Samples replaced by RFI mitigation, partitioned by filter.",
		},
		[]string{"filter"},
	)

	cleanDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clean_seconds",
			Help:      "RFI mitigation latency in seconds, partitioned by filter.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"filter"},
	)
)

// Register attaches the sandbox collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pulsesInjectedTotal,
		rfiBlocksInjectedTotal,
		flaggedSamplesTotal,
		cleanDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePulse counts one injected pulse.
func ObservePulse() {
	pulsesInjectedTotal.Inc()
}

// ObserveRFI counts injected RFI blocks.
func ObserveRFI(blocks int) {
	if blocks <= 0 {
		return
	}
	rfiBlocksInjectedTotal.Add(float64(blocks))
}

// ObserveClean records the duration and number of flagged samples of a
// cleaning run.
func ObserveClean(filter string, duration time.Duration, flagged int) {
	if duration < 0 {
		duration = 0
	}
	cleanDurationSeconds.WithLabelValues(filter).Observe(duration.Seconds())
	if flagged > 0 {
		flaggedSamplesTotal.WithLabelValues(filter).Add(float64(flagged))
	}
}
