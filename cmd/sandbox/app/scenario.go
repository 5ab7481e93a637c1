package app

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/backend"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/observation"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/rfim"
)

// Scenario describes one simulated observation and its processing.
type Scenario struct {
	Settings    Settings            `yaml:"settings" json:"settings"`
	Backend     backend.Config      `yaml:"backend" json:"backend"`
	Observation ObservationConfig   `yaml:"observation" json:"observation"`
	Pulses      []observation.Pulse `yaml:"pulses" json:"pulses"`
	RFI         []observation.RFI   `yaml:"rfi" json:"rfi"`
	Cleaning    CleaningConfig      `yaml:"cleaning" json:"cleaning"`
	Dedisperse  DedispersionConfig  `yaml:"dedisperse" json:"dedisperse"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel" json:"logLevel"`
}

// ObservationConfig holds the observation constructor arguments and options.
type ObservationConfig struct {
	Length           float64                  `yaml:"length" json:"length"` // seconds
	T0               float64                  `yaml:"t0" json:"t0"`         // seconds
	Seed             uint64                   `yaml:"seed" json:"seed"`     // 0 draws a random seed
	Bounds           observation.BoundsPolicy `yaml:"bounds" json:"bounds"`
	NormalizeByWidth bool                     `yaml:"normalizeByWidth" json:"normalizeByWidth"`
}

// CleaningConfig configures the RFI mitigation stages.
type CleaningConfig struct {
	Time            rfim.Config `yaml:"time" json:"time"`
	Frequency       rfim.Config `yaml:"frequency" json:"frequency"`
	ZeroDM          bool        `yaml:"zeroDM" json:"zeroDM"`
	ZeroDMThreshold float64     `yaml:"zeroDMThreshold" json:"zeroDMThreshold"`
}

// DedispersionConfig configures the dedispersion stage.
type DedispersionConfig struct {
	DM float64 `yaml:"dm" json:"dm"`
}

// LoadScenario reads the scenario at path over the defaults and applies
// SANDBOX_* environment overrides. An empty path falls back to
// SANDBOX_SCENARIO, then to the defaults alone.
func LoadScenario(path string) (*Scenario, error) {
	if path == "" {
		path = os.Getenv("SANDBOX_SCENARIO")
	}

	s := DefaultScenario()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("scenario file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read scenario: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse scenario: %w", err)
		}
	}

	if err := applyEnvOverrides(&s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultScenario is a faint dispersed burst, two bright low-DM pulses and
// two bands of strong periodic RFI on the ARTS backend.
func DefaultScenario() Scenario {
	return Scenario{
		Settings: Settings{LogLevel: "info"},
		Backend:  backend.DefaultConfig(),
		Observation: ObservationConfig{
			Length: 1.024 / 1.5,
			Bounds: observation.BoundsClamp,
		},
		Pulses: []observation.Pulse{
			{DM: 500, Width: 0.006, Start: 0.04, SNR: 15},
			{DM: 1, Width: 0.006, Start: 0.23, SNR: 125},
			{DM: 10, Width: 0.001, Start: 0.33, SNR: 125},
		},
		RFI: []observation.RFI{
			{Start: 0, Stop: 0.3, Step: 0.01, Width: 0.003, ChannelStart: 350, ChannelStop: 360, SNR: 125},
			{Start: 0.1, Stop: 0.4, Step: 0.008, Width: 0.005, ChannelStart: 700, ChannelStop: 715, SNR: 125},
		},
		Cleaning: CleaningConfig{
			Time:            rfim.DefaultTimeConfig(),
			Frequency:       rfim.DefaultFrequencyConfig(),
			ZeroDMThreshold: rfim.DefaultZeroDMThreshold,
		},
		Dedisperse: DedispersionConfig{DM: 500},
	}
}

func applyEnvOverrides(s *Scenario) error {
	if v := os.Getenv("SANDBOX_LOG_LEVEL"); v != "" {
		s.Settings.LogLevel = v
	}
	if v := os.Getenv("SANDBOX_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SANDBOX_SEED: %w", err)
		}
		s.Observation.Seed = seed
	}
	if v := os.Getenv("SANDBOX_LENGTH"); v != "" {
		length, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SANDBOX_LENGTH: %w", err)
		}
		s.Observation.Length = length
	}
	if v := os.Getenv("SANDBOX_BOUNDS_POLICY"); v != "" {
		if err := s.Observation.Bounds.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("SANDBOX_BOUNDS_POLICY: %w", err)
		}
	}
	if v := os.Getenv("SANDBOX_NORMALIZE_BY_WIDTH"); v != "" {
		s.Observation.NormalizeByWidth = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("SANDBOX_DEDISPERSE_DM"); v != "" {
		dm, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SANDBOX_DEDISPERSE_DM: %w", err)
		}
		s.Dedisperse.DM = dm
	}
	return nil
}

// Validate checks the parts of the scenario that are not validated by the
// packages consuming them.
func (s *Scenario) Validate() error {
	if err := s.Backend.Validate(); err != nil {
		return err
	}
	if !(s.Observation.Length > 0) || math.IsInf(s.Observation.Length, 0) {
		return fmt.Errorf("observation length must be positive: %g", s.Observation.Length)
	}
	if math.IsNaN(s.Dedisperse.DM) || math.IsInf(s.Dedisperse.DM, 0) {
		return fmt.Errorf("dedispersion dm must be finite: %g", s.Dedisperse.DM)
	}
	if s.Cleaning.ZeroDM && !(s.Cleaning.ZeroDMThreshold > 0) {
		return fmt.Errorf("zero-DM threshold must be positive: %g", s.Cleaning.ZeroDMThreshold)
	}
	return nil
}
