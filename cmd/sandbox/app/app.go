package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/mat"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/backend"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/journal"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/metrics"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/observation"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/snr"
)

// Processing stages, in the order they are produced.
const (
	StageRaw              = "raw"
	StageInjected         = "injected"
	StageCleanedTime      = "cleaned-time"
	StageCleanedFrequency = "cleaned-frequency"
	StageCleaned          = "cleaned"
	StageDedispersed      = "dedispersed"
)

// Result summarizes a run.
type Result struct {
	RunUID     string
	RunID      int64 // journal ID, 0 when the journal is disabled
	Detections []journal.Detection
	Images     []string
}

// Run simulates the scenario of config, renders every stage and records the
// S/N peak of each stage.
func Run(ctx context.Context, config *Config, logger *slog.Logger) (*Result, error) {
	uid := uuid.NewString()
	logger = logger.With(slog.String("run", uid))

	var reg *prometheus.Registry
	if config.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	var renderer *SpectrumRenderer
	if !config.NoImages {
		if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}

		var err error
		renderer, err = NewSpectrumRenderer(RenderConfig{
			ColorTheme:    config.Theme,
			NoAnnotations: config.NoAnnotations,
		})
		if err != nil {
			return nil, fmt.Errorf("creating spectrum renderer: %w", err)
		}
	}

	p := &pipeline{
		config:   config,
		logger:   logger,
		renderer: renderer,
		result:   &Result{RunUID: uid},
	}
	if err := p.run(ctx); err != nil {
		return nil, err
	}

	if config.JournalPath != "" {
		if err := p.writeJournal(ctx); err != nil {
			return nil, err
		}
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(config.MetricsFile, reg); err != nil {
			return nil, fmt.Errorf("writing metrics: %w", err)
		}
	}

	logger.Info("run complete",
		slog.Int("stages", len(p.result.Detections)),
		slog.Int("images", len(p.result.Images)),
	)
	return p.result, nil
}

type pipeline struct {
	config   *Config
	logger   *slog.Logger
	renderer *SpectrumRenderer
	obs      *observation.Observation
	result   *Result
}

func (p *pipeline) run(ctx context.Context) error {
	s := p.config.Scenario

	profile, err := backend.New(s.Backend)
	if err != nil {
		return fmt.Errorf("creating backend profile: %w", err)
	}

	options := []func(o *observation.Observation){
		observation.WithLogger(p.logger),
		observation.WithBoundsPolicy(s.Observation.Bounds),
		observation.WithWidthNormalization(s.Observation.NormalizeByWidth),
	}
	if s.Observation.Seed != 0 {
		options = append(options, observation.WithSeed(s.Observation.Seed))
	}

	p.obs, err = observation.New(profile, s.Observation.Length, s.Observation.T0, options...)
	if err != nil {
		return fmt.Errorf("creating observation: %w", err)
	}

	p.logger.Info("observation created",
		slog.Group("observation",
			slog.Int("channels", p.obs.ChannelCount()),
			slog.Int("samples", p.obs.SampleCount()),
			slog.String("band", fmt.Sprintf("%s to %s", formatFrequency(profile.MinFrequency()), formatFrequency(profile.MaxFrequency()))),
			slog.String("bounds", s.Observation.Bounds.String()),
		))

	stages := []struct {
		name string
		fn   func() (mat.Matrix, float64, error)
	}{
		{StageRaw, p.raw},
		{StageInjected, p.inject},
		{StageCleanedTime, p.cleanTime},
		{StageCleanedFrequency, p.cleanFrequency},
		{StageCleaned, p.clean},
		{StageDedispersed, p.dedisperse},
	}

	for i, stage := range stages {
		if err = ctx.Err(); err != nil {
			return err
		}

		m, dm, err := stage.fn()
		if err != nil {
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}
		if err = p.record(i, stage.name, m, dm); err != nil {
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}
	}
	return nil
}

func (p *pipeline) raw() (mat.Matrix, float64, error) {
	return p.obs.Data(), 0, nil
}

func (p *pipeline) inject() (mat.Matrix, float64, error) {
	s := p.config.Scenario

	for _, pulse := range s.Pulses {
		if err := p.obs.InjectPulse(pulse); err != nil {
			return nil, 0, fmt.Errorf("injecting pulse at %g s: %w", pulse.Start, err)
		}
	}

	var blocks int
	for _, rfi := range s.RFI {
		n, err := p.obs.InjectRFI(rfi)
		if err != nil {
			return nil, 0, fmt.Errorf("injecting rfi at %g s: %w", rfi.Start, err)
		}
		blocks += n
	}

	p.logger.Info("signals injected",
		slog.Int("pulses", len(s.Pulses)),
		slog.Int("rfiBlocks", blocks),
	)
	return p.obs.Data(), 0, nil
}

func (p *pipeline) cleanTime() (mat.Matrix, float64, error) {
	m, _, err := p.obs.CleanTime(p.config.Scenario.Cleaning.Time, false)
	return m, 0, err
}

func (p *pipeline) cleanFrequency() (mat.Matrix, float64, error) {
	m, _, err := p.obs.CleanFrequency(p.config.Scenario.Cleaning.Frequency, false)
	return m, 0, err
}

func (p *pipeline) clean() (mat.Matrix, float64, error) {
	c := p.config.Scenario.Cleaning

	if _, _, err := p.obs.CleanTime(c.Time, true); err != nil {
		return nil, 0, err
	}
	if _, _, err := p.obs.CleanFrequency(c.Frequency, true); err != nil {
		return nil, 0, err
	}
	if c.ZeroDM {
		if _, _, err := p.obs.CleanZeroDM(c.ZeroDMThreshold, true); err != nil {
			return nil, 0, err
		}
	}
	return p.obs.Data(), 0, nil
}

func (p *pipeline) dedisperse() (mat.Matrix, float64, error) {
	dm := p.config.Scenario.Dedisperse.DM
	m, err := p.obs.Dedisperse(dm, false)
	return m, dm, err
}

// record computes the S/N peak of a stage and renders it.
func (p *pipeline) record(index int, stage string, m mat.Matrix, dm float64) error {
	w, err := p.obs.WaterfallOf(m)
	if err != nil {
		return err
	}

	idx, peak := snr.Peak(w.SNR)
	d := journal.Detection{
		Stage:     stage,
		DM:        dm,
		PeakIndex: idx,
		PeakTime:  p.obs.SampleTime(idx),
		PeakSNR:   peak,
	}
	p.result.Detections = append(p.result.Detections, d)

	p.logger.Info("stage complete",
		slog.String("stage", stage),
		slog.Group("peak",
			slog.Int("index", d.PeakIndex),
			slog.String("time", formatSeconds(d.PeakTime)),
			slog.Float64("snr", d.PeakSNR),
		))

	if p.renderer == nil {
		return nil
	}

	if p.config.Decimate > 1 {
		if w, err = w.Decimate(p.config.Decimate); err != nil {
			return err
		}
	}

	img, err := p.renderer.Render(w, stageTitle(stage, dm))
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	path := filepath.Join(p.config.OutputDir, fmt.Sprintf("%02d-%s.%s", index, stage, p.config.Format))
	if err = writeImage(path, p.config.Format, img); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	p.result.Images = append(p.result.Images, path)

	p.logger.Debug("image written",
		slog.Group("image",
			slog.String("destination", path),
			slog.String("theme", string(p.config.Theme)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
		))
	return nil
}

func (p *pipeline) writeJournal(ctx context.Context) (err error) {
	j := journal.New(p.config.JournalPath)
	defer func() {
		if cErr := j.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing journal: %w", cErr)
		}
	}()

	runID, err := j.CreateRun(ctx, p.result.RunUID, p.config.Scenario)
	if err != nil {
		return fmt.Errorf("journaling run: %w", err)
	}
	if err = j.StoreDetections(ctx, runID, p.result.Detections); err != nil {
		return fmt.Errorf("journaling detections: %w", err)
	}

	p.result.RunID = runID
	p.logger.Info("run journaled", slog.Int64("runID", runID), slog.String("journal", p.config.JournalPath))
	return nil
}

func stageTitle(stage string, dm float64) string {
	titles := map[string]string{
		StageRaw:              "Noise (gaussian)",
		StageInjected:         "Noise + pulses + RFI",
		StageCleanedTime:      "RFI mitigation (time)",
		StageCleanedFrequency: "RFI mitigation (freq.)",
		StageCleaned:          "RFI mitigation (time and freq.)",
		StageDedispersed:      "Dedispersed RFI mitigation",
	}

	title := titles[stage]
	if stage == StageDedispersed {
		title = fmt.Sprintf("%s (DM=%g)", title, dm)
	}
	return title
}
