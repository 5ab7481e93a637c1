package app

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

type Config struct {
	ScenarioPath  string
	OutputDir     string
	Format        ImageFormat
	Theme         ColorTheme
	JournalPath   string
	MetricsFile   string
	Decimate      int
	Verbose       bool
	NoAnnotations bool
	NoImages      bool

	Scenario *Scenario
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		OutputDir: ".",
		Format:    ImagePNG,
		Theme:     ClassicTheme,
		Decimate:  8,
	}
}

// NewConfigFromCLI parses the process arguments.
func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(flag.NewFlagSet(os.Args[0], flag.ExitOnError), os.Args[1:])
}

// NewConfigFromArgs parses args with fs and loads the scenario they point to.
func NewConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	var seed uint64
	fs.StringVar(&c.ScenarioPath, "c", "", "Path to the scenario file, defaults to the built-in pulse and RFI scenario")
	fs.StringVar(&c.OutputDir, "o", c.OutputDir, "Directory the stage images are written to")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(c.Theme), "Color theme. [classic, grayscale, jungle, thermal, marine, viridis]")
	fs.StringVar(&c.JournalPath, "journal", "", "Path to the sqlite run journal, disabled when empty")
	fs.StringVar(&c.MetricsFile, "metrics-file", "", "Path to a Prometheus textfile written at the end of the run")
	fs.Uint64Var(&seed, "seed", 0, "Noise seed, overrides the scenario")
	fs.IntVar(&c.Decimate, "decimate", c.Decimate, "Average this many adjacent samples per image column")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time and frequency scales")
	fs.BoolVar(&c.NoImages, "no-images", false, "Skip rendering, only compute and journal detections")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	imageFormat = strings.ToLower(imageFormat)
	theme = strings.ToLower(theme)

	var seedSet bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	var err error
	if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok = validColorThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	} else if c.Decimate < 1 {
		err = fmt.Errorf("decimation factor must be positive: %d", c.Decimate)
	} else if c.OutputDir == "" && !c.NoImages {
		err = fmt.Errorf("output directory is required")
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)

	if c.Scenario, err = LoadScenario(c.ScenarioPath); err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}
	if seedSet {
		c.Scenario.Observation.Seed = seed
	}

	return c, nil
}
