package app

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/spectrum"
)

const (
	fontSize = 11.0

	// Default border sizes in pixels
	defaultTopBorder    = 30
	defaultLeftBorder   = 90
	defaultBottomBorder = 60
	defaultRightBorder  = 20
)

// BorderConfig defines the sizes of white space around the spectrum
type BorderConfig struct {
	Top    int // Space for the title
	Left   int // Space for the frequency scale
	Bottom int // Space for the time scale and information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for waterfall visualization
type RenderConfig struct {
	// Visual configuration
	FontSize     float64    // Font size in points
	ColorTheme   ColorTheme // Color scheme for intensity values
	ColorMapSize int        // Number of colors in gradient (0 for default)

	// Intensity quantiles mapped to the ends of the color scale
	LowQuantile  float64
	HighQuantile float64

	NoAnnotations bool
	BorderConfig  BorderConfig
}

// SpectrumRenderer draws waterfalls: time runs left to right and frequency
// bottom to top.
type SpectrumRenderer struct {
	config RenderConfig
}

// NewSpectrumRenderer creates a new spectrum renderer with the given configuration
func NewSpectrumRenderer(config RenderConfig) (*SpectrumRenderer, error) {
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.LowQuantile == 0 && config.HighQuantile == 0 {
		config.LowQuantile, config.HighQuantile = defaultLowQuantile, defaultHighQuantile
	}
	if config.LowQuantile < 0 || config.HighQuantile > 1 || config.LowQuantile >= config.HighQuantile {
		return nil, fmt.Errorf("invalid quantiles [%g, %g]", config.LowQuantile, config.HighQuantile)
	}

	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	return &SpectrumRenderer{config: config}, nil
}

// Render creates an image of the waterfall, annotated with title unless
// annotations are disabled.
func (r *SpectrumRenderer) Render(w *spectrum.Waterfall, title string) (*image.RGBA, error) {
	width, height := w.Samples(), w.Channels()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty waterfall")
	}

	borders := r.config.BorderConfig
	img := image.NewRGBA(image.Rect(0, 0, width+borders.Left+borders.Right, height+borders.Top+borders.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(borders.Left, borders.Top, borders.Left+width, borders.Top+height)

	bounds := NewIntensityBounds(w.Data, r.config.LowQuantile, r.config.HighQuantile)
	colorMap := NewColorMapperWithSize(r.config.ColorTheme, bounds, r.config.ColorMapSize)

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			FontSize: r.config.FontSize,
			Borders:  borders,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, area, w, title); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	renderWaterfall(img, area, w, colorMap)

	return img, nil
}

// renderWaterfall draws one pixel per cell, highest channel on top.
func renderWaterfall(img *image.RGBA, area image.Rectangle, w *spectrum.Waterfall, colorMap *ColorMapper) {
	channels := w.Channels()
	for ch, row := range w.Data {
		imgY := area.Min.Y + channels - 1 - ch
		for x, v := range row {
			img.Set(area.Min.X+x, imgY, colorMap.GetColor(v))
		}
	}
}
