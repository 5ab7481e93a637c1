package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for intensity visualization.
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white
	ViridisTheme   ColorTheme = "viridis"   // Purple to teal to yellow, perceptually uniform

	DefaultColorMapSize = 256 // Default number of colors in the map
)

var validColorThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
	ViridisTheme:   {},
}

// ColorMapper maps intensities to colors through a pre-computed gradient.
type ColorMapper struct {
	colorMap          []color.Color
	theme             func(float64) color.Color
	themeName         ColorTheme
	size              int
	intensityPerIndex float64
	boundsMin         float64
}

// NewColorMapper creates a new color mapper with specified theme and bounds.
// Uses default size (256) for the color map.
func NewColorMapper(theme ColorTheme, bounds IntensityBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a new color mapper with specified size.
// Size determines the number of pre-computed colors in the map.
func NewColorMapperWithSize(theme ColorTheme, bounds IntensityBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      size,
	}
	for i := 0; i < cm.size; i++ {
		cm.colorMap[i] = cm.theme(float64(i) / float64(cm.size-1))
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds updates the intensity bounds
func (cm *ColorMapper) UpdateBounds(bounds IntensityBounds) {
	cm.boundsMin = bounds.Min
	cm.intensityPerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)
}

// GetColor returns a color for the given intensity
func (cm *ColorMapper) GetColor(intensity float64) color.Color {
	if math.IsNaN(intensity) || cm.intensityPerIndex <= 0 {
		return cm.colorMap[0]
	}

	index := int((intensity - cm.boundsMin) / cm.intensityPerIndex)

	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// ThemeName returns the current color theme name
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// Size returns the color map size
func (cm *ColorMapper) Size() int {
	return cm.size
}

// viridisStops are anchor colors of the viridis map, blended in HCL space.
var viridisStops = []colorful.Color{
	hex("#440154"),
	hex("#3b528b"),
	hex("#21918c"),
	hex("#5ec962"),
	hex("#fde725"),
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func blendStops(stops []colorful.Color, v float64) color.Color {
	v = math.Max(0, math.Min(1, v))
	pos := v * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1].Clamped()
	}
	return stops[i].BlendHcl(stops[i+1], pos-float64(i)).Clamped()
}

// Color theme implementations
func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return func(v float64) color.Color {
			g := uint8(math.Pow(v, 0.7) * 255)
			return color.RGBA{R: g, G: g, B: g, A: 255}
		}

	case JungleTheme:
		return func(v float64) color.Color {
			return colorful.Hsv(120-(v*60), 1.0, 0.3+(math.Pow(v, 0.6)*0.7))
		}

	case ThermalTheme:
		return func(v float64) color.Color {
			if v < 0.33 {
				return color.RGBA{R: uint8((v * 3) * 255), A: 255}
			}
			if v < 0.66 {
				return color.RGBA{R: 255, G: uint8(((v - 0.33) * 3) * 255), A: 255}
			}
			return color.RGBA{R: 255, G: 255, B: uint8(math.Min(1, (v-0.66)*3) * 255), A: 255}
		}

	case MarineTheme:
		return func(v float64) color.Color {
			return colorful.Hsv(240-(v*60), 1.0-(v*0.8), 0.3+(math.Pow(v, 0.6)*0.7))
		}

	case ViridisTheme:
		return func(v float64) color.Color {
			return blendStops(viridisStops, v)
		}

	default:
		return func(v float64) color.Color {
			return colorful.Hsv(240-(v*240), 0.9+(v*0.1), math.Pow(v, 0.7))
		}
	}
}
