package app

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/spectrum"
)

// newTestWaterfall returns a waterfall whose intensity equals the channel
// index.
func newTestWaterfall(channels, samples int) *spectrum.Waterfall {
	w := &spectrum.Waterfall{
		Data:        make([][]float64, channels),
		Times:       make([]float64, samples),
		TimeIndices: make([]int, samples),
		Frequencies: make([]float64, channels),
		SNR:         make([]float64, samples),
	}
	for ch := range w.Data {
		w.Data[ch] = make([]float64, samples)
		for x := range w.Data[ch] {
			w.Data[ch][x] = float64(ch)
		}
		w.Frequencies[ch] = 400 + float64(ch)
	}
	for x := range w.Times {
		w.Times[x] = float64(x) * 0.001
		w.TimeIndices[x] = x
	}
	w.SNR[samples/2] = 5
	return w
}

func TestRender_NoAnnotations(t *testing.T) {
	r, err := NewSpectrumRenderer(RenderConfig{ColorTheme: ClassicTheme, NoAnnotations: true})
	require.NoError(t, err)

	w := newTestWaterfall(4, 50)
	img, err := r.Render(w, "ignored")
	require.NoError(t, err)

	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	cm := NewColorMapper(ClassicTheme, NewIntensityBounds(w.Data, defaultLowQuantile, defaultHighQuantile))
	top := color.RGBAModel.Convert(cm.GetColor(3)).(color.RGBA)
	bottom := color.RGBAModel.Convert(cm.GetColor(0)).(color.RGBA)

	assert.Equal(t, top, img.RGBAAt(0, 0), "highest channel is drawn on top")
	assert.Equal(t, bottom, img.RGBAAt(49, 3))
}

func TestRender_Annotated(t *testing.T) {
	r, err := NewSpectrumRenderer(RenderConfig{ColorTheme: ViridisTheme})
	require.NoError(t, err)

	w := newTestWaterfall(16, 200)
	img, err := r.Render(w, "Noise (gaussian)")
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 200+defaultLeftBorder+defaultRightBorder, b.Dx())
	assert.Equal(t, 16+defaultTopBorder+defaultBottomBorder, b.Dy())
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.RGBAAt(b.Max.X-1, b.Max.Y-1))

	cm := NewColorMapper(ViridisTheme, NewIntensityBounds(w.Data, defaultLowQuantile, defaultHighQuantile))
	top := color.RGBAModel.Convert(cm.GetColor(15)).(color.RGBA)
	assert.Equal(t, top, img.RGBAAt(defaultLeftBorder, defaultTopBorder))
}

func TestRender_Errors(t *testing.T) {
	r, err := NewSpectrumRenderer(RenderConfig{})
	require.NoError(t, err)

	_, err = r.Render(&spectrum.Waterfall{}, "")
	assert.Error(t, err)

	_, err = NewSpectrumRenderer(RenderConfig{LowQuantile: 0.9, HighQuantile: 0.1})
	assert.Error(t, err)
}

func TestCalculateNiceStep(t *testing.T) {
	testCases := []struct {
		span     float64
		pixels   int
		expected float64
	}{
		{300, 1536, 20},
		{0.68, 1066, 0.1},
		{1, 40, 1},
		{0, 100, 0},
		{10, 0, 0},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, calculateNiceStep(tc.span, tc.pixels), 1e-12, "span %g over %d px", tc.span, tc.pixels)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1.22 GHz", formatFrequency(1219.700927734375))
	assert.Equal(t, "400.00 MHz", formatFrequency(400))
	assert.Equal(t, "0 s", formatSeconds(0))
	assert.Equal(t, "40 ms", formatSeconds(0.04))
	assert.Equal(t, "1.5 s", formatSeconds(1.5))
}
