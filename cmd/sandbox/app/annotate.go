package app

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/snr"
	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/spectrum"
)

const (
	dpi            = 96.0
	tickMarkLength = 5
	pixelsPerLabel = 80.0
)

type annotatorConfig struct {
	FontSize float64
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, w *spectrum.Waterfall, title string) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, image.Rectangle, *spectrum.Waterfall) error
	}{
		{"drawing title", func(img *image.RGBA, area image.Rectangle, _ *spectrum.Waterfall) error {
			return a.drawTitle(img, area, title)
		}},
		{"drawing frequency scale", a.drawFrequencyScale},
		{"drawing time scale", a.drawTimeScale},
		{"drawing info bar", a.drawInfoBar},
	}
	for _, op := range ops {
		if err := op.fn(img, area, w); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *annotator) fontHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawTitle(_ *image.RGBA, area image.Rectangle, title string) error {
	if title == "" {
		return nil
	}
	textY := area.Min.Y - (a.config.Borders.Top-a.fontHeight())/2 - a.fontFace.Metrics().Descent.Round()
	_, err := a.context.DrawString(title, freetype.Pt(area.Min.X, textY))
	return err
}

func (a *annotator) drawFrequencyScale(img *image.RGBA, area image.Rectangle, w *spectrum.Waterfall) error {
	freqs := w.Frequencies
	if len(freqs) == 0 {
		return nil
	}

	bandwidth := 1.0
	if len(freqs) > 1 {
		bandwidth = freqs[1] - freqs[0]
	}
	fmin := freqs[0]
	fmax := freqs[len(freqs)-1] + bandwidth

	step := calculateNiceStep(fmax-fmin, area.Dy())
	if step <= 0 {
		return nil
	}

	halfHeight := a.fontHeight() / 2
	for f := math.Ceil(fmin/step) * step; f < fmax; f += step {
		imgY := area.Max.Y - 1 - int((f-fmin)/bandwidth)

		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			img.Set(x, imgY, color.Black)
		}

		label := formatFrequency(f)
		width := font.MeasureString(a.fontFace, label).Round()
		pt := freetype.Pt(area.Min.X-tickMarkLength-3-width, imgY+halfHeight-a.fontFace.Metrics().Descent.Round())
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing frequency label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, area image.Rectangle, w *spectrum.Waterfall) error {
	times := w.Times
	if len(times) == 0 {
		return nil
	}

	perColumn := 1.0
	if len(times) > 1 {
		perColumn = times[1] - times[0]
	}
	tmin := times[0]
	tmax := times[len(times)-1] + perColumn

	step := calculateNiceStep(tmax-tmin, area.Dx())
	if step <= 0 {
		return nil
	}

	textY := area.Max.Y + tickMarkLength + a.fontHeight()
	for t := math.Ceil(tmin/step) * step; t < tmax; t += step {
		imgX := area.Min.X + int((t-tmin)/perColumn)

		for y := area.Max.Y; y < area.Max.Y+tickMarkLength; y++ {
			img.Set(imgX, y, color.Black)
		}

		label := formatSeconds(t)
		width := font.MeasureString(a.fontFace, label).Round()
		if _, err := a.context.DrawString(label, freetype.Pt(imgX-width/2, textY)); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, area image.Rectangle, w *spectrum.Waterfall) error {
	var parts []string

	if n := len(w.Frequencies); n > 0 {
		bandwidth := 0.0
		if n > 1 {
			bandwidth = w.Frequencies[1] - w.Frequencies[0]
		}
		parts = append(parts, fmt.Sprintf("Band: %s to %s", formatFrequency(w.Frequencies[0]), formatFrequency(w.Frequencies[n-1]+bandwidth)))
		if len(w.Times) > 1 {
			parts = append(parts, fmt.Sprintf("1 px = %s x %s", formatFrequency(bandwidth), formatSeconds(w.Times[1]-w.Times[0])))
		}
	}

	if idx, peak := snr.Peak(w.SNR); idx >= 0 && idx < len(w.Times) {
		parts = append(parts, fmt.Sprintf("peak S/N %.1f at %s", peak, formatSeconds(w.Times[idx])))
	}

	if len(parts) == 0 {
		return nil
	}

	textY := img.Bounds().Max.Y - a.fontFace.Metrics().Descent.Round() - 4
	_, err := a.context.DrawString(strings.Join(parts, "; "), freetype.Pt(area.Min.X, textY))
	return err
}

// calculateNiceStep returns the smallest 1, 2 or 5 times a power of ten that
// places labels at least pixelsPerLabel apart over a range spanning pixels.
func calculateNiceStep(span float64, pixels int) float64 {
	if !(span > 0) || pixels <= 0 {
		return 0
	}

	labels := math.Max(1, float64(pixels)/pixelsPerLabel)
	target := span / labels

	magnitude := math.Pow(10, math.Floor(math.Log10(target)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= target {
			return step
		}
	}
	return 10 * magnitude
}

// formatFrequency formats a frequency given in MHz.
func formatFrequency(mhz float64) string {
	value, suffix := humanize.ComputeSI(mhz * 1e6)
	return fmt.Sprintf("%.2f %sHz", value, suffix)
}

func formatSeconds(s float64) string {
	if s == 0 {
		return "0 s"
	}
	value, suffix := humanize.ComputeSI(s)
	return fmt.Sprintf("%.4g %ss", value, suffix)
}
