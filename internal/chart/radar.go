package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"skillradar/internal/schema"
	"skillradar/internal/scoring"
)

const (
	// DefaultSize is the edge length of a chart in pixels.
	DefaultSize = 800
	minSize     = 200

	scaleMax = scoring.MaxScore
	rings    = 5
)

// Overlay is one polygon on the chart. Nil values leave a gap.
type Overlay struct {
	Name   string
	Label  string
	Values []*float64
	Color  color.NRGBA
}

// Options tune rendering.
type Options struct {
	Size  int
	Title string
}

var palette = map[string]color.NRGBA{
	"overall":  {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"scenario": {R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	"soc":      {R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	"pt":       {R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	"team":     {R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	"comms":    {R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	"en":       {R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
}

var overlayLabels = map[string]string{
	"overall":  "Overall",
	"scenario": schema.TagScenario.Label(),
	"soc":      schema.TagSOC.Label(),
	"pt":       schema.TagPentest.Label(),
	"team":     schema.TagTeam.Label(),
	"comms":    schema.TagComms.Label(),
	"en":       schema.TagEnglish.Label(),
}

func overlay(name string, values []*float64) Overlay {
	return Overlay{Name: name, Label: overlayLabels[name], Values: values, Color: palette[name]}
}

// ResultOverlays returns every overlay of a single result. Overlays without any value are dropped.
func ResultOverlays(r scoring.Result) []Overlay {
	out := make([]Overlay, 0, len(scoring.SeriesNames))
	for _, name := range scoring.SeriesNames {
		if values := r.Series.Named(name); hasValue(values) {
			out = append(out, overlay(name, values))
		}
	}
	return out
}

// AggregateOverlays returns the overlays of a comparison.
func AggregateOverlays(r scoring.AggregateResult) []Overlay {
	out := make([]Overlay, 0, len(scoring.AggregateSeriesNames))
	for _, name := range scoring.AggregateSeriesNames {
		if values := r.Series.Named(name); hasValue(values) {
			out = append(out, overlay(name, values))
		}
	}
	return out
}

// RenderResult draws the radar chart of one computed result as PNG.
func RenderResult(r scoring.Result, opts Options) ([]byte, error) {
	return Radar(r.Labels, ResultOverlays(r), opts)
}

// RenderAggregate draws the radar chart of a comparison as PNG.
func RenderAggregate(r scoring.AggregateResult, opts Options) ([]byte, error) {
	return Radar(r.Labels, AggregateOverlays(r), opts)
}

// Radar draws labels clockwise from the top on a 0..10 scale and encodes the result as PNG.
func Radar(labels []string, overlays []Overlay, opts Options) ([]byte, error) {
	if len(labels) < 3 {
		return nil, fmt.Errorf("radar chart needs at least 3 axes, got %d", len(labels))
	}
	size := opts.Size
	if size == 0 {
		size = DefaultSize
	}
	if size < minSize {
		return nil, fmt.Errorf("chart size %d is below the minimum of %d", size, minSize)
	}

	face, err := fontFace(float64(size) / 50)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(size, size)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(face)

	fs := float64(size)
	cx, cy := fs/2, fs/2+fs*0.02
	radius := fs * 0.32
	n := len(labels)

	point := func(i int, v float64) (float64, float64) {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		r := radius * v / scaleMax
		return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
	}

	// Grid.
	dc.SetLineWidth(1)
	dc.SetColor(color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff})
	for ring := 1; ring <= rings; ring++ {
		v := float64(scaleMax) * float64(ring) / rings
		for i := 0; i < n; i++ {
			x, y := point(i, v)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.Stroke()
	}
	for i := 0; i < n; i++ {
		x, y := point(i, scaleMax)
		dc.DrawLine(cx, cy, x, y)
		dc.Stroke()
	}

	// Axis labels.
	dc.SetColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff})
	for i, label := range labels {
		x, y := point(i, scaleMax*1.12)
		dc.DrawStringAnchored(label, x, y, anchorFor(x, cx), 0.5)
	}
	for ring := 1; ring <= rings; ring++ {
		v := float64(scaleMax) * float64(ring) / rings
		x, y := point(0, v)
		dc.DrawString(fmt.Sprintf("%g", v), x+4, y)
	}

	// Overlays.
	dc.SetLineWidth(fs / 300)
	for _, o := range overlays {
		dc.SetColor(o.Color)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			a, b := valueAt(o.Values, i), valueAt(o.Values, j)
			if a == nil || b == nil {
				continue
			}
			x1, y1 := point(i, scoring.Clamp(*a))
			x2, y2 := point(j, scoring.Clamp(*b))
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
		}
		for i := 0; i < n; i++ {
			v := valueAt(o.Values, i)
			if v == nil {
				continue
			}
			x, y := point(i, scoring.Clamp(*v))
			dc.DrawCircle(x, y, fs/200)
			dc.Fill()
		}
	}

	// Title and legend.
	if opts.Title != "" {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(opts.Title, cx, fs*0.04, 0.5, 0.5)
	}
	_, lineHeight := dc.MeasureString("Mg")
	lx, ly := fs*0.03, fs-fs*0.03-float64(len(overlays))*lineHeight*1.4
	for _, o := range overlays {
		dc.SetColor(o.Color)
		dc.DrawRectangle(lx, ly-lineHeight*0.8, lineHeight, lineHeight*0.8)
		dc.Fill()
		dc.SetColor(color.Black)
		dc.DrawString(o.Label, lx+lineHeight*1.5, ly)
		ly += lineHeight * 1.4
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func fontFace(points float64) (font.Face, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

func anchorFor(x, cx float64) float64 {
	switch {
	case math.Abs(x-cx) < 1:
		return 0.5
	case x < cx:
		return 1
	default:
		return 0
	}
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func hasValue(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}
