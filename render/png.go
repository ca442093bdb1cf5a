// Package render rasterises chart figures to PNG for clients without a
// browser-side charting library.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aluiziolira/go-nyc-airbnb/chart"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrEmptyFigure is returned when a figure has nothing to draw.
	ErrEmptyFigure = errors.New("figure has no plottable points")
	// ErrUnsupported is returned for trace types that have no raster form.
	ErrUnsupported = errors.New("trace type has no png rendering")
)

const (
	DefaultWidth  = 1024
	DefaultHeight = chart.DefaultHeight
)

var (
	background = drawing.ColorFromHex("111111")
	foreground = drawing.ColorFromHex("f2f5fa")
	grid       = drawing.ColorFromHex("283442")
)

// PNG writes fig as a PNG image. Scatter-like traces become point series and
// bar traces a bar chart; mixing the two is unsupported.
func PNG(w io.Writer, fig chart.Figure, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if len(fig.Data) == 0 {
		return ErrEmptyFigure
	}

	switch fig.Data[0].Type {
	case chart.TypeBar:
		return renderBar(w, fig, width, height)
	case chart.TypeScatter, chart.TypeScatterGL, chart.TypeScatterMap:
		return renderScatter(w, fig, width, height)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, fig.Data[0].Type)
	}
}

func renderScatter(w io.Writer, fig chart.Figure, width, height int) error {
	series := make([]gochart.Series, 0, len(fig.Data))
	xr, yr := newBounds(), newBounds()
	named := 0
	for i, tr := range fig.Data {
		xs, ys := tr.X, tr.Y
		switch tr.Type {
		case chart.TypeScatter, chart.TypeScatterGL:
		case chart.TypeScatterMap:
			xs, ys = tr.Lon, tr.Lat
		default:
			return fmt.Errorf("%w: %s", ErrUnsupported, tr.Type)
		}

		px, py, err := points(xs, ys)
		if err != nil {
			return err
		}
		if len(px) == 0 {
			continue
		}
		xr.add(px...)
		yr.add(py...)
		if tr.Name != "" {
			named++
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    tr.Name,
			XValues: px,
			YValues: py,
			Style:   pointStyle(markerColor(tr.Marker, i)),
		})
	}
	if len(series) == 0 {
		return ErrEmptyFigure
	}

	ch := gochart.Chart{
		Title:      fig.Layout.Title.Text,
		TitleStyle: gochart.Style{FontColor: foreground},
		Width:      width,
		Height:     height,
		Background: gochart.Style{FillColor: background, Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Canvas:     gochart.Style{FillColor: background},
		XAxis: gochart.XAxis{
			Name:      axisName(fig.Layout.XAxis),
			NameStyle: gochart.Style{FontColor: foreground},
			Style:     axisStyle(),
			Range:     xr.rng(),
		},
		YAxis: gochart.YAxis{
			Name:      axisName(fig.Layout.YAxis),
			NameStyle: gochart.Style{FontColor: foreground},
			Style:     axisStyle(),
			Range:     yr.rng(),
		},
		Series: series,
	}
	if named > 1 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

func renderBar(w io.Writer, fig chart.Figure, width, height int) error {
	tr := fig.Data[0]
	bars := make([]gochart.Value, 0, len(tr.X))
	yr := newBounds()
	yr.add(0)
	for i := range tr.X {
		if i >= len(tr.Y) {
			break
		}
		v, ok := tr.Y[i].(float64)
		if !ok {
			continue
		}
		yr.add(v)
		bars = append(bars, gochart.Value{
			Label: fmt.Sprint(tr.X[i]),
			Value: v,
			Style: gochart.Style{FillColor: markerColor(tr.Marker, i), StrokeColor: background},
		})
	}
	if len(bars) == 0 {
		return ErrEmptyFigure
	}

	barWidth := max(8, width/(2*len(bars)+2))
	bc := gochart.BarChart{
		Title:      fig.Layout.Title.Text,
		TitleStyle: gochart.Style{FontColor: foreground},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: gochart.Style{FillColor: background, Padding: gochart.Box{Top: 40}},
		Canvas:     gochart.Style{FillColor: background},
		XAxis:      axisStyle(),
		YAxis: gochart.YAxis{
			Name:      axisName(fig.Layout.YAxis),
			NameStyle: gochart.Style{FontColor: foreground},
			Style:     axisStyle(),
			Range:     yr.rng(),
		},
		Bars: bars,
	}
	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar: %w", err)
	}
	return nil
}

// points keeps the pairs where both coordinates are numbers. Null values are
// skipped; categorical values cannot be placed on a continuous axis.
func points(xs, ys []any) ([]float64, []float64, error) {
	n := min(len(xs), len(ys))
	px := make([]float64, 0, n)
	py := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if xs[i] == nil || ys[i] == nil {
			continue
		}
		x, okX := xs[i].(float64)
		y, okY := ys[i].(float64)
		if !okX || !okY {
			return nil, nil, fmt.Errorf("%w: categorical axis", ErrUnsupported)
		}
		px = append(px, x)
		py = append(py, y)
	}
	return px, py, nil
}

// pointStyle draws markers only, with no connecting line.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    3,
		DotColor:    col,
	}
}

func axisStyle() gochart.Style {
	return gochart.Style{FontColor: foreground, StrokeColor: grid}
}

func axisName(a *chart.Axis) string {
	if a == nil || a.Title == nil {
		return ""
	}
	return a.Title.Text
}

// markerColor resolves a single CSS hex colour; per-point colour arrays fall
// back to the palette entry for the trace index.
func markerColor(m *chart.Marker, i int) drawing.Color {
	if m != nil {
		if s, ok := m.Color.(string); ok && strings.HasPrefix(s, "#") {
			return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
		}
	}
	return drawing.ColorFromHex(strings.TrimPrefix(chart.Palette[i%len(chart.Palette)], "#"))
}

type bounds struct {
	lo, hi float64
}

func newBounds() *bounds {
	return &bounds{lo: math.Inf(1), hi: math.Inf(-1)}
}

func (b *bounds) add(vs ...float64) {
	for _, v := range vs {
		b.lo = math.Min(b.lo, v)
		b.hi = math.Max(b.hi, v)
	}
}

// rng pads a degenerate range so a single point still has an axis.
func (b *bounds) rng() *gochart.ContinuousRange {
	lo, hi := b.lo, b.hi
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}
