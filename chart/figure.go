// Package chart builds declarative figure specifications from listing views.
//
// A Figure is plain data that serialises to the plotly.js figure format
// ({"data": [...], "layout": {...}}). Builders take an explicit data view and
// an Encoding; nothing here renders pixels.
package chart

import "math"

// Trace types produced by the builders.
const (
	TypeScatter    = "scatter"
	TypeScatterGL  = "scattergl"
	TypeScatterMap = "scattermapbox"
	TypeBar        = "bar"
	TypeHistogram  = "histogram"
	TypeBox        = "box"
	TypeViolin     = "violin"
)

// Figure is a complete chart specification.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one plotted series.
type Trace struct {
	Type        string    `json:"type"`
	Mode        string    `json:"mode,omitempty"`
	Name        string    `json:"name,omitempty"`
	LegendGroup string    `json:"legendgroup,omitempty"`
	ShowLegend  *bool     `json:"showlegend,omitempty"`
	X           []any     `json:"x,omitempty"`
	Y           []any     `json:"y,omitempty"`
	Lon         []any     `json:"lon,omitempty"`
	Lat         []any     `json:"lat,omitempty"`
	Marker      *Marker   `json:"marker,omitempty"`
	Box         *BoxStyle `json:"box,omitempty"`
	XAxis       string    `json:"xaxis,omitempty"`
	YAxis       string    `json:"yaxis,omitempty"`
}

// Marker styles the points or bars of a trace. Color is either a single CSS
// colour or a per-point numeric array mapped through ColorScale.
type Marker struct {
	Color      any       `json:"color,omitempty"`
	ColorScale string    `json:"colorscale,omitempty"`
	ShowScale  bool      `json:"showscale,omitempty"`
	ColorBar   *ColorBar `json:"colorbar,omitempty"`
	Size       float64   `json:"size,omitempty"`
}

// ColorBar titles a continuous colour scale.
type ColorBar struct {
	Title Title `json:"title"`
}

// BoxStyle toggles the inner box of a violin trace.
type BoxStyle struct {
	Visible bool `json:"visible"`
}

// Layout holds figure-level options.
type Layout struct {
	Title        Title   `json:"title"`
	Height       int     `json:"height,omitempty"`
	PaperBGColor string  `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string  `json:"plot_bgcolor,omitempty"`
	Font         *Font   `json:"font,omitempty"`
	XAxis        *Axis   `json:"xaxis,omitempty"`
	YAxis        *Axis   `json:"yaxis,omitempty"`
	YAxis2       *Axis   `json:"yaxis2,omitempty"`
	Legend       *Legend `json:"legend,omitempty"`
	Mapbox       *Mapbox `json:"mapbox,omitempty"`
	BarMode      string  `json:"barmode,omitempty"`
	ViolinMode   string  `json:"violinmode,omitempty"`
}

// Title is a chart or axis title; X positions it horizontally (0.5 centres).
type Title struct {
	Text string  `json:"text"`
	X    float64 `json:"x,omitempty"`
}

// Font sets the text colour of a layout.
type Font struct {
	Color string `json:"color"`
}

// Axis configures a cartesian axis.
type Axis struct {
	Title       *Title    `json:"title,omitempty"`
	Type        string    `json:"type,omitempty"`
	ScaleAnchor string    `json:"scaleanchor,omitempty"`
	ScaleRatio  float64   `json:"scaleratio,omitempty"`
	Domain      []float64 `json:"domain,omitempty"`
	GridColor   string    `json:"gridcolor,omitempty"`
	ShowTicks   *bool     `json:"showticklabels,omitempty"`
}

// Legend titles the categorical legend.
type Legend struct {
	Title Title `json:"title"`
}

// Mapbox configures a map subplot.
type Mapbox struct {
	Style       string  `json:"style"`
	AccessToken string  `json:"accesstoken,omitempty"`
	Center      LatLon  `json:"center"`
	Zoom        float64 `json:"zoom"`
}

// LatLon is a map position.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PointCount returns the number of markers or bars the figure plots. Summary
// traces (histograms, boxes, violins) are not counted.
func (f Figure) PointCount() int {
	n := 0
	for _, tr := range f.Data {
		switch tr.Type {
		case TypeScatter, TypeScatterGL, TypeBar:
			n += len(tr.X)
		case TypeScatterMap:
			n += len(tr.Lon)
		}
	}
	return n
}

// Dark theme, after plotly's "plotly_dark" template.
const (
	darkBackground = "rgb(17,17,17)"
	darkFont       = "#f2f5fa"
	darkGrid       = "#283442"
)

// Palette is the categorical colour sequence assigned to traces in order.
var Palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

func paletteColor(i int) string {
	return Palette[i%len(Palette)]
}

func applyTheme(l *Layout) {
	l.PaperBGColor = darkBackground
	l.PlotBGColor = darkBackground
	l.Font = &Font{Color: darkFont}
	for _, axis := range []*Axis{l.XAxis, l.YAxis, l.YAxis2} {
		if axis != nil {
			axis.GridColor = darkGrid
		}
	}
}

// number maps values JSON cannot carry (NaN, ±Inf) to null.
func number(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func boolPtr(b bool) *bool {
	return &b
}
