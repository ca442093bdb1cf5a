package chart

import (
	"cmp"
	"math"
	"slices"

	"github.com/aluiziolira/go-nyc-airbnb/models"
)

// DefaultHeight is the display height of every dashboard chart.
const DefaultHeight = 700

// Above this many points scatter traces switch to the WebGL renderer.
const webGLThreshold = 1000

// Map defaults, centred on New York City.
var defaultCenter = LatLon{Lat: 40.7128, Lon: -74.0060}

const defaultZoom = 9

// Encoding maps listing fields to visual channels. Field names are the
// models.Field* constants.
type Encoding struct {
	X           string
	Y           string
	Color       string
	// Categories fixes the trace order and colour of colour-field values, so
	// a value keeps its colour in every subset of the table. Values missing
	// from the list follow in order of first appearance.
	Categories  []string
	Title       string
	Height      int
	Labels      map[string]string
	ColorScale  string
	EqualAspect bool
	// Marginal set to "box" stacks per-category box plots above a histogram.
	Marginal string
	Map      MapOptions
}

// MapOptions configures map subplots. Without a style, maps use the
// token-free "open-street-map" tiles unless an access token is present.
type MapOptions struct {
	Style       string
	AccessToken string
	Zoom        float64
}

func (e Encoding) label(field string) string {
	if l, ok := e.Labels[field]; ok {
		return l
	}
	return field
}

func (e Encoding) layout() Layout {
	height := e.Height
	if height <= 0 {
		height = DefaultHeight
	}
	l := Layout{
		Title:  Title{Text: e.Title, X: 0.5},
		Height: height,
	}
	if e.Color != "" && !models.IsNumeric(e.Color) {
		l.Legend = &Legend{Title: Title{Text: e.label(e.Color)}}
	}
	return l
}

// group is the slice of rows drawn as one trace. slot picks its palette
// colour.
type group struct {
	name string
	slot int
	rows []models.Listing
}

// partition splits rows by a categorical colour field, listed categories
// first and the rest in order of first appearance. Numeric or empty colour
// fields keep a single group.
func partition(t *models.Table, field string, categories []string) []group {
	var rows []models.Listing
	if t != nil {
		rows = t.Listings
	}
	if field == "" || models.IsNumeric(field) {
		return []group{{rows: rows}}
	}

	slots := make(map[string]int, len(categories))
	for i, c := range categories {
		if _, ok := slots[c]; !ok {
			slots[c] = i
		}
	}

	index := make(map[string]int)
	groups := make([]group, 0)
	extra := len(categories)
	for _, l := range rows {
		key, _ := l.Category(field)
		i, ok := index[key]
		if !ok {
			slot, listed := slots[key]
			if !listed {
				slot = extra
				extra++
			}
			i = len(groups)
			index[key] = i
			groups = append(groups, group{name: key, slot: slot})
		}
		groups[i].rows = append(groups[i].rows, l)
	}
	slices.SortStableFunc(groups, func(a, b group) int {
		return cmp.Compare(a.slot, b.slot)
	})
	return groups
}

func column(rows []models.Listing, field string) []any {
	out := make([]any, len(rows))
	for i, l := range rows {
		if v, ok := l.Number(field); ok {
			out[i] = number(v)
			continue
		}
		v, _ := l.Category(field)
		out[i] = v
	}
	return out
}

func (e Encoding) marker(g group) *Marker {
	if e.Color != "" && models.IsNumeric(e.Color) {
		return &Marker{
			Color:      column(g.rows, e.Color),
			ColorScale: e.ColorScale,
			ShowScale:  true,
			ColorBar:   &ColorBar{Title: Title{Text: e.label(e.Color)}},
		}
	}
	return &Marker{Color: paletteColor(g.slot)}
}

func (g group) named(tr Trace) Trace {
	if g.name == "" {
		return tr
	}
	tr.Name = g.name
	tr.LegendGroup = g.name
	tr.ShowLegend = boolPtr(true)
	return tr
}

func finish(data []Trace, layout Layout) Figure {
	if data == nil {
		data = []Trace{}
	}
	applyTheme(&layout)
	return Figure{Data: data, Layout: layout}
}

// Scatter plots enc.Y against enc.X, one trace per colour category.
func Scatter(t *models.Table, enc Encoding) Figure {
	traceType := TypeScatter
	if t.Len() > webGLThreshold {
		traceType = TypeScatterGL
	}

	groups := partition(t, enc.Color, enc.Categories)
	data := make([]Trace, 0, len(groups))
	for _, g := range groups {
		data = append(data, g.named(Trace{
			Type:   traceType,
			Mode:   "markers",
			X:      column(g.rows, enc.X),
			Y:      column(g.rows, enc.Y),
			Marker: enc.marker(g),
		}))
	}

	layout := enc.layout()
	layout.XAxis = &Axis{Title: &Title{Text: enc.label(enc.X)}}
	layout.YAxis = &Axis{Title: &Title{Text: enc.label(enc.Y)}}
	if enc.EqualAspect {
		layout.YAxis.ScaleAnchor = "x"
		layout.YAxis.ScaleRatio = 1
	}
	return finish(data, layout)
}

// ScatterMap plots listings at their coordinates on a map.
func ScatterMap(t *models.Table, enc Encoding) Figure {
	groups := partition(t, enc.Color, enc.Categories)
	data := make([]Trace, 0, len(groups))
	for _, g := range groups {
		data = append(data, g.named(Trace{
			Type:   TypeScatterMap,
			Mode:   "markers",
			Lon:    column(g.rows, models.FieldLongitude),
			Lat:    column(g.rows, models.FieldLatitude),
			Marker: enc.marker(g),
		}))
	}

	style := enc.Map.Style
	if style == "" {
		style = "open-street-map"
		if enc.Map.AccessToken != "" {
			style = "dark"
		}
	}
	zoom := enc.Map.Zoom
	if zoom <= 0 {
		zoom = defaultZoom
	}

	layout := enc.layout()
	layout.Mapbox = &Mapbox{
		Style:       style,
		AccessToken: enc.Map.AccessToken,
		Center:      center(t),
		Zoom:        zoom,
	}
	return finish(data, layout)
}

// Histogram counts enc.X per colour category, optionally with a marginal
// box plot per category.
func Histogram(t *models.Table, enc Encoding) Figure {
	groups := partition(t, enc.Color, enc.Categories)
	data := make([]Trace, 0, 2*len(groups))
	for _, g := range groups {
		values := column(g.rows, enc.X)
		data = append(data, g.named(Trace{
			Type:   TypeHistogram,
			X:      values,
			Marker: &Marker{Color: paletteColor(g.slot)},
		}))
		if enc.Marginal == "box" {
			data = append(data, Trace{
				Type:        TypeBox,
				Name:        g.name,
				LegendGroup: g.name,
				ShowLegend:  boolPtr(false),
				X:           values,
				Marker:      &Marker{Color: paletteColor(g.slot)},
				YAxis:       "y2",
			})
		}
	}

	layout := enc.layout()
	layout.BarMode = "relative"
	layout.XAxis = &Axis{Title: &Title{Text: enc.label(enc.X)}}
	layout.YAxis = &Axis{Title: &Title{Text: "count"}}
	if enc.Marginal == "box" {
		layout.YAxis.Domain = []float64{0, 0.74}
		layout.YAxis2 = &Axis{Domain: []float64{0.75, 1}, ShowTicks: boolPtr(false)}
	}
	return finish(data, layout)
}

// Violin draws the distribution of enc.Y for each enc.X category, one trace
// per colour category, with an inner box.
func Violin(t *models.Table, enc Encoding) Figure {
	groups := partition(t, enc.Color, enc.Categories)
	data := make([]Trace, 0, len(groups))
	for _, g := range groups {
		data = append(data, g.named(Trace{
			Type:   TypeViolin,
			X:      column(g.rows, enc.X),
			Y:      column(g.rows, enc.Y),
			Box:    &BoxStyle{Visible: true},
			Marker: &Marker{Color: paletteColor(g.slot)},
		}))
	}

	layout := enc.layout()
	layout.ViolinMode = "overlay"
	layout.XAxis = &Axis{Title: &Title{Text: enc.label(enc.X)}}
	layout.YAxis = &Axis{Title: &Title{Text: enc.label(enc.Y)}}
	return finish(data, layout)
}

// Bar draws one bar per label, coloured by value on a continuous scale.
// enc.X and enc.Y only name the axes.
func Bar(labels []string, values []float64, enc Encoding) Figure {
	n := min(len(labels), len(values))
	x := make([]any, n)
	y := make([]any, n)
	for i := 0; i < n; i++ {
		x[i] = labels[i]
		y[i] = number(values[i])
	}

	layout := enc.layout()
	layout.Legend = nil
	layout.XAxis = &Axis{Title: &Title{Text: enc.label(enc.X)}, Type: "category"}
	layout.YAxis = &Axis{Title: &Title{Text: enc.label(enc.Y)}}

	tr := Trace{
		Type: TypeBar,
		X:    x,
		Y:    y,
		Marker: &Marker{
			Color:      y,
			ColorScale: enc.ColorScale,
			ShowScale:  true,
			ColorBar:   &ColorBar{Title: Title{Text: enc.label(enc.Y)}},
		},
	}
	return finish([]Trace{tr}, layout)
}

func center(t *models.Table) LatLon {
	var lat, lon float64
	n := 0
	if t != nil {
		for _, l := range t.Listings {
			if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) {
				continue
			}
			lat += l.Latitude
			lon += l.Longitude
			n++
		}
	}
	if n == 0 {
		return defaultCenter
	}
	return LatLon{Lat: lat / float64(n), Lon: lon / float64(n)}
}
