// Package dashboard assembles the listings views into the served dashboard:
// a fixed set of static panels plus one chart redrawn per region selection.
package dashboard

import (
	"strconv"

	"github.com/aluiziolira/go-nyc-airbnb/analysis"
	"github.com/aluiziolira/go-nyc-airbnb/chart"
	"github.com/aluiziolira/go-nyc-airbnb/export"
	"github.com/aluiziolira/go-nyc-airbnb/models"
)

// InteractiveID is the element id of the region-driven chart.
const InteractiveID = "apartment-distribution"

// SelectorID is the element id of the region dropdown.
const SelectorID = "region-filter"

const regionTitle = "Airbnb Distribution in NYC"

// Options configures presentation.
type Options struct {
	Title         string
	StylesheetURL string
	MapboxToken   string
	PlotlyURL     string
}

// Selector is the region dropdown state: its choices and initial value.
type Selector struct {
	Options []string `json:"options"`
	Value   string   `json:"value"`
}

// Panel is one static chart on the page.
type Panel struct {
	ID     string       `json:"id"`
	Figure chart.Figure `json:"figure"`
}

// Dashboard holds the loaded table, its derived views and the static panels.
// It is read-only after New and safe for concurrent use.
type Dashboard struct {
	opts    Options
	table   *models.Table
	views   *analysis.Views
	panels  []Panel
	index   map[string]int
	present map[string]struct{}
}

// New derives every view and builds the static panels once.
func New(table *models.Table, opts Options) *Dashboard {
	if table == nil {
		table = models.NewTable(nil)
	}
	d := &Dashboard{
		opts:  opts,
		table: table,
		views: analysis.Derive(table),
	}
	d.panels = staticPanels(d.table, d.views, opts.MapboxToken)
	d.index = make(map[string]int, len(d.panels))
	for i, p := range d.panels {
		d.index[p.ID] = i
	}
	// Regions with listings before the price filter.
	d.present = make(map[string]struct{})
	for _, l := range table.Listings {
		d.present[l.Region] = struct{}{}
	}
	return d
}

// Table returns the unfiltered listings table.
func (d *Dashboard) Table() *models.Table {
	return d.table
}

// Selector returns the region choices, the "Any" sentinel first, and the
// default value.
func (d *Dashboard) Selector() Selector {
	options := make([]string, 0, len(d.views.Regions)+1)
	options = append(options, analysis.AnyRegion)
	options = append(options, d.views.Regions...)
	return Selector{Options: options, Value: analysis.AnyRegion}
}

// HasRegion reports whether RenderRegion(region) draws from real listings:
// AnyRegion, or a region holding at least one listing of the unfiltered
// table. The selector may omit such a region when all its listings fall
// above the price threshold.
func (d *Dashboard) HasRegion(region string) bool {
	if region == analysis.AnyRegion {
		return true
	}
	_, ok := d.present[region]
	return ok
}

// RenderRegion plots listing coordinates for region, coloured by room type.
// AnyRegion plots the whole table. Regions without listings yield a valid
// figure with no points. The result depends only on region, and a room type
// keeps the same trace colour whichever region is drawn.
func (d *Dashboard) RenderRegion(region string) chart.Figure {
	return chart.Scatter(analysis.InRegion(d.table, region), chart.Encoding{
		X:           models.FieldLongitude,
		Y:           models.FieldLatitude,
		Color:       models.FieldRoomType,
		Categories:  d.views.RoomTypes,
		Title:       regionTitle,
		Height:      chart.DefaultHeight,
		EqualAspect: true,
	})
}

// Panels returns the static panels in page order.
func (d *Dashboard) Panels() []Panel {
	return d.panels
}

// Panel looks up a static panel by id.
func (d *Dashboard) Panel(id string) (Panel, bool) {
	i, ok := d.index[id]
	if !ok {
		return Panel{}, false
	}
	return d.panels[i], true
}

// View names served by Views.
const (
	ViewTopHosts     = "top-hosts"
	ViewAvailability = "availability"
	ViewRegions      = "regions"
)

// Views returns the derived aggregate tables in export form.
func (d *Dashboard) Views() []export.View {
	hosts := export.View{Name: ViewTopHosts, Header: []string{"host_id", "count"}}
	for _, h := range d.views.TopHosts {
		hosts.Rows = append(hosts.Rows, []string{
			strconv.FormatInt(h.HostID, 10),
			strconv.Itoa(h.Count),
		})
	}

	availability := export.View{Name: ViewAvailability, Header: []string{"region", "mean_availability"}}
	for _, a := range d.views.Availability {
		availability.Rows = append(availability.Rows, []string{
			a.Region,
			strconv.FormatFloat(a.Mean, 'f', 2, 64),
		})
	}

	regions := export.View{Name: ViewRegions, Header: []string{"region"}}
	for _, r := range d.views.Regions {
		regions.Rows = append(regions.Rows, []string{r})
	}

	return []export.View{hosts, availability, regions}
}

// View looks up a derived view by name.
func (d *Dashboard) View(name string) (export.View, bool) {
	for _, v := range d.Views() {
		if v.Name == name {
			return v, true
		}
	}
	return export.View{}, false
}
