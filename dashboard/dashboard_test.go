package dashboard

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/aluiziolira/go-nyc-airbnb/analysis"
	"github.com/aluiziolira/go-nyc-airbnb/chart"
	"github.com/aluiziolira/go-nyc-airbnb/models"
)

// scenarioTable is the three-row fixture: two Manhattan listings by host 1
// and one Brooklyn listing priced above the threshold.
func scenarioTable() *models.Table {
	return models.NewTable([]models.Listing{
		{HostID: 1, Price: 100, Region: "Manhattan", Longitude: 0, Latitude: 0, RoomType: "Entire home", Availability: 200},
		{HostID: 2, Price: 600, Region: "Brooklyn", Longitude: 1, Latitude: 1, RoomType: "Private room", Availability: 100},
		{HostID: 1, Price: 50, Region: "Manhattan", Longitude: 0.1, Latitude: 0.1, RoomType: "Shared room", Availability: 300},
	})
}

func newScenario() *Dashboard {
	return New(scenarioTable(), Options{Title: "NYC Airbnb Analytics", PlotlyURL: "https://cdn.plot.ly/plotly.min.js"})
}

func TestSelector(t *testing.T) {
	sel := newScenario().Selector()
	want := []string{analysis.AnyRegion, "Manhattan"}
	if !reflect.DeepEqual(sel.Options, want) {
		t.Fatalf("options = %v, want %v", sel.Options, want)
	}
	if sel.Value != analysis.AnyRegion {
		t.Fatalf("default = %q, want %q", sel.Value, analysis.AnyRegion)
	}
}

func TestRenderRegionPointCounts(t *testing.T) {
	d := newScenario()
	tests := []struct {
		region string
		points int
	}{
		{region: analysis.AnyRegion, points: 3},
		{region: "Manhattan", points: 2},
		{region: "Brooklyn", points: 1},
		{region: "Atlantis", points: 0},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			fig := d.RenderRegion(tt.region)
			if got := fig.PointCount(); got != tt.points {
				t.Fatalf("points = %d, want %d", got, tt.points)
			}
			if fig.Layout.Height != chart.DefaultHeight {
				t.Fatalf("height = %d, want %d", fig.Layout.Height, chart.DefaultHeight)
			}
			if fig.Layout.YAxis == nil || fig.Layout.YAxis.ScaleAnchor != "x" || fig.Layout.YAxis.ScaleRatio != 1 {
				t.Fatalf("aspect ratio not locked: %+v", fig.Layout.YAxis)
			}
			if fig.Layout.Title.Text != regionTitle {
				t.Fatalf("title = %q", fig.Layout.Title.Text)
			}
		})
	}
}

func TestRenderRegionColoursByRoomType(t *testing.T) {
	fig := newScenario().RenderRegion("Manhattan")
	var names []string
	for _, tr := range fig.Data {
		names = append(names, tr.Name)
	}
	if !reflect.DeepEqual(names, []string{"Entire home", "Shared room"}) {
		t.Fatalf("trace names = %v", names)
	}
	// Shared room is the third room type in the table, so it keeps the third
	// palette colour even though Manhattan has no private rooms.
	if got := fig.Data[1].Marker.Color; got != chart.Palette[2] {
		t.Fatalf("Shared room colour = %v, want %v", got, chart.Palette[2])
	}
	for _, tr := range newScenario().RenderRegion(analysis.AnyRegion).Data {
		if tr.Name == "Shared room" && tr.Marker.Color != chart.Palette[2] {
			t.Fatalf("Shared room colour differs between regions")
		}
	}
	for _, tr := range fig.Data {
		for i := range tr.X {
			if tr.X[i].(float64) > 0.5 {
				t.Fatalf("Manhattan figure holds a Brooklyn point: %v", tr.X)
			}
		}
	}
}

func TestHasRegion(t *testing.T) {
	d := newScenario()
	tests := []struct {
		region string
		want   bool
	}{
		{region: analysis.AnyRegion, want: true},
		{region: "Manhattan", want: true},
		// Only priced above the threshold, so absent from the selector.
		{region: "Brooklyn", want: true},
		{region: "Atlantis", want: false},
	}
	for _, tt := range tests {
		if got := d.HasRegion(tt.region); got != tt.want {
			t.Fatalf("HasRegion(%q) = %v, want %v", tt.region, got, tt.want)
		}
	}
}

func TestRenderRegionIsDeterministic(t *testing.T) {
	d := newScenario()
	for _, region := range d.Selector().Options {
		if !reflect.DeepEqual(d.RenderRegion(region), d.RenderRegion(region)) {
			t.Fatalf("render of %q differs between calls", region)
		}
	}
}

func TestRenderRegionDoesNotMutateTable(t *testing.T) {
	table := scenarioTable()
	before := append([]models.Listing(nil), table.Listings...)
	d := New(table, Options{})
	d.RenderRegion("Manhattan")
	d.RenderRegion(analysis.AnyRegion)
	if !reflect.DeepEqual(before, d.Table().Listings) {
		t.Fatalf("table changed after renders")
	}
}

func TestStaticPanels(t *testing.T) {
	d := newScenario()
	wantIDs := []string{
		PanelPrices, PanelAvailabilityMap, PanelRoomTypePricing, PanelPriceHistogram,
		PanelPriceDensity, PanelTopHosts, PanelAvailabilityMean,
	}
	var ids []string
	for _, p := range d.Panels() {
		ids = append(ids, p.ID)
	}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Fatalf("panel ids = %v", ids)
	}

	prices, _ := d.Panel(PanelPrices)
	if got := prices.Figure.PointCount(); got != 2 {
		t.Fatalf("price map points = %d, want 2 (filtered)", got)
	}
	availability, _ := d.Panel(PanelAvailabilityMap)
	if got := availability.Figure.PointCount(); got != 3 {
		t.Fatalf("availability map points = %d, want 3", got)
	}
	hosts, _ := d.Panel(PanelTopHosts)
	if x := hosts.Figure.Data[0].X; len(x) != 2 || x[0] != "1" {
		t.Fatalf("top hosts = %v, want host 1 first", x)
	}
	if _, ok := d.Panel("example-graph2"); ok {
		t.Fatalf("unexpected panel")
	}
}

func TestViews(t *testing.T) {
	d := newScenario()
	hosts, ok := d.View(ViewTopHosts)
	if !ok {
		t.Fatalf("missing top hosts view")
	}
	want := [][]string{{"1", "2"}, {"2", "1"}}
	if !reflect.DeepEqual(hosts.Rows, want) {
		t.Fatalf("top hosts rows = %v, want %v", hosts.Rows, want)
	}

	availability, _ := d.View(ViewAvailability)
	wantAvailability := [][]string{{"Brooklyn", "100.00"}, {"Manhattan", "250.00"}}
	if !reflect.DeepEqual(availability.Rows, wantAvailability) {
		t.Fatalf("availability rows = %v, want %v", availability.Rows, wantAvailability)
	}

	if _, ok := d.View("listings"); ok {
		t.Fatalf("unexpected view")
	}
}

func TestPageRendersSelectorAndSlots(t *testing.T) {
	var buf bytes.Buffer
	if err := newScenario().Page().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render page: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<title>NYC Airbnb Analytics</title>",
		`<select id="` + SelectorID + `"`,
		`<option value="Any" selected>Any</option>`,
		`<option value="Manhattan">Manhattan</option>`,
		`id="` + InteractiveID + `"`,
		`id="` + PanelTopHosts + `"`,
		"3 listings across 1 boroughs",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Index(html, `id="`+PanelAvailabilityMap+`"`) > strings.Index(html, SelectorID) {
		t.Fatalf("map panels should precede the region menu")
	}
}

func TestPageScriptIgnoresSupersededResponses(t *testing.T) {
	var buf bytes.Buffer
	if err := newScenario().Page().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render page: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		`data-target="` + InteractiveID + `"`,
		"new AbortController()",
		"if (seq !== latest) { return; }",
		"console.error(err)",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	guard := strings.Index(html, "if (seq !== latest)")
	draw := strings.Index(html, "plot(slot, fig, true)")
	if guard < 0 || draw < guard {
		t.Fatalf("region redraw must be guarded by the latest selection")
	}
}

func TestPageEscapesLabels(t *testing.T) {
	table := models.NewTable([]models.Listing{{Region: `<script>alert(1)</script>`, Price: 10, RoomType: "Private room"}})
	var buf bytes.Buffer
	if err := New(table, Options{}).Page().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render page: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)") {
		t.Fatalf("region label was not escaped")
	}
}

func TestPageSummaryUsesGroupedCounts(t *testing.T) {
	listings := make([]models.Listing, 1200)
	for i := range listings {
		listings[i] = models.Listing{HostID: int64(i), Region: "Queens", Price: 90, RoomType: "Private room"}
	}
	var buf bytes.Buffer
	if err := New(models.NewTable(listings), Options{}).Page().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(buf.String(), "1,200 listings") {
		t.Fatalf("expected grouped listing count")
	}
}
