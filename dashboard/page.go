package dashboard

import (
	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

const (
	heading     = "New York City Airbnb Prices"
	subheading  = "Analysis of NYC Airbnb Prices"
	description = "Analysis of factors influencing prices of Airbnb rentals in New York City. " +
		"New York City is one of the most global cities in the world, and attracts tenants from all corners of the globe."
)

// pageView is everything the page template reads.
type pageView struct {
	Title         string
	StylesheetURL string
	PlotlyURL     string
	Summary       string
	Selector      Selector
	Leading       []Panel
	Interactive   Panel
	Trailing      []Panel
}

// Page renders the full dashboard document.
func (d *Dashboard) Page() templ.Component {
	return page(d.pageView())
}

func (d *Dashboard) pageView() pageView {
	title := d.opts.Title
	if title == "" {
		title = heading
	}
	p := message.NewPrinter(language.English)
	sel := d.Selector()
	panels := d.Panels()
	split := min(leadingPanels, len(panels))

	return pageView{
		Title:         title,
		StylesheetURL: d.opts.StylesheetURL,
		PlotlyURL:     d.opts.PlotlyURL,
		Summary:       p.Sprintf("%d listings across %d boroughs", d.table.Len(), len(d.views.Regions)),
		Selector:      sel,
		Leading:       panels[:split],
		Interactive:   Panel{ID: InteractiveID, Figure: d.RenderRegion(sel.Value)},
		Trailing:      panels[split:],
	}
}
