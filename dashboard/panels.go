package dashboard

import (
	"strconv"

	"github.com/aluiziolira/go-nyc-airbnb/analysis"
	"github.com/aluiziolira/go-nyc-airbnb/chart"
	"github.com/aluiziolira/go-nyc-airbnb/models"
)

// Static panel ids, in page order.
const (
	PanelPrices           = "price-chart"
	PanelAvailabilityMap  = "neighbourhood-rooms"
	PanelRoomTypePricing  = "neighbourhood-roomtype"
	PanelPriceHistogram   = "price-distribution"
	PanelPriceDensity     = "price-density"
	PanelTopHosts         = "host-plot"
	PanelAvailabilityMean = "availability-plot"
)

// Panels above the region menu; the rest follow the interactive chart.
const leadingPanels = 2

func staticPanels(table *models.Table, views *analysis.Views, token string) []Panel {
	maps := chart.MapOptions{AccessToken: token}

	hostLabels := make([]string, len(views.TopHosts))
	hostCounts := make([]float64, len(views.TopHosts))
	for i, h := range views.TopHosts {
		hostLabels[i] = strconv.FormatInt(h.HostID, 10)
		hostCounts[i] = float64(h.Count)
	}

	regionLabels := make([]string, len(views.Availability))
	regionMeans := make([]float64, len(views.Availability))
	for i, a := range views.Availability {
		regionLabels[i] = a.Region
		regionMeans[i] = a.Mean
	}

	return []Panel{
		{PanelPrices, chart.ScatterMap(views.PriceFiltered, chart.Encoding{
			Color:      models.FieldPrice,
			Title:      "Prices in the Five Boroughs",
			ColorScale: "Portland",
			Map:        maps,
		})},
		{PanelAvailabilityMap, chart.ScatterMap(table, chart.Encoding{
			Color:      models.FieldAvailability,
			Title:      "Availability in The Five Boroughs",
			ColorScale: "Viridis",
			Labels:     map[string]string{models.FieldAvailability: "Days Available Per Year"},
			Map:        maps,
		})},
		{PanelRoomTypePricing, chart.Scatter(table, chart.Encoding{
			X:     models.FieldRoomType,
			Y:     models.FieldPrice,
			Color: models.FieldRegion,
			Title: "Room Type and Neighbourhood Pricing",
		})},
		{PanelPriceHistogram, chart.Histogram(table, chart.Encoding{
			X:        models.FieldPrice,
			Color:    models.FieldRegion,
			Title:    "Distribution of Airbnb Prices in NYC",
			Marginal: "box",
		})},
		{PanelPriceDensity, chart.Violin(views.PriceFiltered, chart.Encoding{
			X:     models.FieldRegion,
			Y:     models.FieldPrice,
			Color: models.FieldRegion,
			Title: "Price Distribution of Neighbourhood Groups",
		})},
		{PanelTopHosts, chart.Bar(hostLabels, hostCounts, chart.Encoding{
			X:     "host_id",
			Y:     "count",
			Title: "Host IDs with Most Rentals",
			Labels: map[string]string{
				"host_id": "Host Ids",
				"count":   "Available Listings",
			},
		})},
		{PanelAvailabilityMean, chart.Bar(regionLabels, regionMeans, chart.Encoding{
			X:     models.FieldRegion,
			Y:     "mean_availability",
			Title: "Mean Availability by Borough",
			Labels: map[string]string{
				models.FieldRegion:  "Borough",
				"mean_availability": "Days Available Per Year",
			},
		})},
	}
}
