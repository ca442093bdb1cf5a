// Package analysis derives the fixed secondary views of the listings table.
// Every function is pure: the input table is never modified and the same
// table always yields the same view.
package analysis

import (
	"sort"

	"github.com/aluiziolira/go-nyc-airbnb/models"
)

const (
	// PriceThreshold excludes extreme outliers from price-oriented views.
	PriceThreshold = 500.0
	// TopHostLimit is the size of the top-host table.
	TopHostLimit = 10
	// AnyRegion is the selector sentinel meaning "no region filter".
	AnyRegion = "Any"
)

// Views bundles the derived views computed once at startup.
type Views struct {
	PriceFiltered *models.Table
	Regions       []string
	TopHosts      []models.HostCount
	Availability  []models.RegionAvailability
	RoomTypes     []string
}

// Derive computes every view from the unfiltered table.
func Derive(t *models.Table) *Views {
	filtered := PriceFiltered(t)
	return &Views{
		PriceFiltered: filtered,
		Regions:       Regions(filtered),
		TopHosts:      TopHosts(t, TopHostLimit),
		Availability:  AvailabilityByRegion(t),
		RoomTypes:     RoomTypes(t),
	}
}

// PriceFiltered keeps listings priced strictly below PriceThreshold.
func PriceFiltered(t *models.Table) *models.Table {
	return Where(t, func(l models.Listing) bool {
		return l.Price < PriceThreshold
	})
}

// InRegion keeps listings whose region equals region. AnyRegion returns t
// itself; an unknown region yields an empty table.
func InRegion(t *models.Table, region string) *models.Table {
	if region == AnyRegion {
		return t
	}
	return Where(t, func(l models.Listing) bool {
		return l.Region == region
	})
}

// Where returns a new table holding the listings accepted by keep, in order.
func Where(t *models.Table, keep func(models.Listing) bool) *models.Table {
	out := make([]models.Listing, 0, t.Len())
	if t != nil {
		for _, l := range t.Listings {
			if keep(l) {
				out = append(out, l)
			}
		}
	}
	return models.NewTable(out)
}

// Regions returns the distinct region labels of t sorted ascending.
func Regions(t *models.Table) []string {
	regions := distinctInOrder(t, func(l models.Listing) string { return l.Region })
	sort.Strings(regions)
	return regions
}

// RoomTypes returns the distinct room types in order of first appearance.
func RoomTypes(t *models.Table) []string {
	return distinctInOrder(t, func(l models.Listing) string { return l.RoomType })
}

// TopHosts returns the n hosts with the most listings, count descending.
// Hosts with equal counts keep the order in which they first appear.
func TopHosts(t *models.Table, n int) []models.HostCount {
	if n <= 0 || t.Len() == 0 {
		return []models.HostCount{}
	}

	index := make(map[int64]int)
	counts := make([]models.HostCount, 0)
	for _, l := range t.Listings {
		i, ok := index[l.HostID]
		if !ok {
			i = len(counts)
			index[l.HostID] = i
			counts = append(counts, models.HostCount{HostID: l.HostID})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// AvailabilityByRegion returns the mean availability of each region, sorted
// by region label.
func AvailabilityByRegion(t *models.Table) []models.RegionAvailability {
	type acc struct {
		sum   int
		count int
	}
	groups := make(map[string]*acc)
	if t != nil {
		for _, l := range t.Listings {
			g, ok := groups[l.Region]
			if !ok {
				g = &acc{}
				groups[l.Region] = g
			}
			g.sum += l.Availability
			g.count++
		}
	}

	out := make([]models.RegionAvailability, 0, len(groups))
	for region, g := range groups {
		out = append(out, models.RegionAvailability{
			Region: region,
			Mean:   float64(g.sum) / float64(g.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Region < out[j].Region
	})
	return out
}

func distinctInOrder(t *models.Table, key func(models.Listing) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	if t == nil {
		return out
	}
	for _, l := range t.Listings {
		k := key(l)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
