// Package models defines the listing records and derived view rows.
package models

// Listing is one row of the NYC short-term rental dataset.
type Listing struct {
	HostID        int64   `csv:"host_id" json:"host_id"`
	Price         float64 `csv:"price" json:"price"`
	Region        string  `csv:"neighbourhood_group" json:"neighbourhood_group"`
	Neighbourhood string  `csv:"neighbourhood" json:"neighbourhood"`
	Longitude     float64 `csv:"longitude" json:"longitude"`
	Latitude      float64 `csv:"latitude" json:"latitude"`
	RoomType      string  `csv:"room_type" json:"room_type"`
	Availability  int     `csv:"availability_365" json:"availability_365"`
}

// Table is the ordered collection of listings as loaded. Derived views are
// new tables; nothing mutates a table once it has been built.
type Table struct {
	Listings []Listing
}

// NewTable wraps listings in a table.
func NewTable(listings []Listing) *Table {
	return &Table{Listings: listings}
}

// Len returns the number of listings, tolerating a nil table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Listings)
}

// HostCount pairs a host identifier with its number of listings.
type HostCount struct {
	HostID int64 `json:"host_id"`
	Count  int   `json:"count"`
}

// RegionAvailability holds the mean yearly availability of one region.
type RegionAvailability struct {
	Region string  `json:"region"`
	Mean   float64 `json:"mean_availability"`
}
