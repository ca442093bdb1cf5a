package models

// Field names, matching the dataset's column headers.
const (
	FieldHostID        = "host_id"
	FieldPrice         = "price"
	FieldRegion        = "neighbourhood_group"
	FieldNeighbourhood = "neighbourhood"
	FieldLongitude     = "longitude"
	FieldLatitude      = "latitude"
	FieldRoomType      = "room_type"
	FieldAvailability  = "availability_365"
)

// Fields lists every listing field in model order.
var Fields = []string{
	FieldHostID,
	FieldPrice,
	FieldRegion,
	FieldNeighbourhood,
	FieldLongitude,
	FieldLatitude,
	FieldRoomType,
	FieldAvailability,
}

// IsNumeric reports whether name holds a numeric value.
func IsNumeric(name string) bool {
	switch name {
	case FieldHostID, FieldPrice, FieldLongitude, FieldLatitude, FieldAvailability:
		return true
	}
	return false
}

// Number returns a numeric field as float64. ok is false for categorical or
// unknown fields.
func (l Listing) Number(name string) (value float64, ok bool) {
	switch name {
	case FieldHostID:
		return float64(l.HostID), true
	case FieldPrice:
		return l.Price, true
	case FieldLongitude:
		return l.Longitude, true
	case FieldLatitude:
		return l.Latitude, true
	case FieldAvailability:
		return float64(l.Availability), true
	}
	return 0, false
}

// Category returns a categorical field. ok is false for numeric or unknown
// fields.
func (l Listing) Category(name string) (value string, ok bool) {
	switch name {
	case FieldRegion:
		return l.Region, true
	case FieldNeighbourhood:
		return l.Neighbourhood, true
	case FieldRoomType:
		return l.RoomType, true
	}
	return "", false
}
