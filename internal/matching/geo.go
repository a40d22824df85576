package matching

import "math"

type DistanceUnit string

const (
	Miles      DistanceUnit = "mi"
	Kilometers DistanceUnit = "km"
)

const (
	earthRadiusMiles = 3959.0
	earthRadiusKm    = 6371.0
)

// Radius returns the Earth radius in the unit. Unknown units fall back to miles.
func (u DistanceUnit) Radius() float64 {
	if u == Kilometers {
		return earthRadiusKm
	}
	return earthRadiusMiles
}

// Haversine returns the great-circle distance between two coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64, unit DistanceUnit) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return unit.Radius() * c
}

// distanceBetween returns nil unless both profiles have coordinates.
func distanceBetween(a, b *Profile, unit DistanceUnit) *float64 {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return nil
	}
	d := Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude, unit)
	return &d
}
