package geo

import (
	"math"
	"strconv"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// FallbackKm is returned when coordinates are too malformed to compute a
// distance. It is large enough to rank such a store last on distance.
const FallbackKm = 999.0

// Coordinate is a point in floating-point degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the coordinate as "lat,lng", the form routing services expect.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Valid reports whether both components are finite and within range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// HaversineKm calculates the great-circle distance between two points in kilometers.
// It never fails: a non-finite result is replaced by FallbackKm.
func HaversineKm(from, to Coordinate) float64 {
	dLat := toRad(to.Lat - from.Lat)
	dLon := toRad(to.Lng - from.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(from.Lat))*math.Cos(toRad(to.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	d := EarthRadiusKm * c
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return FallbackKm
	}
	return d
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
