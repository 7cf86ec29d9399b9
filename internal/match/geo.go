package match

import (
	"fmt"
	"math"
)

// earthRadiusKm is the mean sphere radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Coordinates is an optional profile attribute; profiles without a fix
// carry a nil *Coordinates.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between two points in
// kilometers using the haversine formula.
func Distance(aLat, aLon, bLat, bLon float64) float64 {
	dLat := (bLat - aLat) * math.Pi / 180
	dLon := (bLon - aLon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(aLat*math.Pi/180)*math.Cos(bLat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceBetween computes the distance when both sides carry coordinates,
// nil otherwise.
func DistanceBetween(a, b *Coordinates) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := Distance(a.Lat, a.Lon, b.Lat, b.Lon)
	return &d
}

// FormatDistance renders a distance for display: meters under one
// kilometer, otherwise kilometers to one decimal.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d米", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f公里", km)
}
