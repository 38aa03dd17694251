package location

import "math"

// EarthRadiusKm is the Earth radius in kilometers for Haversine.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the length of one degree of latitude.
const kmPerDegreeLat = 111.0

// HaversineKm returns distance in km between two points (lat/lng in degrees).
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	φ1, φ2 := rad(lat1), rad(lat2)
	Δφ := rad(lat2 - lat1)
	Δλ := rad(lng2 - lng1)
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Box is a lat/lng rectangle used to pre-filter rows in SQL before the exact
// Haversine check.
type Box struct {
	LatMin, LatMax float64
	LngMin, LngMax float64
}

// BoundingBox returns a box that contains every point within radiusKm of
// (lat, lng). Longitude span widens with latitude; near the poles it covers
// the full range.
func BoundingBox(lat, lng, radiusKm float64) Box {
	dLat := radiusKm / kmPerDegreeLat
	b := Box{
		LatMin: math.Max(lat-dLat, -90),
		LatMax: math.Min(lat+dLat, 90),
		LngMin: -180,
		LngMax: 180,
	}
	cos := math.Cos(lat * math.Pi / 180)
	if cos > 0.01 {
		dLng := radiusKm / (kmPerDegreeLat * cos)
		if dLng < 180 {
			b.LngMin, b.LngMax = lng-dLng, lng+dLng
		}
	}
	return b
}

// ValidCoordinate reports whether lat/lng are within their ranges.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
