package proximity

import "math"

// Band describes how far away an activity is in terms of how people would
// get there.
type Band string

const (
	Walk  Band = "walking distance"
	Ride  Band = "short ride"
	Drive Band = "short drive"
	Trip  Band = "day trip"
)

// Upper bounds, in km, of the closer bands.
const (
	WalkKm  = 1.5
	RideKm  = 5
	DriveKm = 30
)

// Classify returns the band for distanceKm, or "" when the distance lies
// outside radiusKm or either value is not usable.
func Classify(distanceKm, radiusKm float64) Band {
	if radiusKm <= 0 || distanceKm < 0 || distanceKm > radiusKm || math.IsNaN(distanceKm) {
		return ""
	}
	switch {
	case distanceKm <= WalkKm:
		return Walk
	case distanceKm <= RideKm:
		return Ride
	case distanceKm <= DriveKm:
		return Drive
	default:
		return Trip
	}
}
