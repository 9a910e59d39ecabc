package geofence

import (
	"math"

	xerrors "exam-service/pkg/xerrors"
)

// earthRadiusM is the mean Earth radius for the spherical approximation.
const earthRadiusM = 6371000.0

// Distance returns the great-circle distance in meters between two
// coordinates using the haversine formula. Pure; callers must reject
// non-finite input first (see CheckCoordinates).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// WithinRadius reports whether (userLat, userLon) lies inside the geofence
// around (centerLat, centerLon). The boundary is inclusive and the distance
// is rounded to the nearest meter for display.
func WithinRadius(userLat, userLon, centerLat, centerLon, radiusMeters float64) (bool, int64) {
	d := Distance(userLat, userLon, centerLat, centerLon)
	return d <= radiusMeters, int64(math.Round(d))
}

// CheckCoordinates rejects non-finite or out-of-range coordinates before
// they reach the distance math.
func CheckCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return xerrors.ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return xerrors.ErrInvalidCoordinates
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
