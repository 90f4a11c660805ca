package geo

import "math"

const EarthRadiusMeters = 6371000.0

// floating-point slack for the radius comparison, so a device standing on
// the fence line (or a zero-radius site at the exact coordinates) passes.
const rangeTolerance = 1e-6

// RangeStatus is the verdict for a device position against a site geofence.
type RangeStatus struct {
	DistanceMeters float64 `json:"distanceMeters"`
	InRange        bool    `json:"inRange"`
}

// Distance returns the great-circle (haversine) distance in meters between
// two WGS84 coordinates.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// CheckRange computes the distance between the current position and the site
// and reports whether it falls within radiusMeters. The boundary is inclusive:
// a device exactly radiusMeters away is in range.
func CheckRange(currentLat, currentLng, siteLat, siteLng, radiusMeters float64) RangeStatus {
	d := Distance(currentLat, currentLng, siteLat, siteLng)
	return RangeStatus{
		DistanceMeters: d,
		InRange:        d <= radiusMeters+rangeTolerance,
	}
}
