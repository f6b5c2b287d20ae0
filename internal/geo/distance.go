package geo

import "math"

// earthRadiusMeters is the mean Earth radius used throughout this
// package's distance/bearing/destination math (WGS84 authalic radius,
// rounded).
const earthRadiusMeters = 6371000.0

// HaversineDistance returns the great-circle distance, in meters,
// between two lat/lon points using the haversine formula - accurate for
// all distances, the default §4.4 calls for.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ApproximateDistance returns an equirectangular-projection approximation
// of the distance between two points, in meters. It is cheaper than
// HaversineDistance and adequate for short distances or pre-filtering a
// candidate set before an exact haversine pass.
func ApproximateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	x := (toRadians(lon2 - lon1)) * math.Cos((phi1+phi2)/2)
	y := toRadians(lat2 - lat1)
	return math.Sqrt(x*x+y*y) * earthRadiusMeters
}

// Bearing returns the initial compass bearing, in degrees [0, 360), for
// the great-circle path from (lat1, lon1) to (lat2, lon2).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dLambda := toRadians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	theta := math.Atan2(y, x)
	deg := toDegrees(theta)
	return math.Mod(deg+360, 360)
}

// Destination returns the point reached by traveling distanceMeters along
// the given bearing (degrees) from (lat, lon), using the direct
// great-circle (spherical) destination formula.
func Destination(lat, lon, bearingDeg, distanceMeters float64) (destLat, destLon float64) {
	phi1 := toRadians(lat)
	lambda1 := toRadians(lon)
	theta := toRadians(bearingDeg)
	delta := distanceMeters / earthRadiusMeters

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	return toDegrees(phi2), wrapLongitude(toDegrees(lambda2))
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
