// Package geostat implements the interpolation capability of the workflow:
// empirical variogram estimation over great-circle distance, spherical model
// fitting, an ordinary least-squares latitude trend and universal kriging
// with external drift.
package geostat

import "math"

// EarthRadius is the mean earth radius in kilometres, used to rescale
// great-circle distances from radians.
const EarthRadius = 6371.0

// GreatCircle returns the great-circle distance in kilometres between two
// (lat, lon) coordinates given in degrees.
func GreatCircle(lat1, lon1, lat2, lon2 float64) float64 {
	const deg = math.Pi / 180

	phi1 := lat1 * deg
	phi2 := lat2 * deg
	dPhi := (lat2 - lat1) * deg
	dLam := (lon2 - lon1) * deg

	sinPhi := math.Sin(dPhi / 2)
	sinLam := math.Sin(dLam / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLam*sinLam
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}
