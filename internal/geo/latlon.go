package geo

import "math"

// R is the mean Earth radius in kilometers.
const R = 6371.0

// LatLon is a WGS84 coordinate in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Wrap360 normalizes a bearing into [0,360).
func Wrap360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Wrap180 normalizes an angular difference into (-180,180].
func Wrap180(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d <= 0 {
		d += 360
	}
	return d - 180
}

// DistanceKm returns the haversine great-circle distance in kilometers.
func DistanceKm(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δφ := φ2 - φ1
	Δλ := toRadians(to.Lon - from.Lon)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	δ := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * δ
}

// BearingTo returns the initial bearing from one coordinate to another,
// in degrees [0,360).
func BearingTo(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δλ := toRadians(to.Lon - from.Lon)

	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	y := math.Sin(Δλ) * math.Cos(φ2)
	θ := math.Atan2(y, x)

	return Wrap360(toDegrees(θ))
}

// OffsetMeters shifts a coordinate east and north by the given distances.
// Planar approximation, adequate for racing-area scale (a few kilometers).
func OffsetMeters(from LatLon, eastM, northM float64) LatLon {
	const metersPerDegLat = 111320.0

	lat := from.Lat + northM/metersPerDegLat
	lon := from.Lon + eastM/(metersPerDegLat*math.Cos(toRadians(from.Lat)))

	return LatLon{Lat: lat, Lon: lon}
}
