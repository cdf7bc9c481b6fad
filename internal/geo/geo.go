// Package geo holds the pure geometry used by zone containment checks.
package geo

import "math"

// EarthRadiusM is the mean earth radius used for great-circle distances.
const EarthRadiusM = 6371000.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineM returns the great-circle distance between a and b in meters.
func HaversineM(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// InCircle reports whether p lies within radiusM meters of center. The
// boundary is inclusive: a point at exactly radiusM is contained.
func InCircle(p, center Point, radiusM float64) bool {
	return HaversineM(p, center) <= radiusM
}

// InPolygon reports whether p lies inside the simple polygon described by the
// ordered vertices. Points on an edge or vertex are contained. Containment is
// decided by ray casting on the lat/lon plane, which is adequate for the
// zone sizes this system deals with (tens of kilometers).
func InPolygon(p Point, vertices []Point) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		if onSegment(p, vertices[i], vertices[(i+1)%n]) {
			return true
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Latitude > p.Latitude) != (vj.Latitude > p.Latitude) {
			cross := (vj.Longitude-vi.Longitude)*(p.Latitude-vi.Latitude)/(vj.Latitude-vi.Latitude) + vi.Longitude
			if p.Longitude < cross {
				inside = !inside
			}
		}
	}
	return inside
}

const onSegmentEps = 1e-12

func onSegment(p, a, b Point) bool {
	cross := (b.Latitude-a.Latitude)*(p.Longitude-a.Longitude) - (b.Longitude-a.Longitude)*(p.Latitude-a.Latitude)
	if math.Abs(cross) > onSegmentEps {
		return false
	}
	if p.Latitude < math.Min(a.Latitude, b.Latitude)-onSegmentEps || p.Latitude > math.Max(a.Latitude, b.Latitude)+onSegmentEps {
		return false
	}
	if p.Longitude < math.Min(a.Longitude, b.Longitude)-onSegmentEps || p.Longitude > math.Max(a.Longitude, b.Longitude)+onSegmentEps {
		return false
	}
	return true
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
