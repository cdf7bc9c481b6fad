package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Kerala cultivation belt reference pair.
	center := Point{Latitude: 10.1632, Longitude: 76.6413}
	near := Point{Latitude: 10.20, Longitude: 76.70}

	d := HaversineM(near, center)
	assert.InDelta(t, 8700, d, 400, "distance should be roughly 8.7 km")

	far := Point{Latitude: 9.0, Longitude: 76.0}
	assert.Greater(t, HaversineM(far, center), 50000.0)
}

func TestHaversineZero(t *testing.T) {
	p := Point{Latitude: 23.5, Longitude: 78.2}
	assert.Zero(t, HaversineM(p, p))
}

func TestInCircleBoundaryInclusive(t *testing.T) {
	center := Point{Latitude: 0, Longitude: 0}
	p := Point{Latitude: 0, Longitude: 1}
	r := HaversineM(p, center)

	assert.True(t, InCircle(p, center, r), "point at exactly the radius is contained")
	assert.False(t, InCircle(p, center, r-1))
}

func square() []Point {
	return []Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 10},
		{Latitude: 10, Longitude: 10},
		{Latitude: 10, Longitude: 0},
	}
}

func TestInPolygonInsideOutside(t *testing.T) {
	poly := square()
	assert.True(t, InPolygon(Point{Latitude: 5, Longitude: 5}, poly))
	assert.False(t, InPolygon(Point{Latitude: 15, Longitude: 5}, poly))
	assert.False(t, InPolygon(Point{Latitude: -0.1, Longitude: 5}, poly))
}

func TestInPolygonOnEdgeAndVertex(t *testing.T) {
	poly := square()
	assert.True(t, InPolygon(Point{Latitude: 0, Longitude: 5}, poly), "edge point is contained")
	assert.True(t, InPolygon(Point{Latitude: 10, Longitude: 10}, poly), "vertex is contained")
}

func TestInPolygonConcave(t *testing.T) {
	// L-shape: the notch at the upper right is outside.
	poly := []Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 10},
		{Latitude: 5, Longitude: 10},
		{Latitude: 5, Longitude: 5},
		{Latitude: 10, Longitude: 5},
		{Latitude: 10, Longitude: 0},
	}
	assert.True(t, InPolygon(Point{Latitude: 2, Longitude: 8}, poly))
	assert.False(t, InPolygon(Point{Latitude: 8, Longitude: 8}, poly))
}

func TestInPolygonAgainstWindingReference(t *testing.T) {
	poly := []Point{
		{Latitude: 1, Longitude: 1},
		{Latitude: 2, Longitude: 8},
		{Latitude: 7, Longitude: 9},
		{Latitude: 9, Longitude: 4},
		{Latitude: 5, Longitude: 0},
	}
	for lat := -1.0; lat <= 11.0; lat += 0.5 {
		for lon := -1.0; lon <= 11.0; lon += 0.5 {
			p := Point{Latitude: lat, Longitude: lon}
			if nearBoundary(p, poly) {
				continue
			}
			require.Equal(t, windingContains(p, poly), InPolygon(p, poly),
				"disagreement with reference at lat=%v lon=%v", lat, lon)
		}
	}
}

// windingContains is a brute-force winding-number reference implementation
// used only to cross-check ray casting.
func windingContains(p Point, poly []Point) bool {
	wn := 0
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		if a.Latitude <= p.Latitude {
			if b.Latitude > p.Latitude && isLeft(a, b, p) > 0 {
				wn++
			}
		} else if b.Latitude <= p.Latitude && isLeft(a, b, p) < 0 {
			wn--
		}
	}
	return wn != 0
}

func isLeft(a, b, p Point) float64 {
	return (b.Longitude-a.Longitude)*(p.Latitude-a.Latitude) - (p.Longitude-a.Longitude)*(b.Latitude-a.Latitude)
}

func nearBoundary(p Point, poly []Point) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		// Coarse proximity check; boundary behavior is covered separately.
		cross := (b.Latitude-a.Latitude)*(p.Longitude-a.Longitude) - (b.Longitude-a.Longitude)*(p.Latitude-a.Latitude)
		segLen := HaversineM(a, b) / EarthRadiusM
		if segLen == 0 {
			continue
		}
		if abs(cross) < 1e-6 {
			return true
		}
	}
	return false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
