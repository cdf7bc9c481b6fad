package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurtrace/ayurtrace/internal/capability"
	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
)

var regulator = capability.Identity{MSPID: capability.Regulator}

func f64(v float64) *float64 { return &v }

func keralaZone() CultivationZone {
	return CultivationZone{
		ZoneID:    "ZONE001",
		Name:      "Western Ghats Belt",
		HerbTypes: []string{"Ashwagandha", "Brahmi"},
		Center:    &geo.Point{Latitude: 10.1632, Longitude: 76.6413},
		RadiusM:   f64(50000),
	}
}

func newService() (Service, *ledgerstate.Mem) {
	mem := ledgerstate.NewMem()
	return NewService(mem), mem
}

func TestAddZoneAndGet(t *testing.T) {
	svc, _ := newService()
	created, err := svc.AddZone(regulator, keralaZone())
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.GetZone("ZONE001")
	require.NoError(t, err)
	assert.Equal(t, "Western Ghats Belt", got.Name)
}

func TestAddZoneDuplicate(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddZone(regulator, keralaZone())
	require.NoError(t, err)

	_, err = svc.AddZone(regulator, keralaZone())
	assert.True(t, lederr.IsConflict(err))
}

func TestAddZoneRequiresRegulator(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddZone(capability.Identity{MSPID: capability.Farmer}, keralaZone())
	assert.True(t, lederr.IsPermission(err))
}

func TestAddZoneSchemaRejections(t *testing.T) {
	svc, _ := newService()

	cases := map[string]func(*CultivationZone){
		"missing id":          func(z *CultivationZone) { z.ZoneID = "" },
		"no herbs":            func(z *CultivationZone) { z.HerbTypes = nil },
		"both shapes":         func(z *CultivationZone) { z.Boundary = []geo.Point{{}, {}, {}} },
		"no shape":            func(z *CultivationZone) { z.Center = nil; z.RadiusM = nil },
		"nonpositive radius":  func(z *CultivationZone) { z.RadiusM = f64(0) },
		"latitude range":      func(z *CultivationZone) { z.Center.Latitude = 91 },
		"short boundary":      func(z *CultivationZone) { z.Center = nil; z.RadiusM = nil; z.Boundary = []geo.Point{{}, {}} },
		"altitude inversion":  func(z *CultivationZone) { z.MinAltitudeM = f64(900); z.MaxAltitudeM = f64(100) },
	}
	for name, mutate := range cases {
		z := keralaZone()
		mutate(&z)
		_, err := svc.AddZone(regulator, z)
		var verr lederr.ValidationError
		require.ErrorAs(t, err, &verr, "case %q should fail schema validation", name)
	}
}

func TestValidatePointCircular(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddZone(regulator, keralaZone())
	require.NoError(t, err)

	in, err := svc.ValidatePoint("Ashwagandha", geo.Point{Latitude: 10.20, Longitude: 76.70})
	require.NoError(t, err)
	require.True(t, in.Valid)
	require.Len(t, in.Matches, 1)
	require.NotNil(t, in.Matches[0].DistanceM)
	assert.InDelta(t, 8700, *in.Matches[0].DistanceM, 400)

	out, err := svc.ValidatePoint("Ashwagandha", geo.Point{Latitude: 9.0, Longitude: 76.0})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Empty(t, out.Matches)
}

func TestValidatePointHerbFilter(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddZone(regulator, keralaZone())
	require.NoError(t, err)

	res, err := svc.ValidatePoint("Tulsi", geo.Point{Latitude: 10.20, Longitude: 76.70})
	require.NoError(t, err)
	assert.False(t, res.Valid, "zone does not approve Tulsi")
}

func TestValidatePointOverlappingZones(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddZone(regulator, keralaZone())
	require.NoError(t, err)

	poly := CultivationZone{
		ZoneID:    "ZONE002",
		Name:      "Overlapping Polygon",
		HerbTypes: []string{"Ashwagandha"},
		Boundary: []geo.Point{
			{Latitude: 10.0, Longitude: 76.5},
			{Latitude: 10.0, Longitude: 76.9},
			{Latitude: 10.4, Longitude: 76.9},
			{Latitude: 10.4, Longitude: 76.5},
		},
	}
	_, err = svc.AddZone(regulator, poly)
	require.NoError(t, err)

	res, err := svc.ValidatePoint("Ashwagandha", geo.Point{Latitude: 10.20, Longitude: 76.70})
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Len(t, res.Matches, 2, "every containing zone is reported")
}

func TestSetZoneActive(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddZone(regulator, keralaZone())
	require.NoError(t, err)

	z, err := svc.SetZoneActive(regulator, "ZONE001", false)
	require.NoError(t, err)
	assert.False(t, z.Active)
	require.NotNil(t, z.StatusChangedAt)
	first := *z.StatusChangedAt

	// Deactivated zones stop matching points.
	res, err := svc.ValidatePoint("Ashwagandha", geo.Point{Latitude: 10.20, Longitude: 76.70})
	require.NoError(t, err)
	assert.False(t, res.Valid)

	// Idempotent repeat.
	z, err = svc.SetZoneActive(regulator, "ZONE001", false)
	require.NoError(t, err)
	assert.Equal(t, first, *z.StatusChangedAt)

	_, err = svc.SetZoneActive(regulator, "ZONE404", true)
	assert.True(t, lederr.IsNotFound(err))
}
