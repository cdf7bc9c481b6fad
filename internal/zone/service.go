package zone

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayurtrace/ayurtrace/internal/capability"
	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
)

// Service is the zone validator. Mutations require the regulator capability;
// reads are open to every organization.
type Service struct {
	store ledgerstate.Store
}

func NewService(store ledgerstate.Store) Service {
	return Service{store: store}
}

// AddZone registers a new cultivation zone. The zone starts active.
func (s Service) AddZone(id capability.Identity, z CultivationZone) (*CultivationZone, error) {
	if err := capability.Require(id, capability.Regulator); err != nil {
		return nil, err
	}
	if errs := ValidateZone(z); len(errs) > 0 {
		return nil, lederr.ValidationError{Items: errs}
	}

	existing, err := s.store.Get(z.key())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, lederr.ConflictError{Kind: "zone", ID: z.ZoneID}
	}

	z.Active = true
	z.CreatedAt = time.Now().UTC()
	z.StatusChangedAt = nil
	if err := s.put(z); err != nil {
		return nil, err
	}
	return &z, nil
}

// GetZone returns a zone by id.
func (s Service) GetZone(zoneID string) (*CultivationZone, error) {
	raw, err := s.store.Get(keyPrefix + zoneID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, lederr.NotFoundError{Kind: "zone", ID: zoneID}
	}
	var z CultivationZone
	if err := json.Unmarshal(raw, &z); err != nil {
		return nil, fmt.Errorf("unmarshal zone %s: %w", zoneID, err)
	}
	return &z, nil
}

// ListZones returns every zone, active or not, ordered by id.
func (s Service) ListZones() ([]CultivationZone, error) {
	kvs, err := s.store.Range(keyPrefix)
	if err != nil {
		return nil, err
	}
	zones := make([]CultivationZone, 0, len(kvs))
	for _, kv := range kvs {
		var z CultivationZone
		if err := json.Unmarshal(kv.Value, &z); err != nil {
			return nil, fmt.Errorf("unmarshal zone at %s: %w", kv.Key, err)
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// SetZoneActive flips the active flag. Repeating the same value is a no-op;
// an actual change stamps StatusChangedAt.
func (s Service) SetZoneActive(id capability.Identity, zoneID string, active bool) (*CultivationZone, error) {
	if err := capability.Require(id, capability.Regulator); err != nil {
		return nil, err
	}
	z, err := s.GetZone(zoneID)
	if err != nil {
		return nil, err
	}
	if z.Active == active {
		return z, nil
	}
	now := time.Now().UTC()
	z.Active = active
	z.StatusChangedAt = &now
	if err := s.put(*z); err != nil {
		return nil, err
	}
	return z, nil
}

// ValidatePoint checks a harvest coordinate against every active zone
// approved for the herb. All matching zones are reported, with the distance
// to center for circular ones; the circle boundary is inclusive.
func (s Service) ValidatePoint(herbType string, p geo.Point) (PointCheck, error) {
	if items := validatePoint("point", p); len(items) > 0 {
		return PointCheck{}, lederr.ValidationError{Items: items}
	}

	zones, err := s.ListZones()
	if err != nil {
		return PointCheck{}, err
	}

	var matches []ZoneMatch
	candidates := 0
	for _, z := range zones {
		if !z.Active || !z.allowsHerb(herbType) {
			continue
		}
		candidates++
		if z.isCircular() {
			d := geo.HaversineM(p, *z.Center)
			if d <= *z.RadiusM {
				dist := d
				matches = append(matches, ZoneMatch{ZoneID: z.ZoneID, ZoneName: z.Name, DistanceM: &dist})
			}
			continue
		}
		if geo.InPolygon(p, z.Boundary) {
			matches = append(matches, ZoneMatch{ZoneID: z.ZoneID, ZoneName: z.Name})
		}
	}

	if candidates == 0 {
		return PointCheck{Valid: false, Message: fmt.Sprintf("no active cultivation zone approves herb %q", herbType)}, nil
	}
	if len(matches) == 0 {
		return PointCheck{Valid: false, Message: fmt.Sprintf("point (%.4f, %.4f) is outside every approved zone for %q", p.Latitude, p.Longitude, herbType)}, nil
	}
	return PointCheck{
		Valid:   true,
		Message: fmt.Sprintf("point falls within %d approved zone(s)", len(matches)),
		Matches: matches,
	}, nil
}

func (s Service) put(z CultivationZone) error {
	raw, err := json.Marshal(z)
	if err != nil {
		return fmt.Errorf("marshal zone %s: %w", z.ZoneID, err)
	}
	return s.store.Put(z.key(), raw)
}
