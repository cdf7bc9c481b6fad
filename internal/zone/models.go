package zone

import (
	"time"

	"github.com/ayurtrace/ayurtrace/internal/geo"
)

const keyPrefix = "ZONE-"

// SeasonalRestriction narrows when a zone may be harvested.
type SeasonalRestriction struct {
	AllowedSeasons []string `json:"allowedSeasons,omitempty"`
	StartDay       string   `json:"startDay,omitempty"` // MM-DD
	EndDay         string   `json:"endDay,omitempty"`   // MM-DD
}

// SustainabilityLimits caps extraction from a zone.
type SustainabilityLimits struct {
	MaxAnnualHarvestKg     float64 `json:"maxAnnualHarvestKg,omitempty"`
	MinDaysBetweenHarvests int     `json:"minDaysBetweenHarvests,omitempty"`
	MaxResourcePercent     float64 `json:"maxResourcePercent,omitempty"`
}

// CultivationZone is an approved harvest area. The shape is either circular
// (center + radius) or polygonal (ordered boundary vertices); exactly one of
// the two must be present. Zones are never deleted, only deactivated.
type CultivationZone struct {
	ZoneID    string   `json:"zoneId"`
	Name      string   `json:"name"`
	HerbTypes []string `json:"herbTypes"`

	Center   *geo.Point  `json:"center,omitempty"`
	RadiusM  *float64    `json:"radiusMeters,omitempty"`
	Boundary []geo.Point `json:"boundary,omitempty"`

	MinAltitudeM *float64 `json:"minAltitudeMeters,omitempty"`
	MaxAltitudeM *float64 `json:"maxAltitudeMeters,omitempty"`
	SoilType     string   `json:"soilType,omitempty"`
	Climate      string   `json:"climate,omitempty"`

	Seasonal *SeasonalRestriction  `json:"seasonalRestriction,omitempty"`
	Limits   *SustainabilityLimits `json:"sustainabilityLimits,omitempty"`

	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"createdAt"`
	StatusChangedAt *time.Time `json:"statusChangedAt,omitempty"`
}

func (z CultivationZone) key() string { return keyPrefix + z.ZoneID }

func (z CultivationZone) allowsHerb(herbType string) bool {
	for _, h := range z.HerbTypes {
		if h == herbType {
			return true
		}
	}
	return false
}

func (z CultivationZone) isCircular() bool {
	return z.Center != nil && z.RadiusM != nil
}

// ZoneMatch is one zone a point was found inside. DistanceM is set for
// circular zones only.
type ZoneMatch struct {
	ZoneID    string   `json:"zoneId"`
	ZoneName  string   `json:"zoneName"`
	DistanceM *float64 `json:"distanceMeters,omitempty"`
}

// PointCheck is the soft outcome of a geofence validation. A point may
// legitimately fall inside several overlapping zones; Matches lists all of
// them, not just the first.
type PointCheck struct {
	Valid   bool        `json:"isValid"`
	Message string      `json:"message"`
	Matches []ZoneMatch `json:"matches,omitempty"`
}
