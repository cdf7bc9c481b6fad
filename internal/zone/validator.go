package zone

import (
	"fmt"

	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
)

// ValidateZone checks the structural shape of a zone definition. The radius
// and boundary forms are mutually exclusive and exactly one is required.
func ValidateZone(z CultivationZone) []lederr.ValidationItem {
	errs := make([]lederr.ValidationItem, 0)

	if z.ZoneID == "" {
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-REQ-001", Path: "zoneId", Message: "zoneId is required"})
	}
	if z.Name == "" {
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-REQ-002", Path: "name", Message: "name is required"})
	}
	if len(z.HerbTypes) == 0 {
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-REQ-003", Path: "herbTypes", Message: "at least one herb type is required"})
	}

	circular := z.Center != nil || z.RadiusM != nil
	polygonal := len(z.Boundary) > 0
	switch {
	case circular && polygonal:
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-SHAPE-001", Path: "center/boundary", Message: "zone must be circular or polygonal, not both"})
	case !circular && !polygonal:
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-SHAPE-002", Path: "center/boundary", Message: "zone needs either center+radius or a boundary"})
	case circular:
		if z.Center == nil || z.RadiusM == nil {
			errs = append(errs, lederr.ValidationItem{Code: "ZONE-SHAPE-003", Path: "center/radiusMeters", Message: "circular zone needs both center and radiusMeters"})
			break
		}
		if *z.RadiusM <= 0 {
			errs = append(errs, lederr.ValidationItem{Code: "ZONE-SHAPE-004", Path: "radiusMeters", Message: "radiusMeters must be positive"})
		}
		errs = append(errs, validatePoint("center", *z.Center)...)
	case polygonal:
		if len(z.Boundary) < 3 {
			errs = append(errs, lederr.ValidationItem{Code: "ZONE-SHAPE-005", Path: "boundary", Message: "boundary needs at least 3 vertices"})
		}
		for i, v := range z.Boundary {
			errs = append(errs, validatePoint(fmt.Sprintf("boundary[%d]", i), v)...)
		}
	}

	if z.MinAltitudeM != nil && z.MaxAltitudeM != nil && *z.MinAltitudeM > *z.MaxAltitudeM {
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-ALT-001", Path: "minAltitudeMeters", Message: "minAltitudeMeters exceeds maxAltitudeMeters"})
	}
	return errs
}

func validatePoint(path string, p geo.Point) []lederr.ValidationItem {
	var errs []lederr.ValidationItem
	if p.Latitude < -90 || p.Latitude > 90 {
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-GEO-001", Path: path + ".latitude", Message: "latitude must be within [-90, 90]"})
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		errs = append(errs, lederr.ValidationItem{Code: "ZONE-GEO-002", Path: path + ".longitude", Message: "longitude must be within [-180, 180]"})
	}
	return errs
}
