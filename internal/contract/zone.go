package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"

	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
	"github.com/ayurtrace/ayurtrace/internal/zone"
)

// ZoneContract exposes the cultivation zone registry and GPS validator.
type ZoneContract struct {
	contractapi.Contract
	log *zap.Logger
}

func NewZoneContract(log *zap.Logger) *ZoneContract {
	return &ZoneContract{log: log.Named("zone")}
}

func (c *ZoneContract) service(ctx contractapi.TransactionContextInterface) zone.Service {
	return zone.NewService(ledgerstate.NewStubStore(ctx.GetStub()))
}

// AddZone registers a cultivation zone from its JSON definition. Regulator
// only.
func (c *ZoneContract) AddZone(ctx contractapi.TransactionContextInterface, zoneJSON string) (*zone.CultivationZone, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var z zone.CultivationZone
	if err := unmarshalArg(zoneJSON, "zone", &z); err != nil {
		return nil, err
	}
	created, err := c.service(ctx).AddZone(id, z)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("zone added", zap.String("zoneId", created.ZoneID))
	return created, nil
}

// ValidatePoint reports every active zone approving the herb that contains
// the coordinate.
func (c *ZoneContract) ValidatePoint(ctx contractapi.TransactionContextInterface, herbType string, latitude, longitude float64) (*zone.PointCheck, error) {
	check, err := c.service(ctx).ValidatePoint(herbType, geo.Point{Latitude: latitude, Longitude: longitude})
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// SetZoneActive toggles a zone. Regulator only; repeating a value is a no-op.
func (c *ZoneContract) SetZoneActive(ctx contractapi.TransactionContextInterface, zoneID string, active bool) (*zone.CultivationZone, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	z, err := c.service(ctx).SetZoneActive(id, zoneID, active)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("zone status set",
		zap.String("zoneId", zoneID), zap.Bool("active", active))
	return z, nil
}

// GetZone returns one zone by id.
func (c *ZoneContract) GetZone(ctx contractapi.TransactionContextInterface, zoneID string) (*zone.CultivationZone, error) {
	return c.service(ctx).GetZone(zoneID)
}

// ListZones returns every registered zone.
func (c *ZoneContract) ListZones(ctx contractapi.TransactionContextInterface) ([]zone.CultivationZone, error) {
	return c.service(ctx).ListZones()
}
