package contract

import (
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/harvest"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
	"github.com/ayurtrace/ayurtrace/internal/provenance"
	"github.com/ayurtrace/ayurtrace/internal/zone"
)

// HarvestContract exposes the season and quota validators plus the composed
// harvest admission flow.
type HarvestContract struct {
	contractapi.Contract
	log *zap.Logger
}

func NewHarvestContract(log *zap.Logger) *HarvestContract {
	return &HarvestContract{log: log.Named("harvest")}
}

func (c *HarvestContract) service(ctx contractapi.TransactionContextInterface) harvest.Service {
	return harvest.NewService(ledgerstate.NewStubStore(ctx.GetStub()))
}

// HarvestSubmission is the composed admission request: a new batch id plus
// its collection event.
type HarvestSubmission struct {
	BatchID    string                     `json:"batchId"`
	Collection provenance.CollectionEvent `json:"collectionEvent"`
}

// HarvestAdmission is the composed outcome. When any rule check fails the
// submission is rejected with the individual check results and nothing is
// written.
type HarvestAdmission struct {
	Approved bool                         `json:"approved"`
	Message  string                       `json:"message"`
	Zone     zone.PointCheck              `json:"zoneCheck"`
	Season   harvest.SeasonCheck          `json:"seasonCheck"`
	Quota    harvest.QuotaCheck           `json:"quotaCheck"`
	Record   *provenance.ProvenanceRecord `json:"record,omitempty"`
}

// SubmitHarvest runs the full admission inside one transaction: geofence,
// season and quota checks, then quota commit and batch record creation. The
// single transaction boundary is what closes the validate/commit race: if a
// competing submission consumes the same quota keys first, this transaction
// fails commit-time validation and the caller resubmits.
func (c *HarvestContract) SubmitHarvest(ctx contractapi.TransactionContextInterface, submissionJSON string) (*HarvestAdmission, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var sub HarvestSubmission
	if err := unmarshalArg(submissionJSON, "submission", &sub); err != nil {
		return nil, err
	}

	store := ledgerstate.NewStubStore(ctx.GetStub())
	ev := sub.Collection
	adm := HarvestAdmission{}

	zoneCheck, err := zone.NewService(store).ValidatePoint(ev.HerbType, ev.Location)
	if err != nil {
		return nil, err
	}
	adm.Zone = zoneCheck

	hsvc := harvest.NewService(store)
	adm.Season, err = hsvc.ValidateSeason(ev.HerbType, ev.HarvestDate, &ev.Location)
	if err != nil {
		return nil, err
	}
	adm.Quota, err = hsvc.ValidateQuota(ev.HerbType, ev.QuantityKg, ev.FarmerID, ev.HarvestDate)
	if err != nil {
		return nil, err
	}

	switch {
	case !adm.Zone.Valid:
		adm.Message = adm.Zone.Message
	case !adm.Season.Valid:
		adm.Message = adm.Season.Message
	case !adm.Quota.Approved:
		adm.Message = adm.Quota.Message
	default:
		adm.Approved = true
	}
	if !adm.Approved {
		txLogger(ctx, c.log, id).Info("harvest rejected",
			zap.String("batchId", sub.BatchID), zap.String("reason", adm.Message))
		return &adm, nil
	}

	if err := hsvc.CommitQuota(ev.HerbType, ev.QuantityKg, ev.FarmerID, ev.HarvestDate); err != nil {
		return nil, err
	}
	rec, err := provenance.NewService(store).CreateRecord(id, sub.BatchID, ev)
	if err != nil {
		return nil, err
	}
	adm.Record = rec
	adm.Message = "harvest admitted"

	emitEvent(ctx, c.log, EventBatchCreated, map[string]string{
		"batchId":  rec.BatchID,
		"herbType": ev.HerbType,
		"farmerId": ev.FarmerID,
	})
	txLogger(ctx, c.log, id).Info("harvest admitted",
		zap.String("batchId", rec.BatchID),
		zap.String("herbType", ev.HerbType),
		zap.String("quantityKg", ev.QuantityKg.String()))
	return &adm, nil
}

// ValidateSeason checks the herb's seasonal window for a date; the optional
// coordinate picks the hemisphere.
func (c *HarvestContract) ValidateSeason(ctx contractapi.TransactionContextInterface, herbType, harvestDate string, latitude, longitude float64) (*harvest.SeasonCheck, error) {
	date, err := parseDate(harvestDate)
	if err != nil {
		return nil, err
	}
	check, err := c.service(ctx).ValidateSeason(herbType, date, &geo.Point{Latitude: latitude, Longitude: longitude})
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// ValidateQuota authorizes a quantity against the harvest year's quota
// without consuming it.
func (c *HarvestContract) ValidateQuota(ctx contractapi.TransactionContextInterface, herbType, quantityKg, farmerID, harvestDate string) (*harvest.QuotaCheck, error) {
	qty, err := decimal.NewFromString(quantityKg)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(harvestDate)
	if err != nil {
		return nil, err
	}
	check, err := c.service(ctx).ValidateQuota(herbType, qty, farmerID, date)
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// CommitQuota consumes quota unconditionally. Callers that skipped
// ValidateQuota in the same transaction own the oversell risk.
func (c *HarvestContract) CommitQuota(ctx contractapi.TransactionContextInterface, herbType, quantityKg, farmerID, harvestDate string) error {
	qty, err := decimal.NewFromString(quantityKg)
	if err != nil {
		return err
	}
	date, err := parseDate(harvestDate)
	if err != nil {
		return err
	}
	return c.service(ctx).CommitQuota(herbType, qty, farmerID, date)
}

// SetQuotaLimits adjusts a year's ceilings. Regulator only.
func (c *HarvestContract) SetQuotaLimits(ctx contractapi.TransactionContextInterface, limitsJSON string) (*harvest.SustainabilityTracker, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		Year         int                        `json:"year"`
		TotalQuotaKg *decimal.Decimal           `json:"totalQuotaKg,omitempty"`
		HerbQuotasKg map[string]decimal.Decimal `json:"herbQuotasKg,omitempty"`
	}
	if err := unmarshalArg(limitsJSON, "limits", &req); err != nil {
		return nil, err
	}
	tracker, err := c.service(ctx).SetQuotaLimits(id, req.Year, req.TotalQuotaKg, req.HerbQuotasKg)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("quota limits set", zap.Int("year", req.Year))
	return tracker, nil
}

// GetQuotaStatus returns a year's tracker.
func (c *HarvestContract) GetQuotaStatus(ctx contractapi.TransactionContextInterface, year int) (*harvest.SustainabilityTracker, error) {
	return c.service(ctx).GetQuotaStatus(year)
}

// GetFarmerHistory returns one farmer's accumulated harvests for a year.
func (c *HarvestContract) GetFarmerHistory(ctx contractapi.TransactionContextInterface, farmerID string, year int) (*harvest.FarmerHarvestHistory, error) {
	return c.service(ctx).GetFarmerHistory(farmerID, year)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
