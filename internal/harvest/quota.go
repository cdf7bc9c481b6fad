package harvest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayurtrace/ayurtrace/internal/capability"
	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
)

// Service is the harvest rule validator: seasonal windows plus the shared
// sustainability quota ledger. ValidateQuota and CommitQuota are two separate
// operations on purpose; the caller must run them inside one transaction so
// the platform's read-set validation closes the race between them.
type Service struct {
	store ledgerstate.Store
}

func NewService(store ledgerstate.Store) Service {
	return Service{store: store}
}

// ValidateSeason applies the herb's seasonal window to a harvest date.
func (s Service) ValidateSeason(herbType string, harvestDate time.Time, point *geo.Point) (SeasonCheck, error) {
	return ValidateSeason(herbType, harvestDate, point)
}

// ValidateQuota authorizes a harvest quantity against the year's quota. The
// three ceilings are checked in order (per-herb, total, farmer share) and the
// first failure short-circuits with its shortfall.
func (s Service) ValidateQuota(herbType string, quantityKg decimal.Decimal, farmerID string, harvestDate time.Time) (QuotaCheck, error) {
	if err := validateQuotaArgs(herbType, quantityKg, farmerID); err != nil {
		return QuotaCheck{}, err
	}

	year := harvestDate.Year()
	tracker, err := s.loadOrInitTracker(year)
	if err != nil {
		return QuotaCheck{}, err
	}
	herb := tracker.herbOrDefault(herbType)

	remainingHerb := herb.QuotaKg.Sub(herb.UsedKg)
	remainingTotal := tracker.remainingTotal()

	if remainingHerb.LessThan(quantityKg) {
		return QuotaCheck{
			Approved:         false,
			Message:          fmt.Sprintf("annual quota for %s exceeded: %s kg requested, %s kg remaining", herbType, quantityKg, remainingHerb),
			ShortfallKg:      quantityKg.Sub(remainingHerb),
			RemainingHerbKg:  remainingHerb,
			RemainingTotalKg: remainingTotal,
		}, nil
	}
	if remainingTotal.LessThan(quantityKg) {
		return QuotaCheck{
			Approved:         false,
			Message:          fmt.Sprintf("total annual quota exceeded: %s kg requested, %s kg remaining", quantityKg, remainingTotal),
			ShortfallKg:      quantityKg.Sub(remainingTotal),
			RemainingHerbKg:  remainingHerb,
			RemainingTotalKg: remainingTotal,
		}, nil
	}

	history, err := s.loadFarmerHistory(farmerID, year)
	if err != nil {
		return QuotaCheck{}, err
	}
	ceiling := tracker.farmerCeiling()
	projected := history.TotalHarvestKg.Add(quantityKg)
	if projected.GreaterThan(ceiling) {
		return QuotaCheck{
			Approved:         false,
			Message:          fmt.Sprintf("farmer %s would exceed the %d%% individual ceiling (%s kg): %s kg already harvested", farmerID, FarmerSharePercent, ceiling, history.TotalHarvestKg),
			ShortfallKg:      projected.Sub(ceiling),
			RemainingHerbKg:  remainingHerb,
			RemainingTotalKg: remainingTotal,
		}, nil
	}

	return QuotaCheck{
		Approved:         true,
		Message:          fmt.Sprintf("quota approved: %s kg of %s", quantityKg, herbType),
		ShortfallKg:      decimal.Zero,
		RemainingHerbKg:  remainingHerb.Sub(quantityKg),
		RemainingTotalKg: remainingTotal.Sub(quantityKg),
	}, nil
}

// CommitQuota records consumption unconditionally: per-herb used, total used
// and the farmer's yearly totals each grow by exactly quantityKg. It performs
// no authorization of its own; callers pair it with ValidateQuota in the same
// transaction.
func (s Service) CommitQuota(herbType string, quantityKg decimal.Decimal, farmerID string, harvestDate time.Time) error {
	if err := validateQuotaArgs(herbType, quantityKg, farmerID); err != nil {
		return err
	}

	year := harvestDate.Year()
	tracker, err := s.loadOrInitTracker(year)
	if err != nil {
		return err
	}
	herb := tracker.herbOrDefault(herbType)
	herb.UsedKg = herb.UsedKg.Add(quantityKg)
	tracker.Herbs[herbType] = herb
	tracker.UsedQuotaKg = tracker.UsedQuotaKg.Add(quantityKg)
	if err := s.putTracker(tracker); err != nil {
		return err
	}

	history, err := s.loadFarmerHistory(farmerID, year)
	if err != nil {
		return err
	}
	history.TotalHarvestKg = history.TotalHarvestKg.Add(quantityKg)
	history.HerbHarvestsKg[herbType] = history.HerbHarvestsKg[herbType].Add(quantityKg)
	return s.putFarmerHistory(history)
}

// SetQuotaLimits adjusts a year's ceilings. Consumption is never touched, so
// lowering a ceiling below current usage simply freezes further approvals.
func (s Service) SetQuotaLimits(id capability.Identity, year int, totalQuotaKg *decimal.Decimal, herbQuotasKg map[string]decimal.Decimal) (*SustainabilityTracker, error) {
	if err := capability.Require(id, capability.Regulator); err != nil {
		return nil, err
	}
	if totalQuotaKg != nil && totalQuotaKg.IsNegative() {
		return nil, lederr.Invalid("HRV-QTA-003", "totalQuotaKg", "totalQuotaKg must not be negative")
	}

	tracker, err := s.loadOrInitTracker(year)
	if err != nil {
		return nil, err
	}
	if totalQuotaKg != nil {
		tracker.TotalQuotaKg = *totalQuotaKg
	}
	for herb, quota := range herbQuotasKg {
		if quota.IsNegative() {
			return nil, lederr.Invalid("HRV-QTA-004", "herbQuotasKg."+herb, "herb quota must not be negative")
		}
		entry := tracker.herbOrDefault(herb)
		entry.QuotaKg = quota
		tracker.Herbs[herb] = entry
	}
	if err := s.putTracker(tracker); err != nil {
		return nil, err
	}
	return &tracker, nil
}

// GetQuotaStatus returns the year's tracker, initializing it on first touch.
func (s Service) GetQuotaStatus(year int) (*SustainabilityTracker, error) {
	tracker, err := s.loadOrInitTracker(year)
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

// GetFarmerHistory returns one farmer's accumulated harvests for a year.
func (s Service) GetFarmerHistory(farmerID string, year int) (*FarmerHarvestHistory, error) {
	history, err := s.loadFarmerHistory(farmerID, year)
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (t *SustainabilityTracker) herbOrDefault(herbType string) HerbQuota {
	if entry, ok := t.Herbs[herbType]; ok {
		return entry
	}
	return HerbQuota{QuotaKg: DefaultHerbQuotaKg, UsedKg: decimal.Zero}
}

func validateQuotaArgs(herbType string, quantityKg decimal.Decimal, farmerID string) error {
	if herbType == "" {
		return lederr.Invalid("HRV-QTA-001", "herbType", "herbType is required")
	}
	if farmerID == "" {
		return lederr.Invalid("HRV-QTA-002", "farmerId", "farmerId is required")
	}
	if !quantityKg.IsPositive() {
		return lederr.Invalid("HRV-QTA-005", "quantityKg", "quantityKg must be positive")
	}
	return nil
}

func (s Service) loadOrInitTracker(year int) (SustainabilityTracker, error) {
	raw, err := s.store.Get(quotaKey(year))
	if err != nil {
		return SustainabilityTracker{}, err
	}
	if raw == nil {
		return SustainabilityTracker{
			Year:         year,
			TotalQuotaKg: DefaultTotalQuotaKg,
			UsedQuotaKg:  decimal.Zero,
			Herbs:        map[string]HerbQuota{},
		}, nil
	}
	var tracker SustainabilityTracker
	if err := json.Unmarshal(raw, &tracker); err != nil {
		return SustainabilityTracker{}, fmt.Errorf("unmarshal quota tracker %d: %w", year, err)
	}
	if tracker.Herbs == nil {
		tracker.Herbs = map[string]HerbQuota{}
	}
	return tracker, nil
}

func (s Service) putTracker(t SustainabilityTracker) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal quota tracker %d: %w", t.Year, err)
	}
	return s.store.Put(quotaKey(t.Year), raw)
}

func (s Service) loadFarmerHistory(farmerID string, year int) (FarmerHarvestHistory, error) {
	raw, err := s.store.Get(farmerKey(farmerID, year))
	if err != nil {
		return FarmerHarvestHistory{}, err
	}
	if raw == nil {
		return FarmerHarvestHistory{
			FarmerID:       farmerID,
			Year:           year,
			TotalHarvestKg: decimal.Zero,
			HerbHarvestsKg: map[string]decimal.Decimal{},
		}, nil
	}
	var history FarmerHarvestHistory
	if err := json.Unmarshal(raw, &history); err != nil {
		return FarmerHarvestHistory{}, fmt.Errorf("unmarshal farmer history %s/%d: %w", farmerID, year, err)
	}
	if history.HerbHarvestsKg == nil {
		history.HerbHarvestsKg = map[string]decimal.Decimal{}
	}
	return history, nil
}

func (s Service) putFarmerHistory(h FarmerHarvestHistory) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal farmer history %s/%d: %w", h.FarmerID, h.Year, err)
	}
	return s.store.Put(farmerKey(h.FarmerID, h.Year), raw)
}
