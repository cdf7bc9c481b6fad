package harvest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	quotaKeyPrefix  = "QUOTA-"
	farmerKeyPrefix = "FARMER-"
)

// Default allocations applied when a quota year is first touched. The
// regulator can adjust the ceilings afterwards with SetQuotaLimits.
var (
	DefaultTotalQuotaKg = decimal.NewFromInt(100000)
	DefaultHerbQuotaKg  = decimal.NewFromInt(20000)
)

// FarmerSharePercent caps a single farmer's yearly harvest as a percentage of
// the year's total quota.
const FarmerSharePercent = 10

// HerbQuota is the per-herb slice of a year's sustainability quota.
type HerbQuota struct {
	QuotaKg decimal.Decimal `json:"quotaKg"`
	UsedKg  decimal.Decimal `json:"usedKg"`
}

// SustainabilityTracker is the shared yearly quota ledger, one record per
// quota year. `used` values only ever grow; admin limit changes adjust the
// ceilings, never the consumption.
type SustainabilityTracker struct {
	Year         int                  `json:"year"`
	TotalQuotaKg decimal.Decimal      `json:"totalQuotaKg"`
	UsedQuotaKg  decimal.Decimal      `json:"usedQuotaKg"`
	Herbs        map[string]HerbQuota `json:"herbQuotas"`
}

func quotaKey(year int) string { return fmt.Sprintf("%s%d", quotaKeyPrefix, year) }

func (t SustainabilityTracker) remainingTotal() decimal.Decimal {
	return t.TotalQuotaKg.Sub(t.UsedQuotaKg)
}

func (t SustainabilityTracker) farmerCeiling() decimal.Decimal {
	return t.TotalQuotaKg.Mul(decimal.NewFromInt(FarmerSharePercent)).Div(decimal.NewFromInt(100))
}

// FarmerHarvestHistory accumulates one farmer's harvests within a quota year.
type FarmerHarvestHistory struct {
	FarmerID       string                     `json:"farmerId"`
	Year           int                        `json:"year"`
	TotalHarvestKg decimal.Decimal            `json:"totalHarvestKg"`
	HerbHarvestsKg map[string]decimal.Decimal `json:"herbHarvestsKg"`
}

func farmerKey(farmerID string, year int) string {
	return fmt.Sprintf("%s%s-%d", farmerKeyPrefix, farmerID, year)
}

// SeasonCheck is the soft outcome of the season rules. Warnings (for example
// a harvest outside the herb's optimal months) do not make the check invalid.
type SeasonCheck struct {
	Valid    bool     `json:"isValid"`
	Message  string   `json:"message"`
	Season   string   `json:"season,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// QuotaCheck is the soft outcome of a quota authorization. ShortfallKg
// carries the numeric gap when a ceiling would be exceeded.
type QuotaCheck struct {
	Approved         bool            `json:"isValid"`
	Message          string          `json:"message"`
	ShortfallKg      decimal.Decimal `json:"shortfallKg"`
	RemainingHerbKg  decimal.Decimal `json:"remainingHerbKg"`
	RemainingTotalKg decimal.Decimal `json:"remainingTotalKg"`
}
