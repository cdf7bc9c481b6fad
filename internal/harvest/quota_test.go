package harvest

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurtrace/ayurtrace/internal/capability"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
)

var regulator = capability.Identity{MSPID: capability.Regulator}

func kg(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func harvestDate(year int) time.Time {
	return time.Date(year, time.January, 15, 12, 0, 0, 0, time.UTC)
}

func TestValidateQuotaLazyInitUsesDefaults(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())

	check, err := svc.ValidateQuota("Ashwagandha", kg(500), "FARMER001", harvestDate(2024))
	require.NoError(t, err)
	assert.True(t, check.Approved)
	assert.True(t, check.RemainingHerbKg.Equal(kg(19500)), "remaining herb %s", check.RemainingHerbKg)
	assert.True(t, check.RemainingTotalKg.Equal(kg(99500)), "remaining total %s", check.RemainingTotalKg)
}

func TestValidateQuotaArgErrors(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())
	var verr lederr.ValidationError

	_, err := svc.ValidateQuota("", kg(1), "FARMER001", harvestDate(2024))
	require.ErrorAs(t, err, &verr)

	_, err = svc.ValidateQuota("Tulsi", kg(1), "", harvestDate(2024))
	require.ErrorAs(t, err, &verr)

	_, err = svc.ValidateQuota("Tulsi", kg(0), "FARMER001", harvestDate(2024))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "HRV-QTA-005", verr.Items[0].Code)
}

func TestValidateQuotaHerbShortfall(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())

	// Consume 19900 of the 20000 kg Ashwagandha default.
	require.NoError(t, svc.CommitQuota("Ashwagandha", kg(19900), "FARMER001", harvestDate(2024)))

	check, err := svc.ValidateQuota("Ashwagandha", kg(200), "FARMER002", harvestDate(2024))
	require.NoError(t, err)
	assert.False(t, check.Approved)
	assert.True(t, check.ShortfallKg.Equal(kg(100)), "shortfall %s", check.ShortfallKg)
	assert.Contains(t, check.Message, "Ashwagandha")

	// 100 kg still fits exactly.
	check, err = svc.ValidateQuota("Ashwagandha", kg(100), "FARMER002", harvestDate(2024))
	require.NoError(t, err)
	assert.True(t, check.Approved)
}

func TestValidateQuotaTotalCeiling(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())

	total := kg(1000)
	_, err := svc.SetQuotaLimits(regulator, 2024, &total, map[string]decimal.Decimal{
		"Ashwagandha": kg(900),
		"Brahmi":      kg(900),
	})
	require.NoError(t, err)

	require.NoError(t, svc.CommitQuota("Ashwagandha", kg(300), "FARMER001", harvestDate(2024)))

	// 800 kg fits the untouched Brahmi quota but not the 700 kg left overall.
	check, err := svc.ValidateQuota("Brahmi", kg(800), "FARMER002", harvestDate(2024))
	require.NoError(t, err)
	assert.False(t, check.Approved)
	assert.Contains(t, check.Message, "total annual quota")
	assert.True(t, check.ShortfallKg.Equal(kg(100)), "shortfall %s", check.ShortfallKg)
}

func TestValidateQuotaFarmerCeiling(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())

	// Default total 100000 kg gives each farmer a 10000 kg ceiling.
	require.NoError(t, svc.CommitQuota("Ashwagandha", kg(6000), "FARMER001", harvestDate(2024)))
	require.NoError(t, svc.CommitQuota("Brahmi", kg(3500), "FARMER001", harvestDate(2024)))

	check, err := svc.ValidateQuota("Tulsi", kg(600), "FARMER001", harvestDate(2024))
	require.NoError(t, err)
	assert.False(t, check.Approved)
	assert.Contains(t, check.Message, "FARMER001")
	assert.True(t, check.ShortfallKg.Equal(kg(100)), "shortfall %s", check.ShortfallKg)

	// A different farmer is unaffected.
	check, err = svc.ValidateQuota("Tulsi", kg(600), "FARMER002", harvestDate(2024))
	require.NoError(t, err)
	assert.True(t, check.Approved)
}

func TestCommitQuotaIsAdditive(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())

	require.NoError(t, svc.CommitQuota("Tulsi", kg(300), "FARMER001", harvestDate(2024)))
	require.NoError(t, svc.CommitQuota("Tulsi", kg(200), "FARMER001", harvestDate(2024)))
	require.NoError(t, svc.CommitQuota("Neem", kg(50), "FARMER001", harvestDate(2024)))

	tracker, err := svc.GetQuotaStatus(2024)
	require.NoError(t, err)
	assert.True(t, tracker.UsedQuotaKg.Equal(kg(550)))
	assert.True(t, tracker.Herbs["Tulsi"].UsedKg.Equal(kg(500)))
	assert.True(t, tracker.Herbs["Neem"].UsedKg.Equal(kg(50)))

	history, err := svc.GetFarmerHistory("FARMER001", 2024)
	require.NoError(t, err)
	assert.True(t, history.TotalHarvestKg.Equal(kg(550)))
	assert.True(t, history.HerbHarvestsKg["Tulsi"].Equal(kg(500)))
}

func TestQuotaYearsAreIndependent(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())

	require.NoError(t, svc.CommitQuota("Tulsi", kg(19999), "FARMER001", harvestDate(2024)))

	check, err := svc.ValidateQuota("Tulsi", kg(5000), "FARMER001", harvestDate(2025))
	require.NoError(t, err)
	assert.True(t, check.Approved)
}

func TestSetQuotaLimits(t *testing.T) {
	svc := NewService(ledgerstate.NewMem())

	require.NoError(t, svc.CommitQuota("Amla", kg(500), "FARMER001", harvestDate(2024)))

	total := kg(400)
	tracker, err := svc.SetQuotaLimits(regulator, 2024, &total, map[string]decimal.Decimal{"Amla": kg(450)})
	require.NoError(t, err)

	// Ceilings moved, consumption untouched.
	assert.True(t, tracker.TotalQuotaKg.Equal(kg(400)))
	assert.True(t, tracker.Herbs["Amla"].QuotaKg.Equal(kg(450)))
	assert.True(t, tracker.Herbs["Amla"].UsedKg.Equal(kg(500)))
	assert.True(t, tracker.UsedQuotaKg.Equal(kg(500)))

	// Usage above the lowered ceiling freezes new approvals.
	check, err := svc.ValidateQuota("Amla", kg(1), "FARMER002", harvestDate(2024))
	require.NoError(t, err)
	assert.False(t, check.Approved)

	var perr lederr.PermissionError
	_, err = svc.SetQuotaLimits(capability.Identity{MSPID: capability.Farmer}, 2024, &total, nil)
	require.ErrorAs(t, err, &perr)

	negative := kg(-1)
	var verr lederr.ValidationError
	_, err = svc.SetQuotaLimits(regulator, 2024, &negative, nil)
	require.ErrorAs(t, err, &verr)
}

// TestConcurrentValidateCommit drives racing validate-then-commit
// transactions through the versioned store and asserts that usage never
// exceeds any ceiling once the dust settles.
func TestConcurrentValidateCommit(t *testing.T) {
	mem := ledgerstate.NewMem()
	herbs := []string{"Ashwagandha", "Brahmi", "Tulsi"}
	farmers := []string{"FARMER001", "FARMER002", "FARMER003", "FARMER004"}

	{
		svc := NewService(mem)
		total := kg(5000)
		_, err := svc.SetQuotaLimits(regulator, 2024, &total, map[string]decimal.Decimal{
			"Ashwagandha": kg(2000),
			"Brahmi":      kg(2000),
			"Tulsi":       kg(2000),
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for j := 0; j < 40; j++ {
				herb := herbs[rng.Intn(len(herbs))]
				farmer := farmers[rng.Intn(len(farmers))]
				qty := kg(int64(1 + rng.Intn(200)))
				_ = mem.ExecuteRetry(50, func(tx ledgerstate.Store) error {
					svc := NewService(tx)
					check, err := svc.ValidateQuota(herb, qty, farmer, harvestDate(2024))
					if err != nil || !check.Approved {
						return err
					}
					return svc.CommitQuota(herb, qty, farmer, harvestDate(2024))
				})
			}
		}(int64(i))
	}
	wg.Wait()

	svc := NewService(mem)
	tracker, err := svc.GetQuotaStatus(2024)
	require.NoError(t, err)

	assert.True(t, tracker.UsedQuotaKg.LessThanOrEqual(tracker.TotalQuotaKg),
		"total used %s over quota %s", tracker.UsedQuotaKg, tracker.TotalQuotaKg)

	sum := decimal.Zero
	for herb, entry := range tracker.Herbs {
		assert.True(t, entry.UsedKg.LessThanOrEqual(entry.QuotaKg),
			"%s used %s over quota %s", herb, entry.UsedKg, entry.QuotaKg)
		sum = sum.Add(entry.UsedKg)
	}
	assert.True(t, sum.Equal(tracker.UsedQuotaKg), "herb usage %s != total usage %s", sum, tracker.UsedQuotaKg)

	farmerSum := decimal.Zero
	ceiling := tracker.TotalQuotaKg.Mul(decimal.NewFromInt(FarmerSharePercent)).Div(decimal.NewFromInt(100))
	for _, farmer := range farmers {
		history, err := svc.GetFarmerHistory(farmer, 2024)
		require.NoError(t, err)
		assert.True(t, history.TotalHarvestKg.LessThanOrEqual(ceiling),
			"%s harvested %s over ceiling %s", farmer, history.TotalHarvestKg, ceiling)
		farmerSum = farmerSum.Add(history.TotalHarvestKg)
	}
	assert.True(t, farmerSum.Equal(tracker.UsedQuotaKg))
}
