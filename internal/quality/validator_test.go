package quality

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPayload() TestParameters {
	return TestParameters{
		Physical: &PhysicalResults{
			MoisturePct:      ptr(11.0),
			TotalAshPct:      ptr(6.0),
			ForeignMatterPct: ptr(0.5),
		},
		ActivePrinciplePct: map[string]float64{"withanolides": 0.45},
		HeavyMetals: &HeavyMetalResults{
			LeadPpm:    ptr(2.0),
			MercuryPpm: ptr(0.2),
			CadmiumPpm: ptr(0.1),
			ArsenicPpm: ptr(0.5),
		},
		Microbial: &MicrobialResults{
			TotalPlateCount:    ptr(40000.0),
			YeastMoldCount:     ptr(300.0),
			EColiDetected:      ptr(false),
			SalmonellaDetected: ptr(false),
		},
		DNA: &DNAResult{SpeciesConfirmed: true, MatchPercent: 99.2},
	}
}

func TestEvaluateCleanPayloadPasses(t *testing.T) {
	res := Evaluate(fullPayload(), BuiltinStandards("Ashwagandha"))
	assert.Empty(t, res.Violations)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, ResultPass, OverallResultOf(res))
}

func TestEvaluateAbsentFieldsAreNotViolations(t *testing.T) {
	// An empty payload measured nothing, so nothing can be out of bounds.
	res := Evaluate(TestParameters{}, BuiltinStandards("Ashwagandha"))
	assert.Empty(t, res.Violations)
	assert.Empty(t, res.Warnings)
}

func TestEvaluateHeavyMetalViolations(t *testing.T) {
	params := fullPayload()
	params.HeavyMetals.MercuryPpm = ptr(1.4)
	params.HeavyMetals.CadmiumPpm = ptr(0.5)

	res := Evaluate(params, BuiltinStandards("Ashwagandha"))
	require.Len(t, res.Violations, 2)
	assert.Equal(t, ResultFail, OverallResultOf(res))
}

func TestEvaluatePathogenAbsenceRequirement(t *testing.T) {
	params := fullPayload()
	params.Microbial.SalmonellaDetected = ptr(true)

	res := Evaluate(params, BuiltinStandards("Ashwagandha"))
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "microbial.salmonella", res.Violations[0].Parameter)
}

func TestEvaluateActivePrincipleMinimum(t *testing.T) {
	params := fullPayload()
	params.ActivePrinciplePct["withanolides"] = 0.1

	res := Evaluate(params, BuiltinStandards("Ashwagandha"))
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "activePrinciple.withanolides", res.Violations[0].Parameter)
}

func TestEvaluateDNAOutcomes(t *testing.T) {
	std := BuiltinStandards("Ashwagandha")

	// Confirmed below the confidence level: warning only.
	params := fullPayload()
	params.DNA = &DNAResult{SpeciesConfirmed: true, MatchPercent: 91.0}
	res := Evaluate(params, std)
	assert.Empty(t, res.Violations)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, ResultConditionalPass, OverallResultOf(res))

	// Unconfirmed species: hard violation.
	params.DNA = &DNAResult{SpeciesConfirmed: false, MatchPercent: 60.0}
	res = Evaluate(params, std)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, ResultFail, OverallResultOf(res))
}

// resultRank orders outcomes from best to worst so the monotonicity property
// can compare them.
func resultRank(result string) int {
	switch result {
	case ResultPass:
		return 0
	case ResultConditionalPass:
		return 1
	default:
		return 2
	}
}

// Tightening any bound can only keep or worsen the outcome.
func TestEvaluateMonotonicUnderTightening(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		params := fullPayload()
		// Randomize the measurements around the default bounds.
		params.Physical.MoisturePct = ptr(10 + rng.Float64()*10)
		params.HeavyMetals.LeadPpm = ptr(rng.Float64() * 15)
		params.Microbial.TotalPlateCount = ptr(rng.Float64() * 200000)

		loose := BuiltinStandards("Ashwagandha")
		before := OverallResultOf(Evaluate(params, loose))

		tight := BuiltinStandards("Ashwagandha")
		tight.Physical.MoistureMax.Value *= 1 - rng.Float64()*0.5
		tight.HeavyMetals.LeadMax.Value *= 1 - rng.Float64()*0.5
		tight.Microbial.TotalPlateCountMax.Value *= 1 - rng.Float64()*0.5
		after := OverallResultOf(Evaluate(params, tight))

		assert.GreaterOrEqual(t, resultRank(after), resultRank(before),
			"tightening bounds relaxed %s to %s", before, after)
	}
}
