package quality

import "time"

const (
	stdKeyPrefix  = "STD-"
	labKeyPrefix  = "LAB-"
	testKeyPrefix = "TEST-"

	// The fallback standard set, applied to herbs without one of their own.
	defaultStandardsID = "DEFAULT"
)

// Overall outcomes of a quality test.
const (
	ResultPass            = "Pass"
	ResultFail            = "Fail"
	ResultConditionalPass = "Conditional-Pass"
)

// Bound is a numeric limit with its unit attached.
type Bound struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// PhysicalStandards caps the physical parameters, all in percent by weight.
type PhysicalStandards struct {
	MoistureMax      Bound `json:"moistureMax"`
	TotalAshMax      Bound `json:"totalAshMax"`
	ForeignMatterMax Bound `json:"foreignMatterMax"`
}

// HeavyMetalStandards caps contamination in ppm.
type HeavyMetalStandards struct {
	LeadMax    Bound `json:"leadMax"`
	MercuryMax Bound `json:"mercuryMax"`
	CadmiumMax Bound `json:"cadmiumMax"`
	ArsenicMax Bound `json:"arsenicMax"`
}

// MicrobialStandards caps colony counts; pathogens are an absence requirement
// rather than a numeric ceiling.
type MicrobialStandards struct {
	TotalPlateCountMax Bound `json:"totalPlateCountMax"`
	YeastMoldMax       Bound `json:"yeastMoldMax"`
	EColiAbsent        bool  `json:"eColiAbsent"`
	SalmonellaAbsent   bool  `json:"salmonellaAbsent"`
}

// QualityStandardSet is the full bound set for one herb type. Herbs without a
// registered set fall back to the DEFAULT set.
type QualityStandardSet struct {
	HerbType           string              `json:"herbType"`
	Physical           PhysicalStandards   `json:"physical"`
	ActivePrincipleMin map[string]Bound    `json:"activePrincipleMin,omitempty"`
	HeavyMetals        HeavyMetalStandards `json:"heavyMetals"`
	Microbial          MicrobialStandards  `json:"microbial"`
	PesticideMax       map[string]Bound    `json:"pesticideMax,omitempty"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func (s QualityStandardSet) key() string { return stdKeyPrefix + s.HerbType }

// LabCertification is the registry entry a test submission is checked
// against. A test is accepted only from an active lab whose capability set
// contains the test's declared type and whose certification has not lapsed.
type LabCertification struct {
	LabID               string    `json:"labId"`
	Name                string    `json:"name"`
	Certification       string    `json:"certification"`
	AccreditationNumber string    `json:"accreditationNumber"`
	ValidUntil          time.Time `json:"validUntil"`
	TestCapabilities    []string  `json:"testCapabilities"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (l LabCertification) key() string { return labKeyPrefix + l.LabID }

func (l LabCertification) hasCapability(testType string) bool {
	for _, c := range l.TestCapabilities {
		if c == testType {
			return true
		}
	}
	return false
}

// PhysicalResults are the measured physical parameters, percent by weight.
// Nil fields were not measured; only out-of-bound presence is a violation.
type PhysicalResults struct {
	MoisturePct      *float64 `json:"moisturePct,omitempty"`
	TotalAshPct      *float64 `json:"totalAshPct,omitempty"`
	ForeignMatterPct *float64 `json:"foreignMatterPct,omitempty"`
}

// HeavyMetalResults are measured contamination levels in ppm.
type HeavyMetalResults struct {
	LeadPpm    *float64 `json:"leadPpm,omitempty"`
	MercuryPpm *float64 `json:"mercuryPpm,omitempty"`
	CadmiumPpm *float64 `json:"cadmiumPpm,omitempty"`
	ArsenicPpm *float64 `json:"arsenicPpm,omitempty"`
}

// MicrobialResults are colony counts in cfu/g plus pathogen detections.
type MicrobialResults struct {
	TotalPlateCount    *float64 `json:"totalPlateCount,omitempty"`
	YeastMoldCount     *float64 `json:"yeastMoldCount,omitempty"`
	EColiDetected      *bool    `json:"eColiDetected,omitempty"`
	SalmonellaDetected *bool    `json:"salmonellaDetected,omitempty"`
}

// DNAResult is the barcode species authentication outcome.
type DNAResult struct {
	SpeciesConfirmed bool    `json:"speciesConfirmed"`
	MatchPercent     float64 `json:"matchPercent"`
	Method           string  `json:"method,omitempty"`
}

// TestParameters is the full measurement payload. Every category is
// optional; the comparator only judges what was measured.
type TestParameters struct {
	Physical           *PhysicalResults   `json:"physical,omitempty"`
	ActivePrinciplePct map[string]float64 `json:"activePrinciplePct,omitempty"`
	HeavyMetals        *HeavyMetalResults `json:"heavyMetals,omitempty"`
	Microbial          *MicrobialResults  `json:"microbial,omitempty"`
	PesticidePpm       map[string]float64 `json:"pesticidePpm,omitempty"`
	DNA                *DNAResult         `json:"dna,omitempty"`
}

// Finding is one comparator outcome, violation or warning.
type Finding struct {
	Parameter string   `json:"parameter"`
	Measured  *float64 `json:"measured,omitempty"`
	Limit     *float64 `json:"limit,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Message   string   `json:"message"`
}

// ValidationResult separates hard violations from soft warnings.
type ValidationResult struct {
	Violations []Finding `json:"violations"`
	Warnings   []Finding `json:"warnings"`
}

// QualityTestRecord is immutable once written; Hash covers the whole record
// with the Hash field itself zeroed, and is recomputed for tamper checks.
type QualityTestRecord struct {
	TestID        string           `json:"testId"`
	BatchID       string           `json:"batchId"`
	LabID         string           `json:"labId"`
	HerbType      string           `json:"herbType"`
	TestType      string           `json:"testType"`
	Parameters    TestParameters   `json:"parameters"`
	Result        ValidationResult `json:"validationResult"`
	OverallResult string           `json:"overallResult"`
	Hash          string           `json:"integrityHash"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func (r QualityTestRecord) key() string { return testKeyPrefix + r.TestID }

// AuthenticityCheck reports a hash comparison. A mismatch is reported, never
// auto-corrected.
type AuthenticityCheck struct {
	TestID       string `json:"testId"`
	Authentic    bool   `json:"authentic"`
	StoredHash   string `json:"storedHash"`
	ComputedHash string `json:"computedHash"`
}
