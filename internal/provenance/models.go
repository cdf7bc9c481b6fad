package provenance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayurtrace/ayurtrace/internal/geo"
)

const (
	batchKeyPrefix = "BATCH-"
	traceKeyPrefix = "TRACE-"
)

// Batch lifecycle states. Distributed and Recalled are terminal; Tested-Fail
// is not, a failed batch may be retested.
const (
	StatusCollected      = "Collected"
	StatusInProcessing   = "In-Processing"
	StatusQualityTesting = "Quality-Testing"
	StatusTestedPass     = "Tested-Pass"
	StatusTestedFail     = "Tested-Fail"
	StatusPackaged       = "Packaged"
	StatusDistributed    = "Distributed"
	StatusRecalled       = "Recalled"
)

// CollectionEvent is the validated harvest that opens a batch. Zone and
// harvest rule checks happen before record creation and are not repeated
// here.
type CollectionEvent struct {
	FarmerID          string          `json:"farmerId"`
	HerbType          string          `json:"herbType"`
	QuantityKg        decimal.Decimal `json:"quantityKg"`
	Location          geo.Point       `json:"location"`
	ZoneID            string          `json:"zoneId,omitempty"`
	HarvestDate       time.Time       `json:"harvestDate"`
	CertificationType string          `json:"certificationType,omitempty"`
}

// ProcessingStep is one appended transformation of the batch.
type ProcessingStep struct {
	StepID        string    `json:"stepId"`
	StepType      string    `json:"stepType"`
	Description   string    `json:"description,omitempty"`
	FacilityID    string    `json:"facilityId,omitempty"`
	DurationHours float64   `json:"durationHours"`
	TemperatureC  float64   `json:"temperatureC"`
	Timestamp     time.Time `json:"timestamp"`
}

// TestOutcome is the provenance-side summary of a quality test. The full
// parameter payload stays in the quality store under its own key; the batch
// record carries what the state machine and compliance flags need.
type TestOutcome struct {
	TestID           string    `json:"testId"`
	LabID            string    `json:"labId"`
	TestType         string    `json:"testType"`
	OverallResult    string    `json:"overallResult"`
	SpeciesConfirmed bool      `json:"speciesConfirmed"`
	Timestamp        time.Time `json:"timestamp"`
}

// DistributionInfo is attached once at packaging; the trace code is
// generated there and bound 1:1 to the batch.
type DistributionInfo struct {
	TraceCode         string     `json:"traceCode"`
	Distributor       string     `json:"distributor,omitempty"`
	DestinationRegion string     `json:"destinationRegion,omitempty"`
	PackagingFacility string     `json:"packagingFacility,omitempty"`
	PackagedAt        time.Time  `json:"packagedAt"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
}

// ComplianceFlags are derived, never set directly: the certification type at
// collection, a species-confirming DNA test, and a passing overall result
// each raise their flag.
type ComplianceFlags struct {
	OrganicCertified bool `json:"organicCertified"`
	WildHarvested    bool `json:"wildHarvested"`
	AyushCompliant   bool `json:"ayushCompliant"`
	FssaiApproved    bool `json:"fssaiApproved"`
}

// SustainabilityMetrics is a coarse processing-footprint estimate kept on
// the record and recomputed on every appended step.
type SustainabilityMetrics struct {
	TotalProcessingHours float64 `json:"totalProcessingHours"`
	EnergyProxy          float64 `json:"energyProxy"` // sum of duration x temperature
}

// ProvenanceRecord is the aggregate root, one per batch. It is created once,
// mutated only by appends and the packaging transition, and never deleted;
// Recalled is the failure path. Version increases by one on every mutation.
type ProvenanceRecord struct {
	BatchID         string                `json:"batchId"`
	CurrentStatus   string                `json:"currentStatus"`
	Collection      CollectionEvent       `json:"collectionEvent"`
	ProcessingSteps []ProcessingStep      `json:"processingSteps"`
	QualityTests    []TestOutcome         `json:"qualityTests"`
	Distribution    *DistributionInfo     `json:"distributionInfo,omitempty"`
	Flags           ComplianceFlags       `json:"complianceFlags"`
	Sustainability  SustainabilityMetrics `json:"sustainabilityMetrics"`
	Version         int64                 `json:"version"`
	CreatedAt       time.Time             `json:"createdAt"`
	LastUpdated     time.Time             `json:"lastUpdated"`
}

func (r ProvenanceRecord) key() string { return batchKeyPrefix + r.BatchID }

// TimelineEntry is one row of the derived chronological batch history.
type TimelineEntry struct {
	Kind      string    `json:"kind"` // collection, processing, quality-test, packaging
	RefID     string    `json:"refId,omitempty"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// BatchReport is the read-side view: the stored record plus the derived
// timeline and completion score, recomputed on every fetch so they can never
// drift from the stored state.
type BatchReport struct {
	Record          ProvenanceRecord `json:"record"`
	Timeline        []TimelineEntry  `json:"timeline"`
	CompletionScore int              `json:"completionScore"`
}
