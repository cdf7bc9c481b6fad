package provenance

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayurtrace/ayurtrace/internal/capability"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
)

// Service is the provenance state machine over batch aggregate records.
type Service struct {
	store ledgerstate.Store
}

func NewService(store ledgerstate.Store) Service {
	return Service{store: store}
}

// CreateRecord opens a batch from a collection event that already passed the
// zone and harvest validators. The record starts in Collected at version 1.
func (s Service) CreateRecord(id capability.Identity, batchID string, ev CollectionEvent) (*ProvenanceRecord, error) {
	if err := capability.Require(id, capability.Farmer, capability.Regulator); err != nil {
		return nil, err
	}
	if errs := validateCollection(batchID, ev); len(errs) > 0 {
		return nil, lederr.ValidationError{Items: errs}
	}

	existing, err := s.store.Get(batchKeyPrefix + batchID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, lederr.ConflictError{Kind: "batch", ID: batchID}
	}

	now := time.Now().UTC()
	rec := ProvenanceRecord{
		BatchID:         batchID,
		CurrentStatus:   StatusCollected,
		Collection:      ev,
		ProcessingSteps: []ProcessingStep{},
		QualityTests:    []TestOutcome{},
		Flags:           flagsFromCertification(ev.CertificationType),
		Version:         1,
		CreatedAt:       now,
		LastUpdated:     now,
	}
	if err := s.put(rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// AppendProcessingStep adds a step, moves the batch to In-Processing and
// refreshes the sustainability estimate.
func (s Service) AppendProcessingStep(id capability.Identity, batchID string, step ProcessingStep) (*ProvenanceRecord, error) {
	if err := capability.Require(id, capability.Processor, capability.Manufacturer); err != nil {
		return nil, err
	}
	if errs := validateStep(step); len(errs) > 0 {
		return nil, lederr.ValidationError{Items: errs}
	}

	rec, err := s.getRecord(batchID)
	if err != nil {
		return nil, err
	}
	for _, existing := range rec.ProcessingSteps {
		if existing.StepID == step.StepID {
			return nil, lederr.ConflictError{Kind: "processing step", ID: step.StepID}
		}
	}

	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now().UTC()
	}
	rec.ProcessingSteps = append(rec.ProcessingSteps, step)
	rec.CurrentStatus = StatusInProcessing
	rec.Sustainability = estimateSustainability(rec.ProcessingSteps)
	s.touch(rec)
	if err := s.put(*rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AppendTestResult attaches a quality outcome and moves the batch status by
// the test's overall result. Compliance flags only ever latch on.
func (s Service) AppendTestResult(id capability.Identity, batchID string, outcome TestOutcome) (*ProvenanceRecord, error) {
	if err := capability.Require(id, capability.Lab); err != nil {
		return nil, err
	}
	if outcome.TestID == "" {
		return nil, lederr.Invalid("PRV-TST-001", "testId", "testId is required")
	}

	rec, err := s.getRecord(batchID)
	if err != nil {
		return nil, err
	}
	for _, existing := range rec.QualityTests {
		if existing.TestID == outcome.TestID {
			return nil, lederr.ConflictError{Kind: "quality test", ID: outcome.TestID}
		}
	}

	if outcome.Timestamp.IsZero() {
		outcome.Timestamp = time.Now().UTC()
	}
	rec.QualityTests = append(rec.QualityTests, outcome)
	rec.CurrentStatus = statusForResult(outcome.OverallResult)
	if outcome.SpeciesConfirmed {
		rec.Flags.AyushCompliant = true
	}
	if outcome.OverallResult == "Pass" {
		rec.Flags.FssaiApproved = true
	}
	s.touch(rec)
	if err := s.put(*rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FinalizePackaging requires the batch to be exactly Tested-Pass, generates
// the trace code and stores the TRACE lookup binding.
func (s Service) FinalizePackaging(id capability.Identity, batchID string, info DistributionInfo) (*ProvenanceRecord, error) {
	if err := capability.Require(id, capability.Manufacturer); err != nil {
		return nil, err
	}
	rec, err := s.getRecord(batchID)
	if err != nil {
		return nil, err
	}
	if rec.CurrentStatus != StatusTestedPass {
		return nil, lederr.Invalid("PRV-PKG-001", "status",
			fmt.Sprintf("batch %s is %q; packaging requires %q", batchID, rec.CurrentStatus, StatusTestedPass))
	}

	info.TraceCode = newTraceCode()
	info.PackagedAt = time.Now().UTC()
	rec.Distribution = &info
	rec.CurrentStatus = StatusPackaged
	s.touch(rec)

	if err := s.store.Put(traceKeyPrefix+info.TraceCode, []byte(batchID)); err != nil {
		return nil, err
	}
	if err := s.put(*rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateDistributionStatus applies a post-packaging transition. A recall may
// come from the regulator as well as the manufacturer.
func (s Service) UpdateDistributionStatus(id capability.Identity, batchID, newStatus string) (*ProvenanceRecord, error) {
	if err := capability.Require(id, capability.Manufacturer, capability.Regulator); err != nil {
		return nil, err
	}
	switch newStatus {
	case StatusPackaged, StatusDistributed, StatusRecalled:
	default:
		return nil, lederr.Invalid("PRV-TRN-002", "newStatus",
			fmt.Sprintf("%q is not a distribution status", newStatus))
	}

	rec, err := s.getRecord(batchID)
	if err != nil {
		return nil, err
	}
	if err := checkDistributionTransition(rec.CurrentStatus, newStatus); err != nil {
		return nil, err
	}
	rec.CurrentStatus = newStatus
	s.touch(rec)
	if err := s.put(*rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetBatch returns the record with its derived timeline and completion score.
func (s Service) GetBatch(batchID string) (*BatchReport, error) {
	rec, err := s.getRecord(batchID)
	if err != nil {
		return nil, err
	}
	return &BatchReport{
		Record:          *rec,
		Timeline:        timeline(*rec),
		CompletionScore: completionScore(*rec),
	}, nil
}

// GetByTraceCode resolves a public trace code to its batch report.
func (s Service) GetByTraceCode(traceCode string) (*BatchReport, error) {
	raw, err := s.store.Get(traceKeyPrefix + traceCode)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, lederr.NotFoundError{Kind: "trace code", ID: traceCode}
	}
	return s.GetBatch(string(raw))
}

// ListByFarmer returns a farmer's batches, newest harvest first.
func (s Service) ListByFarmer(farmerID string) ([]ProvenanceRecord, error) {
	recs, err := s.listWhere(func(r ProvenanceRecord) bool {
		return r.Collection.FarmerID == farmerID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Collection.HarvestDate.After(recs[j].Collection.HarvestDate)
	})
	return recs, nil
}

// ListByStatus returns batches in a status, most recently updated first.
func (s Service) ListByStatus(status string) ([]ProvenanceRecord, error) {
	recs, err := s.listWhere(func(r ProvenanceRecord) bool {
		return r.CurrentStatus == status
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].LastUpdated.After(recs[j].LastUpdated)
	})
	return recs, nil
}

func (s Service) listWhere(keep func(ProvenanceRecord) bool) ([]ProvenanceRecord, error) {
	kvs, err := s.store.Range(batchKeyPrefix)
	if err != nil {
		return nil, err
	}
	recs := make([]ProvenanceRecord, 0, len(kvs))
	for _, kv := range kvs {
		var rec ProvenanceRecord
		if err := json.Unmarshal(kv.Value, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal batch at %s: %w", kv.Key, err)
		}
		if keep(rec) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (s Service) getRecord(batchID string) (*ProvenanceRecord, error) {
	raw, err := s.store.Get(batchKeyPrefix + batchID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, lederr.NotFoundError{Kind: "batch", ID: batchID}
	}
	var rec ProvenanceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal batch %s: %w", batchID, err)
	}
	return &rec, nil
}

func (s Service) put(rec ProvenanceRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal batch %s: %w", rec.BatchID, err)
	}
	return s.store.Put(rec.key(), raw)
}

func (s Service) touch(rec *ProvenanceRecord) {
	rec.Version++
	rec.LastUpdated = time.Now().UTC()
}

func newTraceCode() string {
	return "AYUR-" + strings.ToUpper(uuid.NewString()[:8])
}

func flagsFromCertification(certType string) ComplianceFlags {
	var f ComplianceFlags
	switch strings.ToLower(certType) {
	case "organic":
		f.OrganicCertified = true
	case "wild-harvested", "wildcrafted":
		f.WildHarvested = true
	}
	return f
}

func estimateSustainability(steps []ProcessingStep) SustainabilityMetrics {
	var m SustainabilityMetrics
	for _, s := range steps {
		m.TotalProcessingHours += s.DurationHours
		m.EnergyProxy += s.DurationHours * s.TemperatureC
	}
	return m
}

func validateCollection(batchID string, ev CollectionEvent) []lederr.ValidationItem {
	var items []lederr.ValidationItem
	if batchID == "" {
		items = append(items, lederr.ValidationItem{Code: "PRV-REQ-001", Path: "batchId", Message: "batchId is required"})
	}
	if ev.FarmerID == "" {
		items = append(items, lederr.ValidationItem{Code: "PRV-REQ-002", Path: "farmerId", Message: "farmerId is required"})
	}
	if ev.HerbType == "" {
		items = append(items, lederr.ValidationItem{Code: "PRV-REQ-003", Path: "herbType", Message: "herbType is required"})
	}
	if !ev.QuantityKg.IsPositive() {
		items = append(items, lederr.ValidationItem{Code: "PRV-REQ-004", Path: "quantityKg", Message: "quantityKg must be positive"})
	}
	if ev.HarvestDate.IsZero() {
		items = append(items, lederr.ValidationItem{Code: "PRV-REQ-005", Path: "harvestDate", Message: "harvestDate is required"})
	}
	return items
}

func validateStep(step ProcessingStep) []lederr.ValidationItem {
	var items []lederr.ValidationItem
	if step.StepID == "" {
		items = append(items, lederr.ValidationItem{Code: "PRV-STP-001", Path: "stepId", Message: "stepId is required"})
	}
	if step.StepType == "" {
		items = append(items, lederr.ValidationItem{Code: "PRV-STP-002", Path: "stepType", Message: "stepType is required"})
	}
	if step.DurationHours < 0 {
		items = append(items, lederr.ValidationItem{Code: "PRV-STP-003", Path: "durationHours", Message: "durationHours must not be negative"})
	}
	return items
}
