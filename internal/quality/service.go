package quality

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayurtrace/ayurtrace/internal/capability"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
)

// Service is the quality rule validator: lab registry, per-herb standards
// and the immutable test record store with content hashing.
type Service struct {
	store ledgerstate.Store
}

func NewService(store ledgerstate.Store) Service {
	return Service{store: store}
}

// SubmitTest accepts a lab result, evaluates it against the herb's standards
// and persists the sealed record. The submitted Result, OverallResult and
// Hash fields are ignored; they are computed here.
func (s Service) SubmitTest(id capability.Identity, rec QualityTestRecord) (*QualityTestRecord, error) {
	if err := capability.Require(id, capability.Lab); err != nil {
		return nil, err
	}
	if errs := validateTestRecord(rec); len(errs) > 0 {
		return nil, lederr.ValidationError{Items: errs}
	}

	existing, err := s.store.Get(rec.key())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, lederr.ConflictError{Kind: "quality test", ID: rec.TestID}
	}

	lab, err := s.GetLab(rec.LabID)
	if err != nil {
		return nil, err
	}
	if err := lab.accepts(rec.TestType); err != nil {
		return nil, err
	}

	std, err := s.GetStandards(rec.HerbType)
	if err != nil {
		return nil, err
	}

	rec.Result = Evaluate(rec.Parameters, *std)
	rec.OverallResult = OverallResultOf(rec.Result)
	rec.CreatedAt = time.Now().UTC()
	rec.Hash, err = computeHash(rec)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal test %s: %w", rec.TestID, err)
	}
	if err := s.store.Put(rec.key(), raw); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetTest returns a stored test record.
func (s Service) GetTest(testID string) (*QualityTestRecord, error) {
	raw, err := s.store.Get(testKeyPrefix + testID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, lederr.NotFoundError{Kind: "quality test", ID: testID}
	}
	var rec QualityTestRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal test %s: %w", testID, err)
	}
	return &rec, nil
}

// VerifyAuthenticity recomputes the stored record's content hash and reports
// whether it still matches the sealed one. A mismatch means the stored bytes
// were altered after submission.
func (s Service) VerifyAuthenticity(testID string) (AuthenticityCheck, error) {
	rec, err := s.GetTest(testID)
	if err != nil {
		return AuthenticityCheck{}, err
	}
	computed, err := computeHash(*rec)
	if err != nil {
		return AuthenticityCheck{}, err
	}
	return AuthenticityCheck{
		TestID:       testID,
		Authentic:    computed == rec.Hash,
		StoredHash:   rec.Hash,
		ComputedHash: computed,
	}, nil
}

// RegisterLab adds or replaces a lab certification record.
func (s Service) RegisterLab(id capability.Identity, lab LabCertification) (*LabCertification, error) {
	if err := capability.Require(id, capability.Regulator); err != nil {
		return nil, err
	}
	if errs := validateLab(lab); len(errs) > 0 {
		return nil, lederr.ValidationError{Items: errs}
	}
	lab.CreatedAt = time.Now().UTC()
	raw, err := json.Marshal(lab)
	if err != nil {
		return nil, fmt.Errorf("marshal lab %s: %w", lab.LabID, err)
	}
	if err := s.store.Put(lab.key(), raw); err != nil {
		return nil, err
	}
	return &lab, nil
}

// GetLab returns a lab certification record.
func (s Service) GetLab(labID string) (*LabCertification, error) {
	raw, err := s.store.Get(labKeyPrefix + labID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, lederr.NotFoundError{Kind: "lab", ID: labID}
	}
	var lab LabCertification
	if err := json.Unmarshal(raw, &lab); err != nil {
		return nil, fmt.Errorf("unmarshal lab %s: %w", labID, err)
	}
	return &lab, nil
}

// SetLabActive toggles a lab without touching the rest of its record.
func (s Service) SetLabActive(id capability.Identity, labID string, active bool) (*LabCertification, error) {
	if err := capability.Require(id, capability.Regulator); err != nil {
		return nil, err
	}
	lab, err := s.GetLab(labID)
	if err != nil {
		return nil, err
	}
	if lab.Active == active {
		return lab, nil
	}
	lab.Active = active
	raw, err := json.Marshal(lab)
	if err != nil {
		return nil, fmt.Errorf("marshal lab %s: %w", labID, err)
	}
	if err := s.store.Put(lab.key(), raw); err != nil {
		return nil, err
	}
	return lab, nil
}

// UpdateStandards installs a herb's standard set, or the DEFAULT fallback
// when HerbType is "DEFAULT".
func (s Service) UpdateStandards(id capability.Identity, std QualityStandardSet) (*QualityStandardSet, error) {
	if err := capability.Require(id, capability.Regulator); err != nil {
		return nil, err
	}
	if std.HerbType == "" {
		return nil, lederr.Invalid("QLT-STD-001", "herbType", "herbType is required")
	}
	std.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(std)
	if err != nil {
		return nil, fmt.Errorf("marshal standards %s: %w", std.HerbType, err)
	}
	if err := s.store.Put(std.key(), raw); err != nil {
		return nil, err
	}
	return &std, nil
}

// GetStandards resolves the bound set for a herb: the herb's own registered
// set, else the registered DEFAULT set, else the built-in defaults.
func (s Service) GetStandards(herbType string) (*QualityStandardSet, error) {
	for _, key := range []string{stdKeyPrefix + herbType, stdKeyPrefix + defaultStandardsID} {
		raw, err := s.store.Get(key)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		var std QualityStandardSet
		if err := json.Unmarshal(raw, &std); err != nil {
			return nil, fmt.Errorf("unmarshal standards at %s: %w", key, err)
		}
		return &std, nil
	}
	std := BuiltinStandards(herbType)
	return &std, nil
}

// accepts decides whether a lab may submit a test of the given type.
func (l *LabCertification) accepts(testType string) error {
	if !l.Active {
		return lederr.Invalid("QLT-LAB-001", "labId", fmt.Sprintf("lab %s is not active", l.LabID))
	}
	if !l.ValidUntil.IsZero() && l.ValidUntil.Before(time.Now().UTC()) {
		return lederr.Invalid("QLT-LAB-002", "labId", fmt.Sprintf("lab %s certification expired on %s", l.LabID, l.ValidUntil.Format("2006-01-02")))
	}
	if !l.hasCapability(testType) {
		return lederr.Invalid("QLT-LAB-003", "testType", fmt.Sprintf("lab %s is not certified for %q tests", l.LabID, testType))
	}
	return nil
}

func validateTestRecord(rec QualityTestRecord) []lederr.ValidationItem {
	var items []lederr.ValidationItem
	if rec.TestID == "" {
		items = append(items, lederr.ValidationItem{Code: "QLT-REQ-001", Path: "testId", Message: "testId is required"})
	}
	if rec.BatchID == "" {
		items = append(items, lederr.ValidationItem{Code: "QLT-REQ-002", Path: "batchId", Message: "batchId is required"})
	}
	if rec.LabID == "" {
		items = append(items, lederr.ValidationItem{Code: "QLT-REQ-003", Path: "labId", Message: "labId is required"})
	}
	if rec.HerbType == "" {
		items = append(items, lederr.ValidationItem{Code: "QLT-REQ-004", Path: "herbType", Message: "herbType is required"})
	}
	if rec.TestType == "" {
		items = append(items, lederr.ValidationItem{Code: "QLT-REQ-005", Path: "testType", Message: "testType is required"})
	}
	if !rec.hasParameters() {
		items = append(items, lederr.ValidationItem{Code: "QLT-REQ-006", Path: "parameters", Message: "at least one measurement category is required"})
	}
	return items
}

func (r QualityTestRecord) hasParameters() bool {
	p := r.Parameters
	return p.Physical != nil || len(p.ActivePrinciplePct) > 0 || p.HeavyMetals != nil ||
		p.Microbial != nil || len(p.PesticidePpm) > 0 || p.DNA != nil
}

func validateLab(lab LabCertification) []lederr.ValidationItem {
	var items []lederr.ValidationItem
	if lab.LabID == "" {
		items = append(items, lederr.ValidationItem{Code: "QLT-LAB-REQ-001", Path: "labId", Message: "labId is required"})
	}
	if lab.Name == "" {
		items = append(items, lederr.ValidationItem{Code: "QLT-LAB-REQ-002", Path: "name", Message: "name is required"})
	}
	if len(lab.TestCapabilities) == 0 {
		items = append(items, lederr.ValidationItem{Code: "QLT-LAB-REQ-003", Path: "testCapabilities", Message: "at least one test capability is required"})
	}
	return items
}
