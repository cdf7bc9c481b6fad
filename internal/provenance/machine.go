package provenance

import (
	"fmt"
	"sort"

	"github.com/ayurtrace/ayurtrace/internal/lederr"
)

// distributionTransitions guards updateDistributionStatus. Packaged itself is
// only entered through finalizePackaging; a recall is allowed even after
// distribution.
var distributionTransitions = map[string][]string{
	StatusPackaged:    {StatusDistributed, StatusRecalled},
	StatusDistributed: {StatusRecalled},
}

func checkDistributionTransition(from, to string) error {
	for _, allowed := range distributionTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return lederr.Invalid("PRV-TRN-001", "status",
		fmt.Sprintf("cannot transition from %q to %q", from, to))
}

// statusForResult maps a test outcome onto the batch status.
func statusForResult(overallResult string) string {
	switch overallResult {
	case "Pass":
		return StatusTestedPass
	case "Fail":
		return StatusTestedFail
	default:
		return StatusQualityTesting
	}
}

// Completion score weights: collection 25, any processing 25, any test 20,
// any passing test 10, packaging 20.
func completionScore(r ProvenanceRecord) int {
	score := 25
	if len(r.ProcessingSteps) > 0 {
		score += 25
	}
	if len(r.QualityTests) > 0 {
		score += 20
		for _, t := range r.QualityTests {
			if t.OverallResult == "Pass" {
				score += 10
				break
			}
		}
	}
	if r.Distribution != nil {
		score += 20
	}
	return score
}

// timeline merges the record's event sources into one chronological view.
func timeline(r ProvenanceRecord) []TimelineEntry {
	entries := []TimelineEntry{{
		Kind:      "collection",
		Summary:   fmt.Sprintf("%s kg of %s collected by %s", r.Collection.QuantityKg, r.Collection.HerbType, r.Collection.FarmerID),
		Timestamp: r.Collection.HarvestDate,
	}}
	for _, step := range r.ProcessingSteps {
		entries = append(entries, TimelineEntry{
			Kind:      "processing",
			RefID:     step.StepID,
			Summary:   fmt.Sprintf("%s for %.1fh at %.0fC", step.StepType, step.DurationHours, step.TemperatureC),
			Timestamp: step.Timestamp,
		})
	}
	for _, t := range r.QualityTests {
		entries = append(entries, TimelineEntry{
			Kind:      "quality-test",
			RefID:     t.TestID,
			Summary:   fmt.Sprintf("%s test by %s: %s", t.TestType, t.LabID, t.OverallResult),
			Timestamp: t.Timestamp,
		})
	}
	if r.Distribution != nil {
		entries = append(entries, TimelineEntry{
			Kind:      "packaging",
			RefID:     r.Distribution.TraceCode,
			Summary:   fmt.Sprintf("packaged under trace code %s", r.Distribution.TraceCode),
			Timestamp: r.Distribution.PackagedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries
}
