package quality

import "fmt"

// dnaWarningPercent is the barcode match level below which a confirmed
// species identification is still flagged for review.
const dnaWarningPercent = 95

// Evaluate compares a measurement payload against a standard set. Absent
// fields are skipped; only an out-of-bound measurement produces a finding.
// Violations fail the test, warnings alone downgrade it to Conditional-Pass.
func Evaluate(params TestParameters, std QualityStandardSet) ValidationResult {
	res := ValidationResult{Violations: []Finding{}, Warnings: []Finding{}}

	if p := params.Physical; p != nil {
		res.ceiling("moistureContent", p.MoisturePct, std.Physical.MoistureMax)
		res.ceiling("totalAsh", p.TotalAshPct, std.Physical.TotalAshMax)
		res.ceiling("foreignMatter", p.ForeignMatterPct, std.Physical.ForeignMatterMax)
	}

	for name, bound := range std.ActivePrincipleMin {
		measured, ok := params.ActivePrinciplePct[name]
		if !ok {
			continue
		}
		if measured < bound.Value {
			res.violation(Finding{
				Parameter: "activePrinciple." + name,
				Measured:  ptr(measured),
				Limit:     ptr(bound.Value),
				Unit:      bound.Unit,
				Message:   fmt.Sprintf("%s %.3g%s below the %.3g%s minimum", name, measured, bound.Unit, bound.Value, bound.Unit),
			})
		}
	}

	if m := params.HeavyMetals; m != nil {
		res.ceiling("heavyMetals.lead", m.LeadPpm, std.HeavyMetals.LeadMax)
		res.ceiling("heavyMetals.mercury", m.MercuryPpm, std.HeavyMetals.MercuryMax)
		res.ceiling("heavyMetals.cadmium", m.CadmiumPpm, std.HeavyMetals.CadmiumMax)
		res.ceiling("heavyMetals.arsenic", m.ArsenicPpm, std.HeavyMetals.ArsenicMax)
	}

	if m := params.Microbial; m != nil {
		res.ceiling("microbial.totalPlateCount", m.TotalPlateCount, std.Microbial.TotalPlateCountMax)
		res.ceiling("microbial.yeastMold", m.YeastMoldCount, std.Microbial.YeastMoldMax)
		if std.Microbial.EColiAbsent && m.EColiDetected != nil && *m.EColiDetected {
			res.violation(Finding{Parameter: "microbial.eColi", Message: "E. coli detected; must be absent"})
		}
		if std.Microbial.SalmonellaAbsent && m.SalmonellaDetected != nil && *m.SalmonellaDetected {
			res.violation(Finding{Parameter: "microbial.salmonella", Message: "Salmonella detected; must be absent"})
		}
	}

	for name, measured := range params.PesticidePpm {
		bound, ok := std.PesticideMax[name]
		if !ok {
			continue
		}
		m := measured
		res.ceiling("pesticide."+name, &m, bound)
	}

	if dna := params.DNA; dna != nil {
		if !dna.SpeciesConfirmed {
			res.violation(Finding{
				Parameter: "dna.speciesConfirmed",
				Measured:  ptr(dna.MatchPercent),
				Message:   "DNA barcode did not confirm the declared species",
			})
		} else if dna.MatchPercent < dnaWarningPercent {
			res.warning(Finding{
				Parameter: "dna.matchPercent",
				Measured:  ptr(dna.MatchPercent),
				Limit:     ptr(float64(dnaWarningPercent)),
				Unit:      unitPercent,
				Message:   fmt.Sprintf("species confirmed at %.1f%% match, below the %d%% confidence level", dna.MatchPercent, dnaWarningPercent),
			})
		}
	}

	return res
}

// OverallResultOf derives the overall outcome: any violation fails, warnings
// alone yield Conditional-Pass.
func OverallResultOf(res ValidationResult) string {
	switch {
	case len(res.Violations) > 0:
		return ResultFail
	case len(res.Warnings) > 0:
		return ResultConditionalPass
	default:
		return ResultPass
	}
}

func (r *ValidationResult) ceiling(parameter string, measured *float64, bound Bound) {
	if measured == nil || *measured <= bound.Value {
		return
	}
	r.violation(Finding{
		Parameter: parameter,
		Measured:  measured,
		Limit:     ptr(bound.Value),
		Unit:      bound.Unit,
		Message:   fmt.Sprintf("%s %.4g%s exceeds the %.4g%s limit", parameter, *measured, bound.Unit, bound.Value, bound.Unit),
	})
}

func (r *ValidationResult) violation(f Finding) { r.Violations = append(r.Violations, f) }
func (r *ValidationResult) warning(f Finding)   { r.Warnings = append(r.Warnings, f) }

func ptr[T any](v T) *T { return &v }
