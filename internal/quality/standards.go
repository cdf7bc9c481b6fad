package quality

// Units used by the built-in standard sets.
const (
	unitPercent = "%"
	unitPpm     = "ppm"
	unitCfuG    = "cfu/g"
)

// DefaultStandards is the fallback bound set. The numbers follow the
// pharmacopoeial limits for dried raw herbs: 15% moisture, 10 ppm lead,
// 1 ppm mercury, 0.3 ppm cadmium, 3 ppm arsenic, pathogens absent.
func DefaultStandards() QualityStandardSet {
	return QualityStandardSet{
		HerbType: defaultStandardsID,
		Physical: PhysicalStandards{
			MoistureMax:      Bound{Value: 15, Unit: unitPercent},
			TotalAshMax:      Bound{Value: 10, Unit: unitPercent},
			ForeignMatterMax: Bound{Value: 2, Unit: unitPercent},
		},
		HeavyMetals: HeavyMetalStandards{
			LeadMax:    Bound{Value: 10, Unit: unitPpm},
			MercuryMax: Bound{Value: 1, Unit: unitPpm},
			CadmiumMax: Bound{Value: 0.3, Unit: unitPpm},
			ArsenicMax: Bound{Value: 3, Unit: unitPpm},
		},
		Microbial: MicrobialStandards{
			TotalPlateCountMax: Bound{Value: 100000, Unit: unitCfuG},
			YeastMoldMax:       Bound{Value: 1000, Unit: unitCfuG},
			EColiAbsent:        true,
			SalmonellaAbsent:   true,
		},
		PesticideMax: map[string]Bound{
			"organochlorines":  {Value: 0.1, Unit: unitPpm},
			"organophosphates": {Value: 0.1, Unit: unitPpm},
		},
	}
}

// activePrincipleMinimums are the marker-compound floors for the herbs with
// monograph values. Other herbs are judged on the default set alone.
var activePrincipleMinimums = map[string]map[string]Bound{
	"Ashwagandha": {"withanolides": {Value: 0.3, Unit: unitPercent}},
	"Brahmi":      {"bacosides": {Value: 2.5, Unit: unitPercent}},
	"Tulsi":       {"eugenol": {Value: 0.7, Unit: unitPercent}},
	"Neem":        {"azadirachtin": {Value: 0.03, Unit: unitPercent}},
	"Amla":        {"ascorbicAcid": {Value: 0.5, Unit: unitPercent}},
}

// BuiltinStandards returns the default set specialized for a herb, including
// its active-principle minimums when a monograph entry exists.
func BuiltinStandards(herbType string) QualityStandardSet {
	std := DefaultStandards()
	std.HerbType = herbType
	if mins, ok := activePrincipleMinimums[herbType]; ok {
		std.ActivePrincipleMin = map[string]Bound{}
		for name, bound := range mins {
			std.ActivePrincipleMin[name] = bound
		}
	}
	return std
}
