package harvest

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
)

// Season labels used by the harvest windows.
const (
	SeasonWinter  = "winter"
	SeasonSummer  = "summer"
	SeasonMonsoon = "monsoon"
	SeasonAutumn  = "autumn"
)

// MaxHarvestAge limits how far back a collection event may be dated.
const MaxHarvestAge = 365 * 24 * time.Hour

// allowedSeasons fixes the harvest windows per herb. Herbs missing from the
// table are admitted in any season with a warning.
var allowedSeasons = map[string][]string{
	"Ashwagandha": {SeasonWinter, SeasonAutumn},
	"Brahmi":      {SeasonSummer, SeasonMonsoon},
	"Tulsi":       {SeasonSummer, SeasonMonsoon},
	"Neem":        {SeasonSummer},
	"Amla":        {SeasonAutumn, SeasonWinter},
	"Shatavari":   {SeasonWinter, SeasonAutumn},
	"Giloy":       {SeasonMonsoon, SeasonAutumn},
}

// optimalMonths is the sub-window inside the allowed seasons where active
// principle content peaks. Missing it flags a warning, never a rejection.
var optimalMonths = map[string][]time.Month{
	"Ashwagandha": {time.January, time.February},
	"Brahmi":      {time.July, time.August},
	"Tulsi":       {time.April, time.May},
	"Neem":        {time.April},
	"Amla":        {time.November, time.December},
}

// SeasonOf derives the season label for a date. The hemisphere comes from the
// latitude sign when a GPS point is supplied; northern is the default.
func SeasonOf(date time.Time, point *geo.Point) string {
	month := int(date.Month())
	if point != nil && point.Latitude < 0 {
		month = (month+5)%12 + 1
	}
	switch {
	case month == 12 || month <= 2:
		return SeasonWinter
	case month <= 5:
		return SeasonSummer
	case month <= 9:
		return SeasonMonsoon
	default:
		return SeasonAutumn
	}
}

// ValidateSeason checks a harvest date against the herb's seasonal window.
func ValidateSeason(herbType string, harvestDate time.Time, point *geo.Point) (SeasonCheck, error) {
	if herbType == "" {
		return SeasonCheck{}, lederr.Invalid("HRV-REQ-001", "herbType", "herbType is required")
	}
	if harvestDate.IsZero() {
		return SeasonCheck{}, lederr.Invalid("HRV-REQ-002", "harvestDate", "harvestDate is required")
	}

	now := time.Now().UTC()
	if harvestDate.After(now) {
		return SeasonCheck{Valid: false, Message: "harvest date is in the future"}, nil
	}
	if now.Sub(harvestDate) > MaxHarvestAge {
		return SeasonCheck{Valid: false, Message: "harvest date is older than 365 days"}, nil
	}

	season := SeasonOf(harvestDate, point)
	check := SeasonCheck{Season: season}

	allowed, known := allowedSeasons[herbType]
	if !known {
		check.Valid = true
		check.Message = fmt.Sprintf("herb %q admitted in season %q", herbType, season)
		check.Warnings = append(check.Warnings, fmt.Sprintf("no season rules registered for %q; harvest admitted without a window check", herbType))
		return check, nil
	}

	if !containsString(allowed, season) {
		check.Valid = false
		check.Message = fmt.Sprintf("%s may not be harvested in %s; allowed seasons: %s", herbType, season, strings.Join(allowed, ", "))
		return check, nil
	}

	check.Valid = true
	check.Message = fmt.Sprintf("%s harvest admitted in season %q", herbType, season)
	if months, ok := optimalMonths[herbType]; ok && !containsMonth(months, harvestDate.Month()) {
		check.Warnings = append(check.Warnings, fmt.Sprintf("harvest falls outside the optimal months for %s", herbType))
	}
	return check, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsMonth(list []time.Month, m time.Month) bool {
	for _, x := range list {
		if x == m {
			return true
		}
	}
	return false
}
