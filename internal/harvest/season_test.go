package harvest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurtrace/ayurtrace/internal/geo"
	"github.com/ayurtrace/ayurtrace/internal/lederr"
)

// recentDate returns the 15th of the most recent past occurrence of month,
// which is always inside the 365-day acceptance window.
func recentDate(month time.Month) time.Time {
	now := time.Now().UTC()
	d := time.Date(now.Year(), month, 15, 12, 0, 0, 0, time.UTC)
	if d.After(now) {
		d = d.AddDate(-1, 0, 0)
	}
	return d
}

func TestSeasonOf(t *testing.T) {
	kerala := &geo.Point{Latitude: 10.1632, Longitude: 76.6413}

	cases := []struct {
		month time.Month
		want  string
	}{
		{time.January, SeasonWinter},
		{time.February, SeasonWinter},
		{time.March, SeasonSummer},
		{time.May, SeasonSummer},
		{time.June, SeasonMonsoon},
		{time.September, SeasonMonsoon},
		{time.October, SeasonAutumn},
		{time.November, SeasonAutumn},
		{time.December, SeasonWinter},
	}
	for _, tc := range cases {
		d := time.Date(2024, tc.month, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tc.want, SeasonOf(d, kerala), "month %s", tc.month)
		assert.Equal(t, tc.want, SeasonOf(d, nil), "month %s without point", tc.month)
	}
}

func TestSeasonOfSouthernHemisphereFlips(t *testing.T) {
	south := &geo.Point{Latitude: -23.5, Longitude: 133.9}

	jan := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, SeasonMonsoon, SeasonOf(jan, south))

	jul := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, SeasonWinter, SeasonOf(jul, south))
}

func TestValidateSeasonRequiredFields(t *testing.T) {
	_, err := ValidateSeason("", recentDate(time.January), nil)
	var verr lederr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "HRV-REQ-001", verr.Items[0].Code)

	_, err = ValidateSeason("Ashwagandha", time.Time{}, nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "HRV-REQ-002", verr.Items[0].Code)
}

func TestValidateSeasonDateWindow(t *testing.T) {
	future := time.Now().UTC().Add(48 * time.Hour)
	check, err := ValidateSeason("Ashwagandha", future, nil)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Message, "future")

	stale := time.Now().UTC().Add(-400 * 24 * time.Hour)
	check, err = ValidateSeason("Ashwagandha", stale, nil)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Message, "older than 365 days")
}

func TestValidateSeasonWindow(t *testing.T) {
	// Ashwagandha in January: allowed season and optimal month.
	check, err := ValidateSeason("Ashwagandha", recentDate(time.January), nil)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Equal(t, SeasonWinter, check.Season)
	assert.Empty(t, check.Warnings)

	// Ashwagandha in June: monsoon is outside its winter/autumn window.
	check, err = ValidateSeason("Ashwagandha", recentDate(time.June), nil)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Message, "winter")
	assert.Contains(t, check.Message, "autumn")
}

func TestValidateSeasonOptimalMonthWarning(t *testing.T) {
	// November is autumn (allowed for Ashwagandha) but not an optimal month.
	check, err := ValidateSeason("Ashwagandha", recentDate(time.November), nil)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	require.Len(t, check.Warnings, 1)
	assert.Contains(t, check.Warnings[0], "optimal months")
}

func TestValidateSeasonUnknownHerbAdmittedWithWarning(t *testing.T) {
	check, err := ValidateSeason("Moringa", recentDate(time.June), nil)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	require.Len(t, check.Warnings, 1)
	assert.Contains(t, check.Warnings[0], "no season rules")
}
