package formcast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchRow builds a test record with all stats defined
func matchRow(result string, gf, ga, sh, sot float64) *MatchRecord {
	m := NewMatchRecord()
	m.Date = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	m.Team = "Arsenal"
	m.Opponent = "Chelsea"
	m.Venue = VenueHome
	m.Result = result
	m.GoalsFor = gf
	m.GoalsAgainst = ga
	m.Shots = sh
	m.ShotsOnTarget = sot
	return m
}

func TestComputeFormKnownWindow(t *testing.T) {
	window := []*MatchRecord{
		matchRow(ResultWin, 2, 0, 10, 5),
		matchRow(ResultWin, 1, 0, 8, 4),
		matchRow(ResultLoss, 0, 2, 5, 2),
		matchRow(ResultDraw, 1, 1, 6, 3),
		matchRow(ResultWin, 3, 1, 12, 7),
	}

	form := ComputeForm(window)

	assert.InDelta(t, 0.6, form.WinRate, 1e-9)
	assert.InDelta(t, 1.4, form.GoalsScoredAvg, 1e-9)
	assert.InDelta(t, 0.8, form.GoalsConcededAvg, 1e-9)
	assert.InDelta(t, 8.2, form.ShotsAvg, 1e-9)
	assert.InDelta(t, 4.2, form.ShotsOnTargetAvg, 1e-9)
	assert.False(t, form.HasUndefined())
}

func TestComputeFormEmptyWindow(t *testing.T) {
	form := ComputeForm(nil)
	assert.Equal(t, FormStats{}, form)
	assert.False(t, form.HasUndefined())
}

func TestComputeFormExcludesMissingStats(t *testing.T) {
	window := []*MatchRecord{
		matchRow(ResultWin, 2, 0, 10, 5),
		matchRow(ResultLoss, 0, 1, 4, 1),
	}
	// Second match has no shot data recorded
	window[1].Shots = math.NaN()
	window[1].ShotsOnTarget = math.NaN()

	form := ComputeForm(window)

	// Goals average over both matches, shots over the one defined match
	assert.InDelta(t, 1.0, form.GoalsScoredAvg, 1e-9)
	assert.InDelta(t, 10.0, form.ShotsAvg, 1e-9)
	assert.InDelta(t, 5.0, form.ShotsOnTargetAvg, 1e-9)
	assert.False(t, form.HasUndefined())
}

func TestComputeFormAllMissingColumnIsUndefined(t *testing.T) {
	window := []*MatchRecord{
		matchRow(ResultWin, 2, 0, math.NaN(), math.NaN()),
		matchRow(ResultDraw, 1, 1, math.NaN(), math.NaN()),
	}

	form := ComputeForm(window)

	assert.True(t, math.IsNaN(form.ShotsAvg))
	assert.True(t, math.IsNaN(form.ShotsOnTargetAvg))
	assert.True(t, form.HasUndefined())
	// The defined columns are unaffected
	assert.InDelta(t, 0.5, form.WinRate, 1e-9)
	assert.InDelta(t, 1.5, form.GoalsScoredAvg, 1e-9)
}

func TestFeaturesOrder(t *testing.T) {
	form := FormStats{
		WinRate:          0.6,
		GoalsScoredAvg:   1.4,
		GoalsConcededAvg: 0.8,
		ShotsAvg:         8.2,
		ShotsOnTargetAvg: 4.2,
	}

	features := Features(form, 1, 0)
	require.Len(t, features, FeatureCount)
	assert.Equal(t, []float64{0.6, 1.4, 0.8, 8.2, 4.2, 1, 0}, features)
}
