package formcast

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seasonFor generates n sequential match rows for one team with
// deterministic stats, one row per week. rowBase keeps RowIDs unique
// across teams
func seasonFor(team string, n, rowBase int, competition string) []*MatchRecord {
	results := []string{ResultWin, ResultDraw, ResultLoss}
	venues := []string{VenueHome, VenueAway}

	matches := make([]*MatchRecord, 0, n)
	for i := 0; i < n; i++ {
		m := NewMatchRecord()
		m.RowID = rowBase + i
		m.Date = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i*7)
		m.Team = team
		m.Opponent = fmt.Sprintf("Opponent %d", i)
		m.Venue = venues[i%2]
		m.Result = results[i%3]
		m.Competition = competition
		m.GoalsFor = float64(i % 4)
		m.GoalsAgainst = float64((i + 1) % 3)
		m.Shots = float64(8 + i%5)
		m.ShotsOnTarget = float64(3 + i%3)
		matches = append(matches, m)
	}
	return matches
}

func TestBuildDatasetRowsAndLabels(t *testing.T) {
	matches := seasonFor("Arsenal", 12, 0, GetTrainingCompetition())
	snap := NewSnapshot(matches)

	dataset, err := BuildDataset(snap)
	require.NoError(t, err)

	// Rows without a full preceding window are dropped, so 12 matches
	// yield 12 - window examples
	window := GetFormWindowSize()
	require.Len(t, dataset, 12-window)

	for k, ex := range dataset {
		require.Len(t, ex.Features, FeatureCount)

		row := matches[k+window]
		assert.Equal(t, row.Label(), ex.Label)

		// is_home and is_draw describe the labelled row itself
		wantHome := 0.0
		if row.IsHome() {
			wantHome = 1.0
		}
		assert.Equal(t, wantHome, ex.Features[5])
	}
}

func TestBuildDatasetFeaturesAreCausal(t *testing.T) {
	matches := seasonFor("Arsenal", 12, 0, GetTrainingCompetition())

	before, err := BuildDataset(NewSnapshot(matches))
	require.NoError(t, err)

	// Rewriting the final match must not change any earlier example's
	// features; only the final example's label may move
	last := matches[len(matches)-1]
	last.Result = ResultWin
	last.GoalsFor = 9
	last.Shots = 40

	after, err := BuildDataset(NewSnapshot(matches))
	require.NoError(t, err)
	require.Len(t, after, len(before))

	for k := range before {
		assert.Equal(t, before[k].Features, after[k].Features, "features for example %d leaked later data", k)
	}
	for k := 0; k < len(before)-1; k++ {
		assert.Equal(t, before[k].Label, after[k].Label)
	}
}

func TestBuildDatasetSkipsThinTeams(t *testing.T) {
	thin := seasonFor("Burnley", GetMinTeamMatches()-1, 1000, GetTrainingCompetition())
	full := seasonFor("Arsenal", 12, 0, GetTrainingCompetition())

	dataset, err := BuildDataset(NewSnapshot(append(thin, full...)))
	require.NoError(t, err)

	// Only the full season contributes
	assert.Len(t, dataset, 12-GetFormWindowSize())
}

func TestBuildDatasetFiltersCompetition(t *testing.T) {
	league := seasonFor("Arsenal", 12, 0, GetTrainingCompetition())
	// Cup matches are interleaved by date but never feed training
	cup := seasonFor("Arsenal", 6, 90000, "EFL Cup")
	for _, m := range cup {
		m.Date = m.Date.AddDate(0, 0, 3)
		m.GoalsFor = 8
	}

	withCup, err := BuildDataset(NewSnapshot(append(league, cup...)))
	require.NoError(t, err)
	without, err := BuildDataset(NewSnapshot(league))
	require.NoError(t, err)

	assert.Equal(t, without, withCup)
}

func TestBuildDatasetDropsUndefinedWindows(t *testing.T) {
	matches := seasonFor("Arsenal", 12, 0, GetTrainingCompetition())
	for _, m := range matches {
		// No shot data anywhere in this log
		m.Shots = math.NaN()
		m.ShotsOnTarget = math.NaN()
	}

	_, err := BuildDataset(NewSnapshot(matches))
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestBuildDatasetEmptySnapshot(t *testing.T) {
	_, err := BuildDataset(NewSnapshot(nil))
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestBuildDatasetDeterministic(t *testing.T) {
	matches := append(
		seasonFor("Chelsea", 12, 2000, GetTrainingCompetition()),
		seasonFor("Arsenal", 12, 0, GetTrainingCompetition())...)

	first, err := BuildDataset(NewSnapshot(matches))
	require.NoError(t, err)
	second, err := BuildDataset(NewSnapshot(matches))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
