package formcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassifier returns canned probabilities and records whether it was
// consulted at all
type stubClassifier struct {
	probs  []float64
	err    error
	called bool
}

func (s *stubClassifier) PredictProba(features []float64) ([]float64, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.probs, nil
}

// newTestStore wraps a snapshot in a MatchStore without touching the
// database
func newTestStore(matches []*MatchRecord) *MatchStore {
	store := &MatchStore{}
	store.snap.Store(NewSnapshot(matches))
	return store
}

func testMatches() []*MatchRecord {
	return append(
		seasonFor("Arsenal", 12, 0, GetTrainingCompetition()),
		seasonFor("Chelsea", 12, 2000, GetTrainingCompetition())...)
}

func TestPredictValidatesSelection(t *testing.T) {
	stub := &stubClassifier{probs: []float64{0.2, 0.6}}
	p, err := NewPredictor(newTestStore(testMatches()), stub)
	require.NoError(t, err)

	_, err = p.Predict("", "Chelsea")
	assert.ErrorIs(t, err, ErrMissingSelection)

	_, err = p.Predict("Arsenal", "")
	assert.ErrorIs(t, err, ErrMissingSelection)

	_, err = p.Predict("Arsenal", "Arsenal")
	assert.ErrorIs(t, err, ErrSameTeam)

	// Validation short-circuits before any computation
	assert.False(t, stub.called)
	assert.True(t, IsInvalidSelection(ErrMissingSelection))
	assert.True(t, IsInvalidSelection(ErrSameTeam))
}

func TestPredictProbabilitiesAndHeadline(t *testing.T) {
	tests := []struct {
		name    string
		probs   []float64 // [p_draw, p_home_win]
		outcome string
	}{
		{"clear home win", []float64{0.2, 0.6}, OutcomeHomeWin},
		{"likely draw", []float64{0.4, 0.3}, OutcomeDraw},
		{"away win by default", []float64{0.2, 0.3}, OutcomeAwayWin},
		{"boundary favours away", []float64{0.33, 0.5}, OutcomeAwayWin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubClassifier{probs: tt.probs}
			p, err := NewPredictor(newTestStore(testMatches()), stub)
			require.NoError(t, err)

			result, err := p.Predict("Arsenal", "Chelsea")
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, result.PredictedResult)
			assert.InDelta(t, tt.probs[1]*100, result.HomeWinProbability, 0.005)
			assert.InDelta(t, tt.probs[0]*100, result.DrawProbability, 0.005)

			wantAway := (1 - tt.probs[0] - tt.probs[1]) * 100
			assert.InDelta(t, wantAway, result.AwayWinProbability, 0.005)
		})
	}
}

func TestPredictClampsAwayProbability(t *testing.T) {
	// Rounded model output can push draw + home past certainty; the
	// derived away probability must clamp at zero instead of going
	// negative
	stub := &stubClassifier{probs: []float64{0.6, 0.7}}
	p, err := NewPredictor(newTestStore(testMatches()), stub)
	require.NoError(t, err)

	result, err := p.Predict("Arsenal", "Chelsea")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.AwayWinProbability)
}

func TestPredictExpectedScore(t *testing.T) {
	stub := &stubClassifier{probs: []float64{0.2, 0.6}}
	p, err := NewPredictor(newTestStore(testMatches()), stub)
	require.NoError(t, err)

	result, err := p.Predict("Arsenal", "Chelsea")
	require.NoError(t, err)

	// Both generated seasons end on the same goals-for tail:
	// 3, 0, 1, 2, 3 over the last five matches, an average of 1.8
	assert.Equal(t, "1.8 - 1.8", result.ExpectedScore)
}

func TestPredictExpectedScoreKeepsTrailingDigit(t *testing.T) {
	home := seasonFor("Arsenal", 6, 0, GetTrainingCompetition())
	for _, m := range home {
		m.GoalsFor = 2
	}
	away := seasonFor("Chelsea", 6, 2000, GetTrainingCompetition())
	for _, m := range away {
		m.GoalsFor = 1
	}

	stub := &stubClassifier{probs: []float64{0.2, 0.6}}
	p, err := NewPredictor(newTestStore(append(home, away...)), stub)
	require.NoError(t, err)

	result, err := p.Predict("Arsenal", "Chelsea")
	require.NoError(t, err)

	// Whole-number averages keep their decimal place, "2.0" not "2"
	assert.Equal(t, "2.0 - 1.0", result.ExpectedScore)
}

func TestPredictUnknownTeamUsesZeroForm(t *testing.T) {
	stub := &stubClassifier{probs: []float64{0.25, 0.25}}
	p, err := NewPredictor(newTestStore(testMatches()), stub)
	require.NoError(t, err)

	// A team with no history predicts from zeroed form, never errors
	result, err := p.Predict("Newly Promoted", "Chelsea")
	require.NoError(t, err)
	assert.Equal(t, "0.0 - 1.8", result.ExpectedScore)
	assert.Equal(t, OutcomeAwayWin, result.PredictedResult)
	assert.True(t, stub.called)
}

func TestPredictIdempotent(t *testing.T) {
	stub := &stubClassifier{probs: []float64{0.3, 0.4}}
	p, err := NewPredictor(newTestStore(testMatches()), stub)
	require.NoError(t, err)

	first, err := p.Predict("Arsenal", "Chelsea")
	require.NoError(t, err)
	second, err := p.Predict("Arsenal", "Chelsea")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPredictWrapsClassifierFailure(t *testing.T) {
	stub := &stubClassifier{err: assert.AnError}
	p, err := NewPredictor(newTestStore(testMatches()), stub)
	require.NoError(t, err)

	_, err = p.Predict("Arsenal", "Chelsea")
	assert.ErrorIs(t, err, ErrComputation)
	assert.False(t, IsInvalidSelection(err))
}

func TestPredictRejectsMalformedProbabilities(t *testing.T) {
	stub := &stubClassifier{probs: []float64{0.2, 0.3, 0.5}}
	p, err := NewPredictor(newTestStore(testMatches()), stub)
	require.NoError(t, err)

	_, err = p.Predict("Arsenal", "Chelsea")
	assert.ErrorIs(t, err, ErrComputation)
}

func TestNewPredictorRequiresCollaborators(t *testing.T) {
	_, err := NewPredictor(nil, &stubClassifier{})
	assert.ErrorIs(t, err, ErrDatasetUnavailable)

	_, err = NewPredictor(newTestStore(nil), nil)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
