package formcast

import (
	"fmt"
	"math"
	"strconv"

	"github.com/richard-senior/formcast/internal/logger"
)

// Outcome labels reported to callers
const (
	OutcomeHomeWin = "Home Win"
	OutcomeDraw    = "Draw"
	OutcomeAwayWin = "Away Win"
)

// PredictionResult is the caller-facing outcome of a single prediction.
// Probabilities are percentages rounded for presentation; internal
// computation stays at full precision
type PredictionResult struct {
	HomeWinProbability float64 `json:"home_win_probability"`
	DrawProbability    float64 `json:"draw_probability"`
	AwayWinProbability float64 `json:"away_win_probability"`
	PredictedResult    string  `json:"predicted_result"`
	ExpectedScore      string  `json:"expected_score"`
}

// Predictor answers match outcome queries from the current match log
// snapshot and a trained classifier. Both collaborators are treated as
// read-only for the duration of a request, so concurrent Predict calls
// are safe
type Predictor struct {
	store *MatchStore
	clf   Classifier
}

// NewPredictor wires a predictor to its collaborators
func NewPredictor(store *MatchStore, clf Classifier) (*Predictor, error) {
	if store == nil {
		return nil, ErrDatasetUnavailable
	}
	if clf == nil {
		return nil, ErrModelUnavailable
	}
	return &Predictor{store: store, clf: clf}, nil
}

// Predict predicts the outcome of homeTeam hosting awayTeam based on each
// side's recent form. Validation failures are returned before any
// computation; teams with little or no history predict from zeroed form
// rather than failing
func (p *Predictor) Predict(homeTeam, awayTeam string) (*PredictionResult, error) {
	if homeTeam == "" || awayTeam == "" {
		return nil, ErrMissingSelection
	}
	if homeTeam == awayTeam {
		return nil, ErrSameTeam
	}

	snap := p.store.Snapshot()
	if snap == nil {
		return nil, ErrDatasetUnavailable
	}

	window := GetFormWindowSize()

	// Serving-time windows are plain tail slices over any competition,
	// unlike the competition-filtered causal windows used in training.
	// Inherited behaviour, see BuildDataset
	homeForm := ComputeForm(snap.TailWindow(homeTeam, window))
	awayForm := ComputeForm(snap.TailWindow(awayTeam, window))

	// Only home form feeds the classifier; away form drives the
	// expected score display. is_home is pinned to 1 and is_draw to 0,
	// the serving path never asks the away-perspective question
	features := Features(sanitizeForm(homeForm), 1, 0)

	probs, err := p.clf.PredictProba(features)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComputation, err)
	}
	if len(probs) != 2 {
		return nil, fmt.Errorf("%w: classifier returned %d probabilities, want 2", ErrComputation, len(probs))
	}

	pDraw, pHome := probs[0], probs[1]

	// The third outcome is derived mass. Floating point drift can push
	// pDraw+pHome a hair over 1, so clamp rather than report a negative
	// probability
	pAway := 1.0 - pDraw - pHome
	if pAway < 0 {
		pAway = 0
	}
	if pAway > 1 {
		pAway = 1
	}

	result := &PredictionResult{
		HomeWinProbability: roundToDecimalPlaces(pHome*100, Config.ProbabilityDecimals),
		DrawProbability:    roundToDecimalPlaces(pDraw*100, Config.ProbabilityDecimals),
		AwayWinProbability: roundToDecimalPlaces(pAway*100, Config.ProbabilityDecimals),
		PredictedResult:    headline(pHome, pDraw),
		ExpectedScore:      expectedScore(homeForm, awayForm),
	}

	logger.Debug("Predicted", homeTeam, "vs", awayTeam, result.PredictedResult)
	return result, nil
}

// headline picks the reported outcome using the configured thresholds.
// These are tunable policy constants, not calibrated decision rules
func headline(pHome, pDraw float64) string {
	if pHome > Config.HomeWinThreshold {
		return OutcomeHomeWin
	}
	if pDraw > Config.DrawThreshold {
		return OutcomeDraw
	}
	return OutcomeAwayWin
}

// expectedScore renders each side's goals-scored average as a display
// string, "1.4 - 0.8". Fixed formatting so whole-number averages keep
// their decimal place ("2.0", never "2")
func expectedScore(homeForm, awayForm FormStats) string {
	dp := Config.ExpectedScoreDecimals
	home := roundToDecimalPlaces(zeroIfNaN(homeForm.GoalsScoredAvg), dp)
	away := roundToDecimalPlaces(zeroIfNaN(awayForm.GoalsScoredAvg), dp)
	return fmt.Sprintf("%s - %s",
		strconv.FormatFloat(home, 'f', dp, 64),
		strconv.FormatFloat(away, 'f', dp, 64))
}

// sanitizeForm replaces undefined (NaN) statistics with zero before the
// vector reaches the classifier. This only happens for teams whose entire
// tail window is missing a column; the zero matches the empty-window policy
func sanitizeForm(form FormStats) FormStats {
	return FormStats{
		WinRate:          zeroIfNaN(form.WinRate),
		GoalsScoredAvg:   zeroIfNaN(form.GoalsScoredAvg),
		GoalsConcededAvg: zeroIfNaN(form.GoalsConcededAvg),
		ShotsAvg:         zeroIfNaN(form.ShotsAvg),
		ShotsOnTargetAvg: zeroIfNaN(form.ShotsOnTargetAvg),
	}
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// roundToDecimalPlaces rounds half away from zero to the given precision
func roundToDecimalPlaces(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
