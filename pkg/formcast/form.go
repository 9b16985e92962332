package formcast

import "math"

// FormStats is a team's recent-performance summary over a bounded window of
// matches. Derived, never stored: computed fresh on every call
type FormStats struct {
	WinRate          float64 `json:"winRate"`
	GoalsScoredAvg   float64 `json:"goalsScoredAvg"`
	GoalsConcededAvg float64 `json:"goalsConcededAvg"`
	ShotsAvg         float64 `json:"shotsAvg"`
	ShotsOnTargetAvg float64 `json:"shotsOnTargetAvg"`
}

// FeatureCount is the dimensionality of the classifier input vector.
// The order of Features output is a contract with the trained artifact and
// must never change without retraining
const FeatureCount = 7

// ComputeForm computes form statistics over a bounded, chronologically
// ordered slice of one team's matches. An empty window returns the zero
// FormStats rather than an error; that is the policy for teams with
// insufficient history. Missing (NaN) stat values are excluded from the
// means entirely, never coerced to zero. Pure function of its input
func ComputeForm(window []*MatchRecord) FormStats {
	if len(window) == 0 {
		return FormStats{}
	}

	wins := 0
	for _, m := range window {
		if m.IsWin() {
			wins++
		}
	}

	return FormStats{
		WinRate:          float64(wins) / float64(len(window)),
		GoalsScoredAvg:   meanOf(window, func(m *MatchRecord) float64 { return m.GoalsFor }),
		GoalsConcededAvg: meanOf(window, func(m *MatchRecord) float64 { return m.GoalsAgainst }),
		ShotsAvg:         meanOf(window, func(m *MatchRecord) float64 { return m.Shots }),
		ShotsOnTargetAvg: meanOf(window, func(m *MatchRecord) float64 { return m.ShotsOnTarget }),
	}
}

// meanOf is the arithmetic mean of one stat column over the window with NaN
// cells excluded from both numerator and denominator. All-NaN columns yield
// NaN, which callers treat as an undefined statistic
func meanOf(window []*MatchRecord, stat func(*MatchRecord) float64) float64 {
	sum := 0.0
	n := 0
	for _, m := range window {
		v := stat(m)
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Features assembles the fixed-order classifier input vector:
// [win_rate, goals_scored_avg, goals_conceded_avg, shots_avg, shots_on_target_avg, is_home, is_draw]
//
// Note the asymmetry inherited from the trained artifact: at serving time
// only the home team's form feeds this vector, the away team's form is used
// solely for the expected score display. Feeding both sides would require
// retraining
func Features(form FormStats, isHome, isDraw float64) []float64 {
	return []float64{
		form.WinRate,
		form.GoalsScoredAvg,
		form.GoalsConcededAvg,
		form.ShotsAvg,
		form.ShotsOnTargetAvg,
		isHome,
		isDraw,
	}
}

// HasUndefined reports whether any of the five form statistics is NaN,
// which happens when a rolling window has no defined values for a column
func (f FormStats) HasUndefined() bool {
	return math.IsNaN(f.WinRate) ||
		math.IsNaN(f.GoalsScoredAvg) ||
		math.IsNaN(f.GoalsConcededAvg) ||
		math.IsNaN(f.ShotsAvg) ||
		math.IsNaN(f.ShotsOnTargetAvg)
}
