package formcast

import (
	"fmt"

	"github.com/richard-senior/formcast/internal/logger"
)

// TrainingExample pairs a feature vector with its outcome label
// (1 win, 0 draw, -1 loss)
type TrainingExample struct {
	Features []float64
	Label    int
}

// BuildDataset converts the match log snapshot into a labeled training
// dataset. For every qualifying match row the five form statistics are
// computed over the STRICTLY PRECEDING window of matches, so the features
// attached to a row can never leak information from that row or any later
// one. Rows without a full window, and rows whose window leaves any
// statistic undefined, are dropped.
//
// The serving path uses a different window (a plain tail slice, unfiltered
// by competition, which includes the most recent result). That train/serve
// skew is inherited from the trained artifact and is reproduced here
// deliberately; unifying the two windows would require retraining and
// sign-off from whoever owns model quality.
func BuildDataset(snap *Snapshot) ([]TrainingExample, error) {
	if snap == nil || snap.Len() == 0 {
		return nil, fmt.Errorf("%w: empty match log", ErrDatasetUnavailable)
	}

	window := GetFormWindowSize()
	minMatches := GetMinTeamMatches()
	competition := GetTrainingCompetition()

	var dataset []TrainingExample
	skippedTeams := 0

	// Teams() is sorted, which keeps the row order across teams
	// deterministic from run to run
	for _, team := range snap.Teams() {
		teamMatches := filterByCompetition(snap.TeamMatches(team), competition)

		// Skip teams with too few matches, not enough signal
		if len(teamMatches) < minMatches {
			skippedTeams++
			continue
		}

		for i, m := range teamMatches {
			if i < window {
				continue // no full preceding window yet
			}

			form := ComputeForm(teamMatches[i-window : i])
			if form.HasUndefined() {
				continue
			}

			isHome := 0.0
			if m.IsHome() {
				isHome = 1.0
			}
			isDraw := 0.0
			if m.IsDraw() {
				isDraw = 1.0
			}

			dataset = append(dataset, TrainingExample{
				Features: Features(form, isHome, isDraw),
				Label:    m.Label(),
			})
		}
	}

	if len(dataset) == 0 {
		return nil, fmt.Errorf("%w: no team has enough %s history to train on", ErrDatasetUnavailable, competition)
	}

	logger.Info("Built training dataset with", len(dataset), "examples, skipped", skippedTeams, "thin teams")
	return dataset, nil
}

// filterByCompetition keeps only matches from the given competition,
// preserving order
func filterByCompetition(matches []*MatchRecord, competition string) []*MatchRecord {
	var out []*MatchRecord
	for _, m := range matches {
		if m.Competition == competition {
			out = append(out, m)
		}
	}
	return out
}
