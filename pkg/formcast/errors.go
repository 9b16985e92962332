package formcast

import "errors"

// Error kinds surfaced by the prediction pipeline. Callers distinguish them
// with errors.Is; anything else coming out of Predict is an ErrComputation
// wrap carrying the underlying message for diagnostics.
var (
	// ErrDatasetUnavailable means the match log could not be loaded
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrModelUnavailable means the classifier artifact could not be loaded
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMissingSelection means one or both team names were empty
	ErrMissingSelection = errors.New("both home and away teams must be selected")

	// ErrSameTeam means the same team was selected on both sides
	ErrSameTeam = errors.New("home and away teams cannot be the same")

	// ErrComputation wraps unexpected failures during feature computation
	// or classification, never silently defaulted
	ErrComputation = errors.New("prediction computation failed")
)

// IsInvalidSelection reports whether err is a client-side selection error
// rather than a server-side failure
func IsInvalidSelection(err error) bool {
	return errors.Is(err, ErrMissingSelection) || errors.Is(err, ErrSameTeam)
}
