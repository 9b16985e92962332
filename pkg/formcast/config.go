package formcast

import (
	"fmt"
	"os"
	"path/filepath"
)

// FormcastConfig contains all configurable parameters that influence prediction outcomes
// This centralizes all magic numbers and constants for easy adjustment
type FormcastConfig struct {
	// Filesystem locations
	AssetsPath string // The base directory of formcast assets
	CachePath  string // The location in which downloaded match data is cached
	DbPath     string // The location of the formcast sqlite database
	ModelPath  string // The location of the trained classifier artifact

	// === FORM WINDOW PARAMETERS ===

	FormWindowSize int // Number of recent matches a form window covers (default: 5)
	MinTeamMatches int // Minimum matches a team needs to contribute training rows (default: 10)

	// === TRAINING DATA SELECTION ===

	TrainingCompetition string // Only matches from this competition feed training (default: "Premier League")

	// === DECISION POLICY ===
	// Arbitrary but must-reproduce thresholds, tunable policy not domain law

	HomeWinThreshold float64 // Home win is called above this home-win probability (default: 0.5)
	DrawThreshold    float64 // Otherwise draw is called above this draw probability (default: 0.33)

	// === CLASSIFIER TRAINING PARAMETERS ===

	TrainingIterations int     // Gradient descent passes over the dataset (default: 500)
	LearningRate       float64 // Gradient descent step size (default: 0.1)
	TestFraction       float64 // Held-out fraction for the accuracy report (default: 0.2)
	TrainingSeed       int64   // Seed for the train/test shuffle, fixed for reproducibility (default: 42)

	// === PRESENTATION ===

	ProbabilityDecimals   int // Decimal places for reported percentage probabilities (default: 2)
	ExpectedScoreDecimals int // Decimal places for the expected score display (default: 1)
}

// DefaultFormcastConfig returns the default configuration with all standard values
func DefaultFormcastConfig() *FormcastConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	assetsPath := filepath.Join(home, ".formcast")

	return &FormcastConfig{
		AssetsPath: assetsPath,
		CachePath:  filepath.Join(assetsPath, "cache"),
		DbPath:     filepath.Join(assetsPath, "formcast.db"),
		ModelPath:  filepath.Join(assetsPath, "model.json"),

		FormWindowSize: 5,
		MinTeamMatches: 10,

		TrainingCompetition: "Premier League",

		HomeWinThreshold: 0.5,
		DrawThreshold:    0.33,

		TrainingIterations: 500,
		LearningRate:       0.1,
		TestFraction:       0.2,
		TrainingSeed:       42,

		ProbabilityDecimals:   2,
		ExpectedScoreDecimals: 1,
	}
}

// Global configuration instance
var Config *FormcastConfig

// init initializes the global configuration with default values
func init() {
	Config = DefaultFormcastConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *FormcastConfig) {
	Config = newConfig
}

// GetFormWindowSize returns the configured form window size
func GetFormWindowSize() int {
	return Config.FormWindowSize
}

// GetMinTeamMatches returns the minimum number of matches a team needs
// before it contributes rows to the training dataset
func GetMinTeamMatches() int {
	return Config.MinTeamMatches
}

// GetTrainingCompetition returns the competition used for training
func GetTrainingCompetition() string {
	return Config.TrainingCompetition
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *FormcastConfig) error {
	if config.FormWindowSize < 1 {
		return fmt.Errorf("FormWindowSize must be at least 1, got: %d", config.FormWindowSize)
	}

	if config.MinTeamMatches < config.FormWindowSize {
		return fmt.Errorf("MinTeamMatches must be at least the form window size %d, got: %d",
			config.FormWindowSize, config.MinTeamMatches)
	}

	if config.HomeWinThreshold <= 0.0 || config.HomeWinThreshold >= 1.0 {
		return fmt.Errorf("HomeWinThreshold must be between 0.0 and 1.0 exclusive, got: %f", config.HomeWinThreshold)
	}

	if config.DrawThreshold <= 0.0 || config.DrawThreshold >= 1.0 {
		return fmt.Errorf("DrawThreshold must be between 0.0 and 1.0 exclusive, got: %f", config.DrawThreshold)
	}

	if config.TestFraction < 0.0 || config.TestFraction >= 1.0 {
		return fmt.Errorf("TestFraction must be in [0.0, 1.0), got: %f", config.TestFraction)
	}

	if config.TrainingIterations < 1 {
		return fmt.Errorf("TrainingIterations must be at least 1, got: %d", config.TrainingIterations)
	}

	if config.LearningRate <= 0.0 {
		return fmt.Errorf("LearningRate must be positive, got: %f", config.LearningRate)
	}

	return nil
}
