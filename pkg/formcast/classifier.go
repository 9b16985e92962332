package formcast

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/richard-senior/formcast/internal/logger"
)

// Classifier is the opaque probabilistic model boundary between the
// training and serving pipelines. PredictProba returns two degrees of
// freedom, [p_draw, p_home_win]; the away-win probability is derived by
// the caller
type Classifier interface {
	PredictProba(features []float64) ([]float64, error)
}

// The three outcome classes in label order. Index 0 is loss (-1),
// index 1 draw (0), index 2 win (1). This ordering is baked into the
// persisted weights
const numClasses = 3

// SoftmaxClassifier is a three-class softmax regression over standardised
// features, trained by batch gradient descent. Immutable once trained
type SoftmaxClassifier struct {
	// Scaler state, learned from the training data
	FeatureMeans []float64 `json:"featureMeans"`
	FeatureStds  []float64 `json:"featureStds"`

	// One weight row per class; each row is [bias, w1..w7]
	Weights [][]float64 `json:"weights"`

	// Metadata
	TrainedAt  time.Time `json:"trainedAt"`
	Iterations int       `json:"iterations"`
	Examples   int       `json:"examples"`
}

// classIndex maps a training label (-1, 0, 1) onto a weight row
func classIndex(label int) int {
	return label + 1
}

// TrainClassifier fits a SoftmaxClassifier to the dataset using the
// configured iteration count and learning rate
func TrainClassifier(dataset []TrainingExample) (*SoftmaxClassifier, error) {
	if len(dataset) == 0 {
		return nil, fmt.Errorf("cannot train on an empty dataset")
	}
	for _, ex := range dataset {
		if len(ex.Features) != FeatureCount {
			return nil, fmt.Errorf("training example has %d features, want %d", len(ex.Features), FeatureCount)
		}
	}

	clf := &SoftmaxClassifier{
		TrainedAt:  time.Now(),
		Iterations: Config.TrainingIterations,
		Examples:   len(dataset),
	}
	clf.fitScaler(dataset)

	// Standardise once up front
	scaled := make([][]float64, len(dataset))
	for i, ex := range dataset {
		scaled[i] = clf.scale(ex.Features)
	}

	// Weight rows carry the bias in position zero
	clf.Weights = make([][]float64, numClasses)
	for c := range clf.Weights {
		clf.Weights[c] = make([]float64, FeatureCount+1)
	}

	lr := Config.LearningRate
	n := float64(len(dataset))

	// Batch gradient descent on the cross-entropy loss. The gradient for
	// class c is (p_c - y_c) * x accumulated over the dataset
	for iter := 0; iter < clf.Iterations; iter++ {
		grad := make([][]float64, numClasses)
		for c := range grad {
			grad[c] = make([]float64, FeatureCount+1)
		}

		for i, ex := range dataset {
			probs := clf.softmax(scaled[i])
			target := classIndex(ex.Label)
			for c := 0; c < numClasses; c++ {
				diff := probs[c]
				if c == target {
					diff -= 1.0
				}
				grad[c][0] += diff
				for k, x := range scaled[i] {
					grad[c][k+1] += diff * x
				}
			}
		}

		for c := 0; c < numClasses; c++ {
			for k := range clf.Weights[c] {
				clf.Weights[c][k] -= lr * grad[c][k] / n
			}
		}
	}

	logger.Info("Trained classifier on", len(dataset), "examples over", clf.Iterations, "iterations")
	return clf, nil
}

// fitScaler learns per-feature means and standard deviations. Zero-variance
// features get a unit deviation so standardisation is a no-op for them
func (clf *SoftmaxClassifier) fitScaler(dataset []TrainingExample) {
	n := float64(len(dataset))
	clf.FeatureMeans = make([]float64, FeatureCount)
	clf.FeatureStds = make([]float64, FeatureCount)

	for _, ex := range dataset {
		for k, v := range ex.Features {
			clf.FeatureMeans[k] += v
		}
	}
	for k := range clf.FeatureMeans {
		clf.FeatureMeans[k] /= n
	}

	for _, ex := range dataset {
		for k, v := range ex.Features {
			d := v - clf.FeatureMeans[k]
			clf.FeatureStds[k] += d * d
		}
	}
	for k := range clf.FeatureStds {
		clf.FeatureStds[k] = math.Sqrt(clf.FeatureStds[k] / n)
		if clf.FeatureStds[k] == 0 {
			clf.FeatureStds[k] = 1.0
		}
	}
}

// scale standardises a feature vector using the learned scaler state
func (clf *SoftmaxClassifier) scale(features []float64) []float64 {
	out := make([]float64, len(features))
	for k, v := range features {
		out[k] = (v - clf.FeatureMeans[k]) / clf.FeatureStds[k]
	}
	return out
}

// softmax computes class probabilities for an already-scaled vector,
// shifting by the max logit for numerical stability
func (clf *SoftmaxClassifier) softmax(scaled []float64) []float64 {
	logits := make([]float64, numClasses)
	maxLogit := math.Inf(-1)
	for c := 0; c < numClasses; c++ {
		z := clf.Weights[c][0]
		for k, x := range scaled {
			z += clf.Weights[c][k+1] * x
		}
		logits[c] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	sum := 0.0
	probs := make([]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		probs[c] = math.Exp(logits[c] - maxLogit)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}
	return probs
}

// PredictProba returns [p_draw, p_home_win] for a feature vector.
// The loss probability is the remaining mass
func (clf *SoftmaxClassifier) PredictProba(features []float64) ([]float64, error) {
	if len(features) != FeatureCount {
		return nil, fmt.Errorf("feature vector has %d values, want %d", len(features), FeatureCount)
	}
	for _, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature vector contains a non-finite value")
		}
	}

	probs := clf.softmax(clf.scale(features))
	return []float64{probs[classIndex(0)], probs[classIndex(1)]}, nil
}

// PredictLabel returns the most probable label (-1, 0 or 1)
func (clf *SoftmaxClassifier) PredictLabel(features []float64) (int, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("feature vector has %d values, want %d", len(features), FeatureCount)
	}
	probs := clf.softmax(clf.scale(features))
	best := 0
	for c := 1; c < numClasses; c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return best - 1, nil
}

/////////////////////////////////////////////////////////////////////////
////// Artifact Persistence
/////////////////////////////////////////////////////////////////////////

// SaveClassifier persists the trained artifact as JSON at the given path
func SaveClassifier(clf *SoftmaxClassifier, path string) error {
	data, err := json.MarshalIndent(clf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal classifier: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write classifier artifact: %w", err)
	}
	logger.Info("Saved classifier artifact to", path)
	return nil
}

// LoadClassifier loads a trained artifact. A missing or corrupt artifact
// is reported as model unavailable
func LoadClassifier(path string) (*SoftmaxClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	var clf SoftmaxClassifier
	if err := json.Unmarshal(data, &clf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if len(clf.Weights) != numClasses || len(clf.FeatureMeans) != FeatureCount || len(clf.FeatureStds) != FeatureCount {
		return nil, fmt.Errorf("%w: artifact has unexpected shape", ErrModelUnavailable)
	}

	return &clf, nil
}
