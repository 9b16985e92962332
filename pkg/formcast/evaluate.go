package formcast

import (
	"fmt"
	"math/rand"

	"github.com/richard-senior/formcast/internal/logger"
)

// EvaluationReport holds held-out accuracy metrics for a trained classifier
type EvaluationReport struct {
	TrainExamples int
	TestExamples  int
	Accuracy      float64 // fraction of held-out examples labelled correctly
	PerClass      map[int]*ClassMetrics
}

// ClassMetrics holds precision/recall style counts for one outcome class
type ClassMetrics struct {
	Support   int
	Correct   int
	Predicted int
	Precision float64
	Recall    float64
}

// TrainTestSplit shuffles the dataset with the configured seed and splits
// off the configured held-out fraction. The seed is fixed so training runs
// are reproducible
func TrainTestSplit(dataset []TrainingExample) (train, test []TrainingExample) {
	shuffled := make([]TrainingExample, len(dataset))
	copy(shuffled, dataset)

	rng := rand.New(rand.NewSource(Config.TrainingSeed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	testSize := int(float64(len(shuffled)) * Config.TestFraction)
	return shuffled[testSize:], shuffled[:testSize]
}

// Evaluate scores a trained classifier against held-out examples
func Evaluate(clf *SoftmaxClassifier, test []TrainingExample) (*EvaluationReport, error) {
	if len(test) == 0 {
		return nil, fmt.Errorf("no held-out examples to evaluate against")
	}

	report := &EvaluationReport{
		TestExamples: len(test),
		PerClass:     make(map[int]*ClassMetrics),
	}
	for _, label := range []int{-1, 0, 1} {
		report.PerClass[label] = &ClassMetrics{}
	}

	correct := 0
	for _, ex := range test {
		predicted, err := clf.PredictLabel(ex.Features)
		if err != nil {
			return nil, err
		}

		report.PerClass[ex.Label].Support++
		report.PerClass[predicted].Predicted++
		if predicted == ex.Label {
			correct++
			report.PerClass[ex.Label].Correct++
		}
	}

	report.Accuracy = float64(correct) / float64(len(test))
	for _, metrics := range report.PerClass {
		if metrics.Predicted > 0 {
			metrics.Precision = float64(metrics.Correct) / float64(metrics.Predicted)
		}
		if metrics.Support > 0 {
			metrics.Recall = float64(metrics.Correct) / float64(metrics.Support)
		}
	}

	return report, nil
}

// LogReport writes the evaluation summary to the log in a classification
// report style layout
func (r *EvaluationReport) LogReport() {
	logger.Highlight(fmt.Sprintf("Model accuracy: %.4f (%d held-out examples)", r.Accuracy, r.TestExamples))
	names := map[int]string{-1: "loss", 0: "draw", 1: "win"}
	for _, label := range []int{-1, 0, 1} {
		m := r.PerClass[label]
		logger.Info(fmt.Sprintf("  %-4s precision %.2f recall %.2f support %d",
			names[label], m.Precision, m.Recall, m.Support))
	}
}
