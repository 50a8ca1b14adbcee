package scoring

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

// Sample is one historical observation: a feature vector and the
// outcome it produced (financial stress in [0,1]).
type Sample struct {
	Features []float64 `json:"features"`
	Outcome  float64   `json:"outcome"`
}

// Training hyperparameters. Gradient descent on MSE is enough for a
// linear model over six bounded ratios.
const (
	learningRate = 0.05
	epochs       = 2000
)

// Train fits linear model weights minimizing mean squared error over
// the batch and returns an unversioned artifact; the store assigns the
// next version on save. The batch must be non-empty and free of NaNs.
func Train(samples []Sample) (*models.ModelArtifact, error) {
	if len(samples) == 0 {
		return nil, &errs.TrainingError{Reason: "empty training batch"}
	}
	for i, s := range samples {
		if len(s.Features) != models.FeatureCount {
			return nil, &errs.TrainingError{
				Reason: fmt.Sprintf("sample %d has %d features, want %d", i, len(s.Features), models.FeatureCount),
			}
		}
		if !finite(s.Features...) || !finite(s.Outcome) {
			return nil, &errs.TrainingError{Reason: fmt.Sprintf("sample %d contains non-finite values", i)}
		}
	}

	weights := make([]float64, models.FeatureCount)
	bias := 0.0
	n := float64(len(samples))

	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([]float64, models.FeatureCount)
		gradB := 0.0
		for _, s := range samples {
			pred := bias
			for i, w := range weights {
				pred += w * s.Features[i]
			}
			diff := pred - s.Outcome
			for i := range gradW {
				gradW[i] += diff * s.Features[i]
			}
			gradB += diff
		}
		for i := range weights {
			weights[i] -= learningRate * gradW[i] / n
		}
		bias -= learningRate * gradB / n
	}

	if !finite(weights...) || !finite(bias) {
		return nil, &errs.TrainingError{Reason: "training diverged"}
	}

	return &models.ModelArtifact{
		Weights:     weights,
		Bias:        bias,
		SampleCount: len(samples),
		TrainedAt:   time.Now().UTC(),
	}, nil
}

// LoadSamplesCSV reads training samples from a CSV file with a header
// row of six feature columns followed by an outcome column.
func LoadSamplesCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open training data: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read training data: %w", err)
	}
	if len(records) < 2 {
		return nil, &errs.TrainingError{Reason: "training file has no data rows"}
	}
	if len(records[0]) != models.FeatureCount+1 {
		return nil, &errs.TrainingError{
			Reason: fmt.Sprintf("training file has %d columns, want %d", len(records[0]), models.FeatureCount+1),
		}
	}

	samples := make([]Sample, 0, len(records)-1)
	for rowIdx, rec := range records[1:] {
		s := Sample{Features: make([]float64, models.FeatureCount)}
		for col, raw := range rec {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &errs.TrainingError{
					Reason: fmt.Sprintf("row %d column %d: bad value %q", rowIdx+2, col+1, raw),
				}
			}
			if col < models.FeatureCount {
				s.Features[col] = v
			} else {
				s.Outcome = v
			}
		}
		samples = append(samples, s)
	}
	return samples, nil
}
