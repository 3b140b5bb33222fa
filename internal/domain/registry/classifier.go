package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/okian/pitchplus/internal/domain/model"
)

// Matrix is a feature matrix with named columns. Missing cells are NaN.
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// Classifier is a pre-fit binary classifier.
type Classifier interface {
	// PredictProba returns the positive-class probability for each row of m.
	PredictProba(m Matrix) ([]float64, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(m Matrix) ([]float64, error)

// PredictProba calls f(m).
func (f ClassifierFunc) PredictProba(m Matrix) ([]float64, error) { return f(m) }

// Logistic is a logistic-regression classifier over named features.
type Logistic struct {
	Kind         string             `json:"kind"`
	Features     []string           `json:"features"`
	Coefficients []float64          `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
	Impute       map[string]float64 `json:"impute"`
}

// DecodeLogistic reads and validates a JSON artifact.
func DecodeLogistic(r io.Reader) (*Logistic, error) {
	var l Logistic
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	if l.Kind != "logistic" {
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrBadArtifact, l.Kind)
	}
	if len(l.Features) == 0 || len(l.Features) != len(l.Coefficients) {
		return nil, fmt.Errorf("%w: %d features vs %d coefficients", ErrBadArtifact, len(l.Features), len(l.Coefficients))
	}
	for _, f := range l.Features {
		if !model.IsFeatureColumn(f) {
			return nil, fmt.Errorf("%w: unknown feature %q", ErrBadArtifact, f)
		}
	}
	return &l, nil
}

// PredictProba evaluates the model. Columns the model uses but the matrix
// lacks, and NaN cells, take the artifact's impute value (0 if unset).
func (l *Logistic) PredictProba(m Matrix) ([]float64, error) {
	idx := make(map[string]int, len(m.Columns))
	for i, c := range m.Columns {
		idx[c] = i
	}
	out := make([]float64, len(m.Rows))
	for r, row := range m.Rows {
		if len(row) != len(m.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), len(m.Columns))
		}
		z := l.Intercept
		for j, feat := range l.Features {
			v := l.Impute[feat]
			if i, ok := idx[feat]; ok && !math.IsNaN(row[i]) {
				v = row[i]
			}
			z += l.Coefficients[j] * v
		}
		out[r] = 1 / (1 + math.Exp(-z))
	}
	return out, nil
}
