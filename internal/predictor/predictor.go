// Package predictor applies a previously trained regressor artifact to a
// meal's feature row. The artifact is a JSON file produced by the training
// side: the exact ordered feature-column list the models were fitted on,
// the target names, and one fitted model per target.
package predictor

import (
	"encoding/json"
	"fmt"
	"os"

	"glucose-ml/internal/dataset"
)

// Model is a fitted regressor for one target.
type Model interface {
	Predict(x []float64) float64
}

// LinearModel is the serialized regressor form: a coefficient per feature
// column plus an intercept. Gradient-boosted or any other model family can
// replace it behind the Model interface; only the artifact loader is tied
// to this encoding.
type LinearModel struct {
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`

	columns []string
}

// Predict evaluates the model on a feature vector ordered like the
// artifact's column list. Features without a coefficient contribute
// nothing; an unknown (NaN) feature with a non-zero coefficient makes the
// prediction NaN rather than silently guessing.
func (m *LinearModel) Predict(x []float64) float64 {
	score := m.Intercept
	for i, name := range m.columns {
		if coef, ok := m.Coefficients[name]; ok {
			score += coef * x[i]
		}
	}
	return score
}

// Artifact is a loaded trained-regressor bundle.
type Artifact struct {
	FeatureColumns []string                `json:"feature_columns"`
	Targets        []string                `json:"targets"`
	Models         map[string]*LinearModel `json:"models"`
}

// Load reads and validates an artifact file. The feature-column list must
// match the dataset schema exactly, same names in the same order. A mismatch
// means the artifact was trained against a different schema revision and
// applying it would silently misalign every input, so this fails loudly
// instead.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model artifact: %w", err)
	}

	want := dataset.FeatureColumns()
	if len(a.FeatureColumns) != len(want) {
		return nil, fmt.Errorf("artifact has %d feature columns, dataset schema has %d", len(a.FeatureColumns), len(want))
	}
	for i := range want {
		if a.FeatureColumns[i] != want[i] {
			return nil, fmt.Errorf("artifact feature column %d is %q, dataset schema expects %q", i, a.FeatureColumns[i], want[i])
		}
	}

	if len(a.Targets) == 0 {
		return nil, fmt.Errorf("artifact lists no targets")
	}
	for _, t := range a.Targets {
		m, ok := a.Models[t]
		if !ok || m == nil {
			return nil, fmt.Errorf("artifact is missing a model for target %q", t)
		}
		m.columns = a.FeatureColumns
	}
	return &a, nil
}

// Predict evaluates every target's model on the row's features.
func (a *Artifact) Predict(row *dataset.Row) (map[string]float64, error) {
	x, err := row.FeatureVector(a.FeatureColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble feature vector: %w", err)
	}
	preds := make(map[string]float64, len(a.Targets))
	for _, t := range a.Targets {
		preds[t] = a.Models[t].Predict(x)
	}
	return preds, nil
}
