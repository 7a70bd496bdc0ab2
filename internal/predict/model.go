package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
)

// BundleFile is the model file looked up in the models directory.
const BundleFile = "model_bundle.json"

var ErrMissingFeature = errors.New("predict: missing feature")

// Scaler is a fitted standard scaler: x' = (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LinearModel holds the exported weights of a linear model together with the
// scaler and the column order it was trained on.
type LinearModel struct {
	FeatureOrder []string  `json:"feature_order"`
	Scaler       Scaler    `json:"scaler"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Bundle is the full set of artifacts needed for a prediction.
type Bundle struct {
	// Encoders maps a categorical column to its label classes; a label encodes to its index.
	Encoders   map[string][]string `json:"encoders"`
	Regressor  LinearModel         `json:"mental_health_regressor"`
	Classifier LinearModel         `json:"addiction_classifier"`
}

func LoadBundle(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := b.Regressor.validate(); err != nil {
		return nil, fmt.Errorf("mental health regressor: %w", err)
	}
	if err := b.Classifier.validate(); err != nil {
		return nil, fmt.Errorf("addiction classifier: %w", err)
	}
	return &b, nil
}

func (m *LinearModel) validate() error {
	n := len(m.FeatureOrder)
	if n == 0 {
		return errors.New("no features")
	}
	if len(m.Coefficients) != n || len(m.Scaler.Mean) != n || len(m.Scaler.Scale) != n {
		return fmt.Errorf("expected %d coefficients, means and scales, got %d, %d and %d",
			n, len(m.Coefficients), len(m.Scaler.Mean), len(m.Scaler.Scale))
	}
	return nil
}

// Encode maps a categorical label to its class index. Unseen labels fall back to the first class.
func (b *Bundle) Encode(column, label string) float64 {
	if i := slices.Index(b.Encoders[column], label); i >= 0 {
		return float64(i)
	}
	return 0
}

// Decision returns the scaled linear combination of the features.
func (m *LinearModel) Decision(features map[string]float64) (float64, error) {
	z := m.Intercept
	for i, name := range m.FeatureOrder {
		x, ok := features[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		scale := m.Scaler.Scale[i]
		if scale == 0 {
			scale = 1
		}
		z += m.Coefficients[i] * (x - m.Scaler.Mean[i]) / scale
	}
	return z, nil
}

// Probability applies the logistic function to the decision value.
func (m *LinearModel) Probability(features map[string]float64) (float64, error) {
	z, err := m.Decision(features)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + math.Exp(-z)), nil
}
