// Package modelfile loads serialized rainfall regressors from disk.
package modelfile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"gopkg.in/yaml.v3"
)

// LinearModel is a linear regressor over the 16-value feature vector.
//
// File format:
//
//	name: district-linear-v3
//	intercept: 42.0
//	features: [JAN, FEB, ..., Oct-Dec]   # optional, must match the vector order
//	coefficients: [0.8, 0.8, ...]        # exactly 16 values
//	floor: 0                             # optional lower bound on the output
type LinearModel struct {
	Name         string    `yaml:"name"`
	Intercept    float64   `yaml:"intercept"`
	Features     []string  `yaml:"features"`
	Coefficients []float64 `yaml:"coefficients"`
	Floor        *float64  `yaml:"floor"`
}

// Load reads a LinearModel from path. Any failure wraps domain.ErrModelUnavailable.
func Load(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read model file: %w", domain.ErrModelUnavailable, err)
	}

	var m LinearModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse model file %s: %w", domain.ErrModelUnavailable, path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrModelUnavailable, path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(path, ".yaml")
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	if len(m.Coefficients) != domain.FeatureLen {
		return fmt.Errorf("expected %d coefficients, got %d", domain.FeatureLen, len(m.Coefficients))
	}
	if len(m.Features) == 0 {
		return nil
	}

	want := domain.FeatureNames()
	if len(m.Features) != len(want) {
		return fmt.Errorf("expected %d feature names, got %d", len(want), len(m.Features))
	}
	for i, name := range m.Features {
		if !strings.EqualFold(name, want[i]) {
			return fmt.Errorf("feature %d is %q, expected %q", i, name, want[i])
		}
	}
	return nil
}

// Predict returns intercept + coefficients . features, raised to Floor when set.
func (m *LinearModel) Predict(ctx context.Context, features domain.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(m.Coefficients) != domain.FeatureLen {
		return 0, fmt.Errorf("%w: model %s has %d coefficients", domain.ErrPredictionFailed, m.Name, len(m.Coefficients))
	}

	y := m.Intercept
	for i, x := range features {
		y += m.Coefficients[i] * x
	}
	if m.Floor != nil && y < *m.Floor {
		y = *m.Floor
	}
	return y, nil
}
