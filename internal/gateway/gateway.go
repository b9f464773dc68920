// Package gateway is the boundary between the rainfall core and the opaque
// predictive models. Models are injected behind narrow interfaces; the gateway
// classifies their failures into the domain error taxonomy and never retries.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"time"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/couchcryptid/rainfall-intel/internal/observability"
)

// Model names used as metric labels and in error messages.
const (
	ModelRainfall  = "rainfall"
	ModelLocation  = "location"
	ModelCondition = "condition"
)

// Outcome labels for the predictions counter.
const (
	outcomeSuccess     = "success"
	outcomeUnavailable = "unavailable"
	outcomeFailed      = "failed"
)

// Regressor predicts annual rainfall in millimetres from a feature vector.
type Regressor interface {
	Predict(ctx context.Context, features domain.FeatureVector) (float64, error)
}

// LocationRegressor predicts rainfall for a district in a given year.
type LocationRegressor interface {
	PredictLocationYear(ctx context.Context, loc domain.LocationYear) (float64, error)
}

// ConditionClassifier predicts a weather-condition label for a district in a given year.
type ConditionClassifier interface {
	ClassifyLocationYear(ctx context.Context, loc domain.LocationYear) (string, error)
}

// Models groups the handles available to the gateway. A nil field means the
// model was not loaded.
type Models struct {
	Rainfall  Regressor
	Location  LocationRegressor
	Condition ConditionClassifier
}

// Gateway invokes the configured models and maps their failures to
// domain.ErrModelUnavailable or domain.ErrPredictionFailed.
type Gateway struct {
	models  Models
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Gateway and publishes which models are available.
func New(models Models, metrics *observability.Metrics, logger *slog.Logger) *Gateway {
	g := &Gateway{models: models, metrics: metrics, logger: logger}
	g.setAvailable(ModelRainfall, models.Rainfall != nil)
	g.setAvailable(ModelLocation, models.Location != nil)
	g.setAvailable(ModelCondition, models.Condition != nil)
	return g
}

// HasRainfallModel reports whether the feature-vector regressor is loaded.
func (g *Gateway) HasRainfallModel() bool { return g.models.Rainfall != nil }

// HasLocationModel reports whether the location+year regressor is loaded.
func (g *Gateway) HasLocationModel() bool { return g.models.Location != nil }

// HasConditionModel reports whether the condition classifier is loaded.
func (g *Gateway) HasConditionModel() bool { return g.models.Condition != nil }

// Predict returns the rainfall prediction for a complete feature vector.
func (g *Gateway) Predict(ctx context.Context, features domain.FeatureVector) (float64, error) {
	if g.models.Rainfall == nil {
		return 0, g.unavailable(ModelRainfall)
	}

	start := time.Now()
	mm, err := g.models.Rainfall.Predict(ctx, features)
	g.observeDuration(ModelRainfall, start)
	if err == nil && !isFinite(mm) {
		err = fmt.Errorf("%w: %s model returned %v", domain.ErrPredictionFailed, ModelRainfall, mm)
	}
	if err != nil {
		return 0, g.fail(ModelRainfall, err)
	}

	g.record(ModelRainfall, outcomeSuccess)
	return mm, nil
}

// PredictByLocationYear returns the location model's rainfall prediction.
func (g *Gateway) PredictByLocationYear(ctx context.Context, loc domain.LocationYear) (float64, error) {
	if g.models.Location == nil {
		return 0, g.unavailable(ModelLocation)
	}

	start := time.Now()
	mm, err := g.models.Location.PredictLocationYear(ctx, loc)
	g.observeDuration(ModelLocation, start)
	if err == nil && !isFinite(mm) {
		err = fmt.Errorf("%w: %s model returned %v", domain.ErrPredictionFailed, ModelLocation, mm)
	}
	if err != nil {
		return 0, g.fail(ModelLocation, err, "state", loc.State, "district", loc.District, "year", loc.Year)
	}

	g.record(ModelLocation, outcomeSuccess)
	return mm, nil
}

// ClassifyByLocationYear returns the condition classifier's label.
func (g *Gateway) ClassifyByLocationYear(ctx context.Context, loc domain.LocationYear) (string, error) {
	if g.models.Condition == nil {
		return "", g.unavailable(ModelCondition)
	}

	start := time.Now()
	label, err := g.models.Condition.ClassifyLocationYear(ctx, loc)
	g.observeDuration(ModelCondition, start)
	if err == nil && label == "" {
		err = fmt.Errorf("%w: %s model returned an empty label", domain.ErrPredictionFailed, ModelCondition)
	}
	if err != nil {
		return "", g.fail(ModelCondition, err, "state", loc.State, "district", loc.District, "year", loc.Year)
	}

	g.record(ModelCondition, outcomeSuccess)
	return label, nil
}

func (g *Gateway) unavailable(model string) error {
	g.record(model, outcomeUnavailable)
	return fmt.Errorf("%w: %s model not loaded", domain.ErrModelUnavailable, model)
}

// fail classifies err, records the outcome, and logs it. Errors that already
// carry a gateway sentinel keep it; transport failures are treated as the
// model being unreachable; anything else is an invocation failure.
func (g *Gateway) fail(model string, err error, attrs ...any) error {
	var classified error
	switch {
	case errors.Is(err, domain.ErrModelUnavailable), errors.Is(err, domain.ErrPredictionFailed):
		classified = err
	case isTransportError(err):
		classified = fmt.Errorf("%w: %s model: %w", domain.ErrModelUnavailable, model, err)
	default:
		classified = fmt.Errorf("%w: %s model: %w", domain.ErrPredictionFailed, model, err)
	}

	outcome := outcomeFailed
	if errors.Is(classified, domain.ErrModelUnavailable) {
		outcome = outcomeUnavailable
	}
	g.record(model, outcome)
	g.logger.Warn("model invocation failed", append([]any{"model", model, "outcome", outcome, "error", classified}, attrs...)...)
	return classified
}

func (g *Gateway) record(model, outcome string) {
	g.metrics.Predictions.WithLabelValues(model, outcome).Inc()
}

func (g *Gateway) observeDuration(model string, start time.Time) {
	g.metrics.PredictionDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
}

func (g *Gateway) setAvailable(model string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	g.metrics.ModelAvailable.WithLabelValues(model).Set(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
