// Package service composes the location index, aggregation, feature
// building, and the prediction gateway into the operations exposed over HTTP,
// Kafka, and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/couchcryptid/rainfall-intel/internal/gateway"
)

// Service answers dataset and prediction queries against one dataset snapshot.
// It is safe for concurrent use: the index is read-only and every request
// builds its own inputs.
type Service struct {
	index   *domain.LocationIndex
	gateway *gateway.Gateway
	logger  *slog.Logger
}

// New creates a Service over an index and gateway.
func New(index *domain.LocationIndex, gw *gateway.Gateway, logger *slog.Logger) *Service {
	return &Service{index: index, gateway: gw, logger: logger}
}

// States lists the states in the dataset.
func (s *Service) States() []string {
	return s.index.States()
}

// Districts lists the districts of a state.
func (s *Service) Districts(state string) ([]string, error) {
	return s.index.Districts(state)
}

// Years lists the dataset years offered for location-based prediction.
func (s *Service) Years() []int {
	return s.index.Years()
}

// Summary aggregates the records of one district.
func (s *Service) Summary(state, district string) (domain.Summary, error) {
	records, err := s.index.Filter(state, district)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(state, district, records)
}

// PredictMonthly validates the request, builds the feature vector, and
// invokes the rainfall model. Seasonal values default to those derived from
// the months; explicit seasonal values are kept unless AutoFillSeasonal is set.
func (s *Service) PredictMonthly(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResult, error) {
	if err := s.checkLocation(req.State, req.District); err != nil {
		return domain.PredictionResult{}, err
	}

	monthly, err := domain.ParseMonthly(req.Monthly)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	override, err := domain.ParseSeasonal(req.Seasonal)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	seasonal := domain.ResolveSeasonal(monthly, override, req.AutoFillSeasonal)
	features, err := domain.BuildFeatureVector(monthly, seasonal)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	mm, err := s.gateway.Predict(ctx, features)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	result := domain.NewPredictionResult(req, features, mm)
	s.logger.Debug("rainfall predicted",
		"state", req.State,
		"district", req.District,
		"predicted_mm", mm,
		"category", result.Category,
	)
	return result, nil
}

// PredictLocationYear runs the location+year rainfall model and, when the
// condition classifier is loaded, attaches its label. A classifier failure
// leaves Condition empty and keeps the rainfall prediction.
func (s *Service) PredictLocationYear(ctx context.Context, loc domain.LocationYear) (domain.LocationPrediction, error) {
	if err := s.checkLocationYear(loc); err != nil {
		return domain.LocationPrediction{}, err
	}

	mm, err := s.gateway.PredictByLocationYear(ctx, loc)
	if err != nil {
		return domain.LocationPrediction{}, err
	}

	out := domain.LocationPrediction{
		LocationYear: loc,
		PredictedMM:  mm,
		Category:     domain.Classify(mm),
	}
	if s.gateway.HasConditionModel() {
		label, err := s.gateway.ClassifyByLocationYear(ctx, loc)
		if err != nil {
			s.logger.Warn("condition label unavailable",
				"state", loc.State,
				"district", loc.District,
				"year", loc.Year,
				"error", err,
			)
			return out, nil
		}
		out.Condition = label
	}
	return out, nil
}

// ClassifyLocationYear runs only the weather-condition classifier.
func (s *Service) ClassifyLocationYear(ctx context.Context, loc domain.LocationYear) (string, error) {
	if err := s.checkLocationYear(loc); err != nil {
		return "", err
	}
	return s.gateway.ClassifyByLocationYear(ctx, loc)
}

// CheckReadiness reports whether a dataset is loaded and at least one model
// can serve predictions.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.index.Len() == 0 {
		return errors.New("dataset is empty")
	}
	if !s.gateway.HasRainfallModel() && !s.gateway.HasLocationModel() {
		return fmt.Errorf("%w: no prediction model loaded", domain.ErrModelUnavailable)
	}
	return nil
}

func (s *Service) checkLocation(state, district string) error {
	if _, err := s.index.Districts(state); err != nil {
		return err
	}
	if !s.index.Contains(state, district) {
		return &domain.LocationError{State: state, District: district}
	}
	return nil
}

// checkLocationYear requires a known district and a year inside the dataset's
// year span.
func (s *Service) checkLocationYear(loc domain.LocationYear) error {
	if err := s.checkLocation(loc.State, loc.District); err != nil {
		return err
	}

	years := s.index.Years()
	if len(years) == 0 {
		return nil
	}
	lo, hi := years[0], years[len(years)-1]
	if loc.Year == 0 {
		return &domain.RangeError{Field: "YEAR", Missing: true}
	}
	if loc.Year < lo || loc.Year > hi {
		return &domain.RangeError{Field: "YEAR", Value: float64(loc.Year), Min: float64(lo), Max: float64(hi)}
	}
	return nil
}
