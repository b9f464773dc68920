package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/couchcryptid/rainfall-intel/internal/gateway"
	"github.com/couchcryptid/rainfall-intel/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type sumRegressor struct {
	err error
	got domain.FeatureVector
}

// Predict returns the sum of the monthly features.
func (m *sumRegressor) Predict(_ context.Context, v domain.FeatureVector) (float64, error) {
	m.got = v
	if m.err != nil {
		return 0, m.err
	}
	var sum float64
	for _, x := range v.Monthly() {
		sum += x
	}
	return sum, nil
}

type fixedLocationModel struct {
	mm    float64
	label string
	err   error
}

func (m *fixedLocationModel) PredictLocationYear(_ context.Context, _ domain.LocationYear) (float64, error) {
	return m.mm, m.err
}

func (m *fixedLocationModel) ClassifyLocationYear(_ context.Context, _ domain.LocationYear) (string, error) {
	return m.label, m.err
}

// --- fixtures ---

var puneMonthly = map[string]float64{
	"JAN": 10, "FEB": 20, "MAR": 30, "APR": 40, "MAY": 50, "JUN": 200,
	"JUL": 250, "AUG": 220, "SEP": 180, "OCT": 60, "NOV": 30, "DEC": 15,
}

func testRecords() []domain.RainfallRecord {
	return []domain.RainfallRecord{
		{
			State: "Maharashtra", District: "Pune",
			Monthly:    [domain.MonthsPerYear]float64{10, 20, 30, 40, 50, 200, 250, 220, 180, 60, 30, 15},
			HasMonthly: true,
		},
		{State: "Maharashtra", District: "Pune", Year: 2018, HasYear: true, Annual: 980, HasAnnual: true, Condition: "Rainy"},
		{State: "Maharashtra", District: "Pune", Year: 2019, HasYear: true, Annual: 1210, HasAnnual: true, Condition: "Rainy"},
		{State: "Kerala", District: "Wayanad", Year: 2020, HasYear: true, Annual: 3100, HasAnnual: true, Condition: "Stormy"},
	}
}

func newTestService(models gateway.Models) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := gateway.New(models, observability.NewMetricsForTesting(), logger)
	return New(domain.NewLocationIndex(testRecords()), gw, logger)
}

// --- dataset queries ---

func TestService_Lookups(t *testing.T) {
	svc := newTestService(gateway.Models{})

	assert.Equal(t, []string{"Kerala", "Maharashtra"}, svc.States())
	assert.Equal(t, []int{2018, 2019, 2020}, svc.Years())

	ds, err := svc.Districts("Maharashtra")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pune"}, ds)

	_, err = svc.Districts("Atlantis")
	require.ErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestService_Summary(t *testing.T) {
	svc := newTestService(gateway.Models{})

	s, err := svc.Summary("Maharashtra", "Pune")
	require.NoError(t, err)

	assert.Equal(t, 3, s.Records)
	require.NotNil(t, s.AnnualTotal)
	assert.InDelta(t, 1105.0, *s.AnnualTotal, 1e-6)
	assert.Equal(t, domain.CategoryModerate, s.AnnualCategory)
	assert.Equal(t, []domain.YearValue{{Year: 2018, Value: 980}, {Year: 2019, Value: 1210}}, s.YearlySeries)
	assert.Equal(t, []domain.ConditionCount{{Condition: "Rainy", Count: 2}}, s.Conditions)

	_, err = svc.Summary("Maharashtra", "Wayanad")
	require.ErrorIs(t, err, domain.ErrUnknownLocation)
}

// --- PredictMonthly ---

func TestService_PredictMonthly(t *testing.T) {
	fixed := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	defer domain.SetClock(nil)

	reg := &sumRegressor{}
	svc := newTestService(gateway.Models{Rainfall: reg})

	result, err := svc.PredictMonthly(context.Background(), domain.PredictionRequest{
		RequestID: "r-1",
		State:     "Maharashtra",
		District:  "Pune",
		Monthly:   puneMonthly,
	})
	require.NoError(t, err)

	assert.InDelta(t, 1105.0, result.PredictedMM, 1e-9)
	assert.Equal(t, domain.CategoryModerate, result.Category)
	assert.Equal(t, "r-1", result.RequestID)
	assert.Equal(t, fixed, result.PredictedAt)
	assert.Equal(t, domain.SeasonalInputSet{30, 120, 850, 105}, reg.got.Seasonal(), "seasonal derived when not supplied")
}

func TestService_PredictMonthly_SeasonalOverride(t *testing.T) {
	override := map[string]float64{"Jan-Feb": 1, "Mar_May": 2, "JUN-SEP": 3, "Oct-Dec": 4}

	t.Run("kept without auto-fill", func(t *testing.T) {
		reg := &sumRegressor{}
		svc := newTestService(gateway.Models{Rainfall: reg})
		_, err := svc.PredictMonthly(context.Background(), domain.PredictionRequest{
			State: "Maharashtra", District: "Pune", Monthly: puneMonthly, Seasonal: override,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SeasonalInputSet{1, 2, 3, 4}, reg.got.Seasonal())
	})

	t.Run("replaced with auto-fill", func(t *testing.T) {
		reg := &sumRegressor{}
		svc := newTestService(gateway.Models{Rainfall: reg})
		_, err := svc.PredictMonthly(context.Background(), domain.PredictionRequest{
			State: "Maharashtra", District: "Pune", Monthly: puneMonthly, Seasonal: override, AutoFillSeasonal: true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SeasonalInputSet{30, 120, 850, 105}, reg.got.Seasonal())
	})
}

func TestService_PredictMonthly_Errors(t *testing.T) {
	outOfRange := make(map[string]float64, len(puneMonthly))
	for k, v := range puneMonthly {
		outOfRange[k] = v
	}
	outOfRange["JUL"] = 2000.01

	missing := map[string]float64{"JAN": 10}

	tests := []struct {
		name   string
		req    domain.PredictionRequest
		models gateway.Models
		want   error
	}{
		{
			name:   "unknown district",
			req:    domain.PredictionRequest{State: "Maharashtra", District: "Wayanad", Monthly: puneMonthly},
			models: gateway.Models{Rainfall: &sumRegressor{}},
			want:   domain.ErrUnknownLocation,
		},
		{
			name:   "month over bound",
			req:    domain.PredictionRequest{State: "Maharashtra", District: "Pune", Monthly: outOfRange},
			models: gateway.Models{Rainfall: &sumRegressor{}},
			want:   domain.ErrInvalidRange,
		},
		{
			name:   "missing months",
			req:    domain.PredictionRequest{State: "Maharashtra", District: "Pune", Monthly: missing},
			models: gateway.Models{Rainfall: &sumRegressor{}},
			want:   domain.ErrInvalidRange,
		},
		{
			name:   "model not loaded",
			req:    domain.PredictionRequest{State: "Maharashtra", District: "Pune", Monthly: puneMonthly},
			models: gateway.Models{},
			want:   domain.ErrModelUnavailable,
		},
		{
			name:   "model fails",
			req:    domain.PredictionRequest{State: "Maharashtra", District: "Pune", Monthly: puneMonthly},
			models: gateway.Models{Rainfall: &sumRegressor{err: errors.New("bad shape")}},
			want:   domain.ErrPredictionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(tt.models).PredictMonthly(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

// --- location+year ---

func TestService_PredictLocationYear(t *testing.T) {
	loc := domain.LocationYear{State: "Kerala", District: "Wayanad", Year: 2020}

	t.Run("with condition model", func(t *testing.T) {
		model := &fixedLocationModel{mm: 3050, label: "Stormy"}
		svc := newTestService(gateway.Models{Location: model, Condition: model})

		got, err := svc.PredictLocationYear(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, domain.LocationPrediction{
			LocationYear: loc, PredictedMM: 3050, Category: domain.CategoryHeavy, Condition: "Stormy",
		}, got)
	})

	t.Run("without condition model", func(t *testing.T) {
		svc := newTestService(gateway.Models{Location: &fixedLocationModel{mm: 420}})

		got, err := svc.PredictLocationYear(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryLow, got.Category)
		assert.Empty(t, got.Condition)
	})

	t.Run("classifier failure keeps rainfall prediction", func(t *testing.T) {
		svc := newTestService(gateway.Models{
			Location:  &fixedLocationModel{mm: 1200},
			Condition: &fixedLocationModel{err: errors.New("classifier input shape mismatch")},
		})

		got, err := svc.PredictLocationYear(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, domain.LocationPrediction{
			LocationYear: loc, PredictedMM: 1200, Category: domain.CategoryModerate,
		}, got)
	})

	t.Run("classifier only", func(t *testing.T) {
		svc := newTestService(gateway.Models{Condition: &fixedLocationModel{label: "Sunny"}})

		label, err := svc.ClassifyLocationYear(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, "Sunny", label)
	})
}

func TestService_PredictLocationYear_Validation(t *testing.T) {
	svc := newTestService(gateway.Models{Location: &fixedLocationModel{mm: 1}})

	tests := []struct {
		name string
		loc  domain.LocationYear
		want error
	}{
		{"unknown district", domain.LocationYear{State: "Kerala", District: "Pune", Year: 2019}, domain.ErrUnknownLocation},
		{"year missing", domain.LocationYear{State: "Kerala", District: "Wayanad"}, domain.ErrInvalidRange},
		{"year after span", domain.LocationYear{State: "Kerala", District: "Wayanad", Year: 2031}, domain.ErrInvalidRange},
		{"year before span", domain.LocationYear{State: "Kerala", District: "Wayanad", Year: 1990}, domain.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PredictLocationYear(context.Background(), tt.loc)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_UnknownStateMessage(t *testing.T) {
	svc := newTestService(gateway.Models{Rainfall: &sumRegressor{}, Location: &fixedLocationModel{mm: 1}})

	_, err := svc.PredictMonthly(context.Background(), domain.PredictionRequest{State: "Atlantis", District: "Pune", Monthly: puneMonthly})
	require.ErrorIs(t, err, domain.ErrUnknownLocation)
	assert.Contains(t, err.Error(), `state "Atlantis" has no districts`)

	_, err = svc.PredictLocationYear(context.Background(), domain.LocationYear{State: "Atlantis", District: "Pune", Year: 2019})
	require.ErrorIs(t, err, domain.ErrUnknownLocation)
	assert.Contains(t, err.Error(), `state "Atlantis" has no districts`)
}

func TestService_CheckReadiness(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, newTestService(gateway.Models{Rainfall: &sumRegressor{}}).CheckReadiness(ctx))
	require.NoError(t, newTestService(gateway.Models{Location: &fixedLocationModel{}}).CheckReadiness(ctx))
	require.ErrorIs(t, newTestService(gateway.Models{}).CheckReadiness(ctx), domain.ErrModelUnavailable)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := gateway.New(gateway.Models{Rainfall: &sumRegressor{}}, observability.NewMetricsForTesting(), logger)
	empty := New(domain.NewLocationIndex(nil), gw, logger)
	require.Error(t, empty.CheckReadiness(ctx))
}
