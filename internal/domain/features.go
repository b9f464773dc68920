package domain

import (
	"math"
	"strings"
)

// Accepted input bounds in millimetres.
const (
	MaxMonthlyMM  = 2000.0
	MaxSeasonalMM = 4000.0
)

// FeatureLen is the length of the model input vector.
const FeatureLen = MonthsPerYear + SeasonsPerYear

// MonthlyInputSet holds one value per month, JAN..DEC.
type MonthlyInputSet [MonthsPerYear]float64

// SeasonalInputSet holds one value per season, Jan-Feb..Oct-Dec.
type SeasonalInputSet [SeasonsPerYear]float64

// FeatureVector is the ordered model input: twelve months then four seasons.
// It is a value type; copies never alias.
type FeatureVector [FeatureLen]float64

// Values returns the vector as a fresh slice.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, FeatureLen)
	copy(out, v[:])
	return out
}

// Monthly returns the monthly half of the vector.
func (v FeatureVector) Monthly() MonthlyInputSet {
	var m MonthlyInputSet
	copy(m[:], v[:MonthsPerYear])
	return m
}

// Seasonal returns the seasonal half of the vector.
func (v FeatureVector) Seasonal() SeasonalInputSet {
	var s SeasonalInputSet
	copy(s[:], v[MonthsPerYear:])
	return s
}

// FeatureNames lists the column names in vector order.
func FeatureNames() []string {
	names := make([]string, 0, FeatureLen)
	for _, m := range Months() {
		names = append(names, m.String())
	}
	for _, s := range Seasons() {
		names = append(names, s.String())
	}
	return names
}

// Clamp pins every month into [0, MaxMonthlyMM], the way the input widgets did.
func (m MonthlyInputSet) Clamp() MonthlyInputSet {
	for i, v := range m {
		m[i] = math.Min(math.Max(v, 0), MaxMonthlyMM)
	}
	return m
}

// DeriveSeasonal sums the months of each season.
func DeriveSeasonal(m MonthlyInputSet) SeasonalInputSet {
	var s SeasonalInputSet
	for season, months := range seasonMonths {
		for _, month := range months {
			s[season] += m[month]
		}
	}
	return s
}

// ResolveSeasonal picks the seasonal totals for a request. Without an override
// the derived totals are used. An override is kept unless autoFill is set, in
// which case the derived totals replace it.
func ResolveSeasonal(m MonthlyInputSet, override *SeasonalInputSet, autoFill bool) SeasonalInputSet {
	if override == nil || autoFill {
		return DeriveSeasonal(m)
	}
	return *override
}

// BuildFeatureVector validates the inputs and concatenates them in model order.
func BuildFeatureVector(m MonthlyInputSet, s SeasonalInputSet) (FeatureVector, error) {
	var v FeatureVector
	for i, val := range m {
		if err := checkRange(Month(i).String(), val, MaxMonthlyMM); err != nil {
			return FeatureVector{}, err
		}
		v[i] = val
	}
	for i, val := range s {
		if err := checkRange(Season(i).String(), val, MaxSeasonalMM); err != nil {
			return FeatureVector{}, err
		}
		v[MonthsPerYear+i] = val
	}
	return v, nil
}

// ParseMonthly reads twelve month values keyed by case-insensitive column
// name. Unknown keys are ignored; a missing month or one given under two
// spellings is a RangeError.
func ParseMonthly(values map[string]float64) (MonthlyInputSet, error) {
	var m MonthlyInputSet
	var seen [MonthsPerYear]bool
	for k, v := range values {
		month, ok := ParseMonth(k)
		if !ok {
			continue
		}
		if seen[month] {
			return MonthlyInputSet{}, &RangeError{Field: month.String(), Max: MaxMonthlyMM, Duplicate: true}
		}
		m[month] = v
		seen[month] = true
	}
	for i, ok := range seen {
		if !ok {
			return MonthlyInputSet{}, &RangeError{Field: Month(i).String(), Max: MaxMonthlyMM, Missing: true}
		}
	}
	return m, nil
}

// ParseSeasonal reads four seasonal totals. It returns nil when values is
// empty so callers can fall back to derived totals.
func ParseSeasonal(values map[string]float64) (*SeasonalInputSet, error) {
	if len(values) == 0 {
		return nil, nil
	}
	var s SeasonalInputSet
	var seen [SeasonsPerYear]bool
	for k, v := range values {
		season, ok := ParseSeason(strings.ReplaceAll(k, "_", "-"))
		if !ok {
			continue
		}
		if seen[season] {
			return nil, &RangeError{Field: season.String(), Max: MaxSeasonalMM, Duplicate: true}
		}
		s[season] = v
		seen[season] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, &RangeError{Field: Season(i).String(), Max: MaxSeasonalMM, Missing: true}
		}
	}
	return &s, nil
}

func checkRange(field string, v, maxVal float64) error {
	if math.IsNaN(v) || v < 0 || v > maxVal {
		return &RangeError{Field: field, Value: v, Min: 0, Max: maxVal}
	}
	return nil
}
