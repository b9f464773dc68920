package domain

import (
	"strings"
	"time"
)

// Month indexes the twelve monthly rainfall columns in calendar order.
type Month int

const (
	Jan Month = iota
	Feb
	Mar
	Apr
	May
	Jun
	Jul
	Aug
	Sep
	Oct
	Nov
	Dec
)

// MonthsPerYear is the number of monthly columns on a record.
const MonthsPerYear = 12

var monthNames = [MonthsPerYear]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// String returns the canonical upper-case column name, e.g. "JAN".
func (m Month) String() string {
	if m < Jan || m > Dec {
		return "UNKNOWN"
	}
	return monthNames[m]
}

// Months returns the months in feature-vector order.
func Months() []Month {
	out := make([]Month, MonthsPerYear)
	for i := range out {
		out[i] = Month(i)
	}
	return out
}

// ParseMonth resolves a case-insensitive month column name.
func ParseMonth(name string) (Month, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range monthNames {
		if n == name {
			return Month(i), true
		}
	}
	return 0, false
}

// Season groups consecutive months into the four seasonal totals.
type Season int

const (
	JanFeb Season = iota
	MarMay
	JunSep
	OctDec
)

// SeasonsPerYear is the number of seasonal totals in a feature vector.
const SeasonsPerYear = 4

var seasonNames = [SeasonsPerYear]string{"Jan-Feb", "Mar-May", "Jun-Sep", "Oct-Dec"}

// seasonMonths lists the months summed into each season.
var seasonMonths = [SeasonsPerYear][]Month{
	JanFeb: {Jan, Feb},
	MarMay: {Mar, Apr, May},
	JunSep: {Jun, Jul, Aug, Sep},
	OctDec: {Oct, Nov, Dec},
}

func (s Season) String() string {
	if s < JanFeb || s > OctDec {
		return "Unknown"
	}
	return seasonNames[s]
}

// Seasons returns the seasons in feature-vector order.
func Seasons() []Season {
	return []Season{JanFeb, MarMay, JunSep, OctDec}
}

// ParseSeason resolves a case-insensitive season name such as "jun-sep".
func ParseSeason(name string) (Season, bool) {
	name = strings.TrimSpace(name)
	for i, n := range seasonNames {
		if strings.EqualFold(n, name) {
			return Season(i), true
		}
	}
	return 0, false
}

// RainfallRecord is one row of a source dataset.
type RainfallRecord struct {
	State    string
	District string

	Year    int
	HasYear bool

	Monthly    [MonthsPerYear]float64
	HasMonthly bool

	// Seasonal holds whichever seasonal totals the dataset carried.
	Seasonal map[Season]float64

	Annual    float64
	HasAnnual bool

	// Yearly holds wide per-year columns keyed by year.
	Yearly map[int]float64

	Condition string
}

// AnnualRainfall returns the record's annual rainfall: the annual column when
// present, otherwise the sum of its months.
func (r RainfallRecord) AnnualRainfall() (float64, bool) {
	if r.HasAnnual {
		return r.Annual, true
	}
	if r.HasMonthly {
		var sum float64
		for _, v := range r.Monthly {
			sum += v
		}
		return sum, true
	}
	return 0, false
}

// LocationYear identifies an input to the location-based model variant.
type LocationYear struct {
	State    string `json:"state"`
	District string `json:"district"`
	Year     int    `json:"year"`
}

// PredictionRequest carries user input for a feature-vector prediction.
// Seasonal is optional; AutoFillSeasonal explicitly overwrites it with values
// derived from Monthly.
type PredictionRequest struct {
	RequestID        string             `json:"request_id,omitempty"`
	State            string             `json:"state"`
	District         string             `json:"district"`
	Monthly          map[string]float64 `json:"monthly"`
	Seasonal         map[string]float64 `json:"seasonal,omitempty"`
	AutoFillSeasonal bool               `json:"auto_fill_seasonal,omitempty"`
}

// PredictionResult is a numeric rainfall prediction with its derived category.
type PredictionResult struct {
	ID          string        `json:"id"`
	RequestID   string        `json:"request_id,omitempty"`
	State       string        `json:"state"`
	District    string        `json:"district"`
	PredictedMM float64       `json:"predicted_mm"`
	Category    Category      `json:"category"`
	Features    FeatureVector `json:"features"`
	PredictedAt time.Time     `json:"predicted_at"`
}

// LocationPrediction is the result of the location+year model variant.
type LocationPrediction struct {
	LocationYear
	PredictedMM float64  `json:"predicted_mm"`
	Category    Category `json:"category"`
	Condition   string   `json:"condition,omitempty"`
}
