package domain

import (
	"math"
	"sort"
)

// YearValue is one point of an annual rainfall trend.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// ConditionCount is the number of records carrying a weather-condition label.
type ConditionCount struct {
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

// Summary is the aggregate view of one district's records.
type Summary struct {
	State          string                  `json:"state"`
	District       string                  `json:"district"`
	Records        int                     `json:"records"`
	MonthlyMeans   *[MonthsPerYear]float64 `json:"monthly_means,omitempty"`
	SeasonalMeans  *SeasonalInputSet       `json:"seasonal_means,omitempty"`
	AnnualTotal    *float64                `json:"annual_total,omitempty"`
	AnnualCategory Category                `json:"annual_category,omitempty"`
	YearlySeries   []YearValue             `json:"yearly_series"`
	Conditions     []ConditionCount        `json:"conditions"`
}

// MonthlyMeans returns the mean of each month column across the records that
// carry monthly data, rounded to 2 decimals. An empty result is an error
// rather than twelve zeros so callers never render a fake dry year.
func MonthlyMeans(records []RainfallRecord) ([MonthsPerYear]float64, error) {
	var sums [MonthsPerYear]float64
	n := 0
	for _, r := range records {
		if !r.HasMonthly {
			continue
		}
		for m, v := range r.Monthly {
			sums[m] += v
		}
		n++
	}

	var means [MonthsPerYear]float64
	if n == 0 {
		return means, ErrEmptyRecordSet
	}
	for m := range sums {
		means[m] = round2(sums[m] / float64(n))
	}
	return means, nil
}

// AnnualTotal sums twelve monthly values.
func AnnualTotal(means [MonthsPerYear]float64) float64 {
	var total float64
	for _, v := range means {
		total += v
	}
	return total
}

// SeasonalMeans derives the four seasonal totals from the monthly means.
func SeasonalMeans(records []RainfallRecord) (SeasonalInputSet, error) {
	means, err := MonthlyMeans(records)
	if err != nil {
		return SeasonalInputSet{}, err
	}
	return DeriveSeasonal(MonthlyInputSet(means)), nil
}

// YearlySeries returns mean annual rainfall per year, ascending by year. Both
// year-indexed rows and wide per-year columns contribute. Datasets without
// year data yield an empty, non-nil slice.
func YearlySeries(records []RainfallRecord) []YearValue {
	sums := make(map[int]float64)
	counts := make(map[int]int)

	for _, r := range records {
		if r.HasYear {
			if v, ok := r.AnnualRainfall(); ok {
				sums[r.Year] += v
				counts[r.Year]++
			}
		}
		for y, v := range r.Yearly {
			sums[y] += v
			counts[y]++
		}
	}

	series := make([]YearValue, 0, len(sums))
	for y, sum := range sums {
		series = append(series, YearValue{Year: y, Value: round2(sum / float64(counts[y]))})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return series
}

// ConditionDistribution counts weather-condition labels, most frequent first.
// Ties are broken alphabetically. Records without a label are skipped.
func ConditionDistribution(records []RainfallRecord) []ConditionCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Condition != "" {
			counts[r.Condition]++
		}
	}

	out := make([]ConditionCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ConditionCount{Condition: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Condition < out[j].Condition
	})
	return out
}

// Summarize aggregates a district's records. Monthly fields are omitted when
// no record carries monthly columns (year-wise datasets).
func Summarize(state, district string, records []RainfallRecord) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, ErrEmptyRecordSet
	}

	s := Summary{
		State:        state,
		District:     district,
		Records:      len(records),
		YearlySeries: YearlySeries(records),
		Conditions:   ConditionDistribution(records),
	}

	means, err := MonthlyMeans(records)
	switch {
	case err == nil:
		total := AnnualTotal(means)
		seasonal := DeriveSeasonal(MonthlyInputSet(means))
		s.MonthlyMeans = &means
		s.SeasonalMeans = &seasonal
		s.AnnualTotal = &total
		s.AnnualCategory = Classify(total)
	case len(s.YearlySeries) == 0:
		return Summary{}, err
	}

	return s, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
