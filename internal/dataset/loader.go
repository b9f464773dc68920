// Package dataset reads tabular rainfall datasets into domain records.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
)

// ErrSchema reports a dataset whose header lacks the required columns.
var ErrSchema = errors.New("dataset schema")

// yearColumnRe matches wide per-year headers such as "2015".
var yearColumnRe = regexp.MustCompile(`^(1[89]|20)\d{2}$`)

// missingValues are cell contents treated as "no value".
var missingValues = map[string]bool{"": true, "NA": true, "N/A": true, "NAN": true, "NULL": true, "-": true}

// Loader parses CSV datasets according to a Schema.
type Loader struct {
	schema Schema
	logger *slog.Logger
}

// NewLoader creates a Loader for the given schema.
func NewLoader(schema Schema, logger *slog.Logger) *Loader {
	return &Loader{schema: schema, logger: logger}
}

// columns holds resolved column positions; -1 means absent.
type columns struct {
	state, district, year, annual, condition int
	months                                   [domain.MonthsPerYear]int
	seasons                                  [domain.SeasonsPerYear]int
	years                                    map[int]int // year -> column
}

func (c columns) hasMonthly() bool {
	for _, i := range c.months {
		if i < 0 {
			return false
		}
	}
	return true
}

// LoadFile opens and parses the dataset at path.
func (l *Loader) LoadFile(path string) ([]domain.RainfallRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}

// Load parses a CSV stream. Rows without a state or district are skipped with
// a warning; malformed numbers and negative monthly values are errors.
func (l *Loader) Load(r io.Reader) ([]domain.RainfallRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrSchema)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := l.resolve(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RainfallRecord
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		rec, ok, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		l.logger.Warn("skipped dataset rows without location", "skipped", skipped)
	}
	l.logger.Debug("dataset parsed", "records", len(records), "monthly", cols.hasMonthly(), "wide_years", len(cols.years))
	return records, nil
}

func (l *Loader) resolve(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		n := NormalizeHeader(h)
		if _, dup := index[n]; !dup {
			index[n] = i
		}
	}

	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := index[NormalizeHeader(a)]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		state:     find(l.schema.State),
		district:  find(l.schema.District),
		year:      find(l.schema.Year),
		annual:    find(l.schema.Annual),
		condition: find(l.schema.Condition),
		years:     make(map[int]int),
	}
	for _, m := range domain.Months() {
		cols.months[m] = find(l.schema.Months[m.String()])
	}
	for _, s := range domain.Seasons() {
		cols.seasons[s] = find(l.schema.Seasons[s.String()])
	}
	for name, i := range index {
		if yearColumnRe.MatchString(name) {
			y, _ := strconv.Atoi(name)
			cols.years[y] = i
		}
	}

	if cols.state < 0 || cols.district < 0 {
		return columns{}, fmt.Errorf("%w: state and district columns are required", ErrSchema)
	}
	yearWise := cols.year >= 0 && cols.annual >= 0
	if !cols.hasMonthly() && !yearWise && len(cols.years) == 0 {
		return columns{}, fmt.Errorf("%w: need JAN..DEC columns, YEAR with an annual column, or per-year columns", ErrSchema)
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (domain.RainfallRecord, bool, error) {
	rec := domain.RainfallRecord{
		State:    cell(row, cols.state),
		District: cell(row, cols.district),
	}
	if rec.State == "" || rec.District == "" {
		return domain.RainfallRecord{}, false, nil
	}

	if cols.year >= 0 {
		y, ok, err := parseYear(row, cols.year)
		if err != nil {
			return domain.RainfallRecord{}, false, err
		}
		rec.Year, rec.HasYear = y, ok
	}

	if cols.hasMonthly() {
		rec.HasMonthly = true
		for m, i := range cols.months {
			name := domain.Month(m).String()
			v, ok, err := parseNumber(row, i, name)
			if err != nil {
				return domain.RainfallRecord{}, false, err
			}
			if !ok {
				rec.HasMonthly = false
				continue
			}
			if v < 0 {
				return domain.RainfallRecord{}, false, fmt.Errorf("%s: negative rainfall %g", name, v)
			}
			rec.Monthly[m] = v
		}
		if !rec.HasMonthly {
			rec.Monthly = [domain.MonthsPerYear]float64{}
		}
	}

	for s, i := range cols.seasons {
		if i < 0 {
			continue
		}
		v, ok, err := parseNumber(row, i, domain.Season(s).String())
		if err != nil {
			return domain.RainfallRecord{}, false, err
		}
		if ok {
			if rec.Seasonal == nil {
				rec.Seasonal = make(map[domain.Season]float64)
			}
			rec.Seasonal[domain.Season(s)] = v
		}
	}

	if cols.annual >= 0 {
		v, ok, err := parseNumber(row, cols.annual, "ANNUAL")
		if err != nil {
			return domain.RainfallRecord{}, false, err
		}
		rec.Annual, rec.HasAnnual = v, ok
	}

	for y, i := range cols.years {
		v, ok, err := parseNumber(row, i, strconv.Itoa(y))
		if err != nil {
			return domain.RainfallRecord{}, false, err
		}
		if ok {
			if rec.Yearly == nil {
				rec.Yearly = make(map[int]float64)
			}
			rec.Yearly[y] = v
		}
	}

	if cols.condition >= 0 {
		rec.Condition = cell(row, cols.condition)
	}

	return rec, true, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber returns (value, present, error). Missing markers are not errors.
func parseNumber(row []string, i int, field string) (float64, bool, error) {
	s := cell(row, i)
	if missingValues[strings.ToUpper(s)] {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false, fmt.Errorf("%s: invalid number %q", field, s)
	}
	return v, true, nil
}

// parseYear accepts whole years only.
func parseYear(row []string, i int) (int, bool, error) {
	s := cell(row, i)
	if missingValues[strings.ToUpper(s)] {
		return 0, false, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("YEAR: invalid year %q", s)
	}
	return y, true, nil
}
