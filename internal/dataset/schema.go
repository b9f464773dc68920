package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"gopkg.in/yaml.v3"
)

// Schema maps canonical fields to the header aliases that may carry them.
// Aliases are matched after trimming and upper-casing the header.
type Schema struct {
	State     []string            `yaml:"state"`
	District  []string            `yaml:"district"`
	Year      []string            `yaml:"year"`
	Annual    []string            `yaml:"annual"`
	Condition []string            `yaml:"condition"`
	Months    map[string][]string `yaml:"months"`  // keyed by JAN..DEC
	Seasons   map[string][]string `yaml:"seasons"` // keyed by Jan-Feb..Oct-Dec
}

// DefaultSchema covers the column names used by the published district
// rainfall datasets.
func DefaultSchema() Schema {
	s := Schema{
		State:     []string{"STATE/UT", "STATE", "STATE_UT", "SUBDIVISION"},
		District:  []string{"DISTRICT"},
		Year:      []string{"YEAR"},
		Annual:    []string{"ANNUAL", "RAINFALL (MM)", "RAINFALL"},
		Condition: []string{"WEATHER CONDITION", "CONDITION"},
		Months:    make(map[string][]string),
		Seasons:   make(map[string][]string),
	}
	for _, m := range domain.Months() {
		s.Months[m.String()] = []string{m.String()}
	}
	for _, season := range domain.Seasons() {
		s.Seasons[season.String()] = []string{strings.ToUpper(season.String())}
	}
	return s
}

// LoadSchema reads a YAML alias file and merges it over DefaultSchema.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema file: %w", err)
	}

	var extra Schema
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return Schema{}, fmt.Errorf("parse schema file: %w", err)
	}

	return DefaultSchema().Merge(extra)
}

// Merge appends the aliases of other to s. Month and season keys must name a
// known column.
func (s Schema) Merge(other Schema) (Schema, error) {
	s.State = append(s.State, other.State...)
	s.District = append(s.District, other.District...)
	s.Year = append(s.Year, other.Year...)
	s.Annual = append(s.Annual, other.Annual...)
	s.Condition = append(s.Condition, other.Condition...)

	months := make(map[string][]string, len(s.Months))
	for k, v := range s.Months {
		months[k] = append([]string(nil), v...)
	}
	for k, v := range other.Months {
		m, ok := domain.ParseMonth(k)
		if !ok {
			return Schema{}, fmt.Errorf("schema: unknown month %q", k)
		}
		months[m.String()] = append(months[m.String()], v...)
	}
	s.Months = months

	seasons := make(map[string][]string, len(s.Seasons))
	for k, v := range s.Seasons {
		seasons[k] = append([]string(nil), v...)
	}
	for k, v := range other.Seasons {
		season, ok := domain.ParseSeason(k)
		if !ok {
			return Schema{}, fmt.Errorf("schema: unknown season %q", k)
		}
		seasons[season.String()] = append(seasons[season.String()], v...)
	}
	s.Seasons = seasons

	return s, nil
}

// NormalizeHeader applies the canonical casing used for alias lookup.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToUpper(strings.TrimSpace(h))
}

// Open loads the dataset at path, merging the aliases in schemaFile when it
// is set.
func Open(path, schemaFile string, logger *slog.Logger) ([]domain.RainfallRecord, error) {
	schema := DefaultSchema()
	if schemaFile != "" {
		var err error
		if schema, err = LoadSchema(schemaFile); err != nil {
			return nil, err
		}
	}
	return NewLoader(schema, logger).LoadFile(path)
}
