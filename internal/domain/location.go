package domain

import (
	"slices"
	"sort"
)

// DistrictConflict reports a district name observed under more than one state.
type DistrictConflict struct {
	District string
	States   []string
}

// LocationIndex is the immutable state -> district hierarchy of a dataset
// snapshot. All methods are safe for concurrent use.
type LocationIndex struct {
	records   []RainfallRecord
	districts map[string][]string // state -> sorted districts
	stateOf   map[string]string   // district -> last state seen
	conflicts []DistrictConflict
}

// NewLocationIndex builds the hierarchy from the full record set. The records
// slice is copied, so later changes by the caller are not observed.
func NewLocationIndex(records []RainfallRecord) *LocationIndex {
	idx := &LocationIndex{
		records:   slices.Clone(records),
		districts: make(map[string][]string),
		stateOf:   make(map[string]string),
	}

	seen := make(map[string]map[string]struct{})
	statesByDistrict := make(map[string]map[string]struct{})
	for _, r := range idx.records {
		if r.State == "" || r.District == "" {
			continue
		}
		if seen[r.State] == nil {
			seen[r.State] = make(map[string]struct{})
		}
		seen[r.State][r.District] = struct{}{}

		if statesByDistrict[r.District] == nil {
			statesByDistrict[r.District] = make(map[string]struct{})
		}
		statesByDistrict[r.District][r.State] = struct{}{}
		idx.stateOf[r.District] = r.State
	}

	for state, set := range seen {
		idx.districts[state] = sortedKeys(set)
	}

	for district, states := range statesByDistrict {
		if len(states) > 1 {
			idx.conflicts = append(idx.conflicts, DistrictConflict{District: district, States: sortedKeys(states)})
		}
	}
	sort.Slice(idx.conflicts, func(i, j int) bool {
		return idx.conflicts[i].District < idx.conflicts[j].District
	})

	return idx
}

// States returns every state name, sorted and deduplicated.
func (idx *LocationIndex) States() []string {
	states := make([]string, 0, len(idx.districts))
	for s := range idx.districts {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// Districts returns the sorted districts of a state.
func (idx *LocationIndex) Districts(state string) ([]string, error) {
	ds, ok := idx.districts[state]
	if !ok || len(ds) == 0 {
		return nil, &LocationError{State: state}
	}
	return slices.Clone(ds), nil
}

// Contains reports whether district belongs to state.
func (idx *LocationIndex) Contains(state, district string) bool {
	_, found := slices.BinarySearch(idx.districts[state], district)
	return found
}

// Filter returns the records of a state/district pair in dataset order.
func (idx *LocationIndex) Filter(state, district string) ([]RainfallRecord, error) {
	if _, err := idx.Districts(state); err != nil {
		return nil, err
	}
	if !idx.Contains(state, district) {
		return nil, &LocationError{State: state, District: district}
	}

	var out []RainfallRecord
	for _, r := range idx.records {
		if r.State == state && r.District == district {
			out = append(out, r)
		}
	}
	return out, nil
}

// StateOf returns the state a district was last recorded under.
func (idx *LocationIndex) StateOf(district string) (string, bool) {
	s, ok := idx.stateOf[district]
	return s, ok
}

// Conflicts lists districts observed under more than one state, sorted by district.
func (idx *LocationIndex) Conflicts() []DistrictConflict {
	return slices.Clone(idx.conflicts)
}

// Years returns the distinct years present in the dataset, ascending.
func (idx *LocationIndex) Years() []int {
	set := make(map[int]struct{})
	for _, r := range idx.records {
		if r.HasYear {
			set[r.Year] = struct{}{}
		}
		for y := range r.Yearly {
			set[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Len returns the number of records in the snapshot.
func (idx *LocationIndex) Len() int {
	return len(idx.records)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
