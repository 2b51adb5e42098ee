package engine

import (
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// DIMENSIONS — named categorical accessors over Incident
// ============================================================================
// Registered once; the generic group-by and the filter vocabulary read
// incidents through these. An empty string is a missing value.
// ============================================================================

// Dimension extracts one categorical value from an incident.
type Dimension func(Incident) string

var dimensions = map[string]Dimension{
	"state":       func(inc Incident) string { return StateCode(inc.State) },
	"activity":    func(inc Incident) string { return inc.Activity },
	"species":     func(inc Incident) string { return inc.SharkName },
	"injury":      func(inc Incident) string { return strings.ToLower(inc.Injury) },
	"gender":      func(inc Incident) string { return normalize(inc.Gender) },
	"provocation": func(inc Incident) string { return normalize(inc.Provocation) },
	"time_of_day": func(inc Incident) string { return inc.TimeOfDay },
	"day_of_week": func(inc Incident) string { return inc.DayOfWeek },
	"age_bracket": func(inc Incident) string { return inc.AgeBracket },
	"year":        func(inc Incident) string { return nullIntText(inc.Year, "") },
	"month": func(inc Incident) string {
		if !inc.Month.Valid || inc.Month.Int < 1 || inc.Month.Int > 12 {
			return ""
		}
		return MonthNames[inc.Month.Int-1]
	},
}

// LookupDimension returns the accessor registered for key.
func LookupDimension(key string) (Dimension, bool) {
	d, ok := dimensions[key]
	return d, ok
}

// DimensionKeys returns every registered dimension key, sorted.
func DimensionKeys() []string {
	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// FILTER VOCABULARY — values to populate the UI checklists
// ============================================================================

// FilterOptions lists the selectable values for each filter control.
type FilterOptions struct {
	States      []string `json:"states"`
	Days        []string `json:"days"`
	Months      []int    `json:"months"`
	Genders     []string `json:"genders"`
	Activities  []string `json:"activities"`
	TimePeriods []string `json:"timePeriods"`
	Sharks      []string `json:"sharks"`
	Injuries    []string `json:"injuries"`
	YearBounds  Range    `json:"yearBounds"`
	AgeBounds   Range    `json:"ageBounds"`
}

// Default slider bounds when the view has no data for a dimension.
var (
	DefaultYearBounds = Range{Lo: 1900, Hi: 2024}
	DefaultAgeBounds  = Range{Lo: 0, Hi: 90}
)

// Options collects the filter vocabulary of a view. Fixed vocabularies
// (days, months, periods) are returned in full; free ones are sorted.
func Options(view View) FilterOptions {
	opts := FilterOptions{
		Days:        append([]string(nil), DayNames...),
		TimePeriods: append([]string(nil), TimePeriods...),
		Months:      []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		States:      UniqueValues(view, "state"),
		Genders:     UniqueValues(view, "gender"),
		Activities:  UniqueValues(view, "activity"),
		Sharks:      UniqueValues(view, "species"),
		Injuries:    UniqueValues(view, "injury"),
		YearBounds:  DefaultYearBounds,
		AgeBounds:   DefaultAgeBounds,
	}
	for _, vals := range [][]string{opts.States, opts.Genders, opts.Activities, opts.Sharks, opts.Injuries} {
		sort.Strings(vals)
	}

	var years, ages []float64
	for i := 0; i < view.Len(); i++ {
		inc := view.At(i)
		if inc.Year.Valid {
			years = append(years, float64(inc.Year.Int))
		}
		if inc.Age.Valid {
			ages = append(ages, inc.Age.Float)
		}
	}
	if r, ok := bounds(years); ok {
		opts.YearBounds = r
	}
	if r, ok := bounds(ages); ok {
		opts.AgeBounds = r
	}
	return opts
}

// UniqueValues returns distinct non-missing values for a dimension, in
// first-seen order.
func UniqueValues(view View, dimension string) []string {
	dim, ok := LookupDimension(dimension)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	result := []string{}
	for i := 0; i < view.Len(); i++ {
		val := dim(view.At(i))
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

func bounds(vals []float64) (Range, bool) {
	if len(vals) == 0 {
		return Range{}, false
	}
	r := Range{Lo: vals[0], Hi: vals[0]}
	for _, v := range vals[1:] {
		if v < r.Lo {
			r.Lo = v
		}
		if v > r.Hi {
			r.Hi = v
		}
	}
	return r, true
}

// yearLabel renders a year bucket key.
func yearLabel(y int) string { return strconv.Itoa(y) }
