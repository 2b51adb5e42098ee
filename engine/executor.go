package engine

import (
	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR — FilterState → Dashboard
// ============================================================================
// Entry point: Execute(view, filters, opts...)
//
// Pipeline:
//   1. Apply filters → SubView (zero-copy)
//   2. Facts over the subset
//   3. Every distribution and cross-tabulation over the subset
//   4. Map points for incidents with coordinates
//
// The aggregates are independent of one another and only read the subset.
// An empty subset is not an error: it produces zeroed series and sentinel facts.
// ============================================================================

// Execute filters view and computes everything the dashboard renders.
//
// Options:
//   - WithTopActivities(n), WithTopSpecies(n) — top-N truncation
//   - WithTopStreamSpecies(n), WithTopActivityProvocations(n) — cross-tab sizes
//   - WithLogger(l) — debug logging
func Execute(view View, filters FilterState, opts ...Option) *Dashboard {
	cfg := applyOptions(opts)
	log := cfg.Logger

	filtered := ApplyFilters(view, filters)
	log.Debug("filters applied",
		zap.Int("total", view.Len()),
		zap.Int("matched", filtered.Len()),
		zap.Bool("unrestricted", filters.IsEmpty()),
	)

	d := &Dashboard{
		Filters: filters,
		Total:   view.Len(),
		Matched: filtered.Len(),
		Facts:   ComputeFacts(filtered),
		Series: []Series{
			AggregateByState(filtered, ModeCount),
			AggregateByYear(filtered),
			AggregateByActivity(filtered, ModePercent, cfg.TopActivities),
			AggregateBySpecies(filtered, ModeCount, cfg.TopSpecies),
			AggregateByHour(filtered),
			AggregateByMonth(filtered),
			AggregateByDay(filtered),
			AggregateByAge(filtered),
		},
		CrossTabs: []CrossTab{
			GenderProvocationByAge(filtered),
			SpeciesOverTime(filtered, cfg.TopStreamSpecies),
			ActivityByProvocation(filtered, cfg.TopActivityProvocations),
		},
		MapPoints: MapPoints(filtered),
		View:      filtered,
	}

	log.Debug("dashboard computed",
		zap.Int("series", len(d.Series)),
		zap.Int("crosstabs", len(d.CrossTabs)),
		zap.Int("map_points", len(d.MapPoints)),
	)
	return d
}

// MapPoints returns one point per incident with both coordinates present,
// coloured by state.
func MapPoints(view View) []MapPoint {
	points := make([]MapPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		inc := view.At(i)
		if !inc.Latitude.Valid || !inc.Longitude.Valid {
			continue
		}
		summary := inc.DisplaySummary
		if summary == "" {
			summary = DisplaySummary(inc)
		}
		points = append(points, MapPoint{
			Latitude:  inc.Latitude.Float,
			Longitude: inc.Longitude.Float,
			State:     StateCode(inc.State),
			Color:     StateColor(inc.State),
			Summary:   summary,
		})
	}
	return points
}

// ============================================================================
// FILTER NORMALIZATION
// ============================================================================

// NormalizeFilters canonicalizes state aliases to short codes and removes
// duplicate values. The normalized state selects exactly the same subset.
func NormalizeFilters(f FilterState) FilterState {
	if len(f.States) > 0 {
		codes := make([]string, len(f.States))
		for i, s := range f.States {
			codes[i] = StateCode(s)
		}
		f.States = dedupe(codes)
	}
	f.SelectedDays = dedupe(f.SelectedDays)
	f.SelectedGenders = dedupe(f.SelectedGenders)
	f.SelectedActivities = dedupe(f.SelectedActivities)
	f.SelectedTimePeriods = dedupe(f.SelectedTimePeriods)
	f.SelectedSharks = dedupe(f.SelectedSharks)
	f.SelectedInjuries = dedupe(f.SelectedInjuries)

	if len(f.SelectedMonths) > 0 {
		seen := make(map[int]bool, len(f.SelectedMonths))
		months := make([]int, 0, len(f.SelectedMonths))
		for _, m := range f.SelectedMonths {
			if !seen[m] {
				seen[m] = true
				months = append(months, m)
			}
		}
		f.SelectedMonths = months
	}
	return f
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
