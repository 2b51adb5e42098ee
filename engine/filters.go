package engine

// ============================================================================
// FILTERS — Conjunctive FilterState Evaluation via View
// ============================================================================
// Single-pass filter: checks ALL active predicates per record in one loop.
// Returns a SubView (index list into parent) in parent order — zero data copy.
// Predicates are independent, so their order never changes the result.
// ============================================================================

// predicate reports whether an incident satisfies one active dimension.
type predicate func(inc *Incident) bool

// ApplyFilters returns a view of incidents matching every active dimension.
// Dimensions are AND-combined; values within a dimension are OR-combined.
// Empty FilterState = no restriction (returns original view).
func ApplyFilters(view View, filters FilterState) View {
	if filters.IsEmpty() {
		return view
	}

	preds := buildPredicates(filters)

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		inc := view.At(i)
		pass := true
		for _, p := range preds {
			if !p(&inc) {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// buildPredicates pre-builds lookup sets for every active dimension.
func buildPredicates(f FilterState) []predicate {
	var preds []predicate

	if len(f.States) > 0 {
		codes := make(map[string]bool, len(f.States))
		for _, s := range f.States {
			codes[StateCode(s)] = true
		}
		preds = append(preds, func(inc *Incident) bool {
			code := StateCode(inc.State)
			return code != "" && codes[code]
		})
	}

	if r := f.AgeRange; r != nil {
		preds = append(preds, func(inc *Incident) bool {
			return inc.Age.Valid && r.Contains(inc.Age.Float)
		})
	}
	if r := f.YearRange; r != nil {
		preds = append(preds, intRange(r, func(inc *Incident) NullInt { return inc.Year }))
	}
	if r := f.MonthRange; r != nil {
		preds = append(preds, intRange(r, func(inc *Incident) NullInt { return inc.Month }))
	}
	if r := f.DayRange; r != nil {
		preds = append(preds, intRange(r, func(inc *Incident) NullInt { return inc.Day }))
	}

	if len(f.SelectedMonths) > 0 {
		months := make(map[int]bool, len(f.SelectedMonths))
		for _, m := range f.SelectedMonths {
			months[m] = true
		}
		preds = append(preds, func(inc *Incident) bool {
			return inc.Month.Valid && months[inc.Month.Int]
		})
	}

	preds = appendSet(preds, f.SelectedDays, false, func(inc *Incident) string { return inc.DayOfWeek })
	preds = appendSet(preds, f.SelectedGenders, true, func(inc *Incident) string { return inc.Gender })
	preds = appendSet(preds, f.SelectedActivities, false, func(inc *Incident) string { return inc.Activity })
	preds = appendSet(preds, f.SelectedTimePeriods, false, func(inc *Incident) string { return inc.TimeOfDay })
	preds = appendSet(preds, f.SelectedSharks, false, func(inc *Incident) string { return inc.SharkName })
	preds = appendSet(preds, f.SelectedInjuries, true, func(inc *Incident) string { return inc.Injury })

	return preds
}

func intRange(r *Range, field func(*Incident) NullInt) predicate {
	return func(inc *Incident) bool {
		v := field(inc)
		return v.Valid && r.Contains(float64(v.Int))
	}
}

// appendSet adds a membership predicate when allowed is non-empty.
// foldCase compares trimmed, lowercased values on both sides.
func appendSet(preds []predicate, allowed []string, foldCase bool, field func(*Incident) string) []predicate {
	if len(allowed) == 0 {
		return preds
	}
	set := toSet(allowed, foldCase)
	return append(preds, func(inc *Incident) bool {
		v := field(inc)
		if v == "" {
			return false
		}
		if foldCase {
			v = normalize(v)
		}
		return set[v]
	})
}

// toSet converts a string slice to a lookup set.
func toSet(items []string, lower bool) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if lower {
			item = normalize(item)
		}
		set[item] = true
	}
	return set
}
