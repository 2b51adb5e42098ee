package engine

// ============================================================================
// FACTS — single-valued summaries of a subset
// ============================================================================

// ComputeFacts returns the count, year span and modal values of a view.
// A modal value that cannot be computed (empty subset or all missing) is
// NotAvailable; ties resolve to the lexicographically smallest value.
func ComputeFacts(view View) Facts {
	f := Facts{
		TotalCount:      view.Len(),
		ModalState:      Modal(view, "state"),
		ModalSpecies:    Modal(view, "species"),
		ModalTimePeriod: Modal(view, "time_of_day"),
	}

	for i := 0; i < view.Len(); i++ {
		y := view.At(i).Year
		if !y.Valid {
			continue
		}
		if !f.YearSpan.Min.Valid || y.Int < f.YearSpan.Min.Int {
			f.YearSpan.Min = y
		}
		if !f.YearSpan.Max.Valid || y.Int > f.YearSpan.Max.Int {
			f.YearSpan.Max = y
		}
	}
	return f
}

// Modal returns the most frequent non-missing value of a dimension.
func Modal(view View, dimension string) string {
	dim, ok := LookupDimension(dimension)
	if !ok {
		return NotAvailable
	}

	counts := make(map[string]int)
	for i := 0; i < view.Len(); i++ {
		if v := dim(view.At(i)); v != "" {
			counts[v]++
		}
	}

	best, bestCount := NotAvailable, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}
