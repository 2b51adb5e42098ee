package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Counting, Sorting and Zero-Fill via View
// ============================================================================
// All functions operate on View — zero-copy access to the filtered subset.
// Grouping produces SubViews (index lists into parent view).
//
// Rules shared by every distribution:
//   - percentages divide by the number of non-missing values that
//     contribute to the dimension, ×100, rounded to 1 decimal
//   - free-vocabulary dimensions sort by value descending; ties keep
//     first-seen order
//   - fixed-vocabulary dimensions always list the whole vocabulary in its
//     natural order, zero-filled; their percentages use largest-remainder
//     rounding so a non-empty subset sums to exactly 100.0
//   - an empty subset yields zeros (fixed) or an empty series (free)
// ============================================================================

// Series and cross-tab names used by the dashboard.
const (
	SeriesByState    = "by_state"
	SeriesByYear     = "by_year"
	SeriesByActivity = "by_activity"
	SeriesBySpecies  = "by_species"
	SeriesByHour     = "by_hour"
	SeriesByMonth    = "by_month"
	SeriesByDay      = "by_day"
	SeriesByAge      = "by_age"

	CrossTabGenderProvocationAge = "gender_provocation_age"
	CrossTabSpeciesOverTime      = "species_over_time"
	CrossTabActivityProvocation  = "activity_provocation"
)

// Cross-tab column labels.
var GenderProvocationColumns = []string{"Male_Provoked", "Male_Unprovoked", "Female_Provoked", "Female_Unprovoked"}

var ProvocationColumns = []string{"Provoked", "Unprovoked"}

// fixedVocab lists dimensions whose output always carries the full vocabulary.
var fixedVocab = map[string][]string{
	"month":       MonthNames,
	"day_of_week": DayNames,
	"age_bracket": AgeBrackets,
	"time_of_day": TimePeriods,
}

// ============================================================================
// GENERIC GROUP-BY
// ============================================================================

// GroupBy is the generic entry point used for ad hoc series.
// Pipeline: group → count → sort → limit → (percent).
// Fixed-vocabulary dimensions ignore limit and are zero-filled; "year" sorts
// chronologically; everything else sorts by value descending.
func GroupBy(view View, dimension string, mode Mode, limit int) (Series, error) {
	dim, ok := LookupDimension(dimension)
	if !ok {
		return Series{}, fmt.Errorf("unknown dimension %q", dimension)
	}

	s := Series{
		Name:      "by_" + dimension,
		Title:     "Incidents by " + LabelForDimension(dimension),
		Dimension: dimension,
		Mode:      mode,
	}

	if vocab, fixed := fixedVocab[dimension]; fixed {
		s.Points = vocabularyPoints(view, vocab, dim, mode)
		return s, nil
	}

	groups := groupBySingle(view, dim)
	total := groupTotal(groups)
	if dimension == "year" {
		SortGroups(groups, "label_numeric_asc")
	} else {
		SortGroups(groups, "value_desc")
	}
	groups = limitGroups(groups, limit)
	s.Points = groupPoints(groups, total, mode)
	return s, nil
}

// ============================================================================
// NAMED DISTRIBUTIONS
// ============================================================================

// AggregateByState counts incidents per state code, descending.
func AggregateByState(view View, mode Mode) Series {
	return freeSeries(view, SeriesByState, "Attacks by State", "state", mode, 0)
}

// AggregateByActivity returns the topN activities, descending.
func AggregateByActivity(view View, mode Mode, topN int) Series {
	return freeSeries(view, SeriesByActivity, "Top Activities", "activity", mode, topN)
}

// AggregateBySpecies returns the topN shark species, descending.
func AggregateBySpecies(view View, mode Mode, topN int) Series {
	return freeSeries(view, SeriesBySpecies, "Top Shark Species", "species", mode, topN)
}

// AggregateByYear counts incidents per year in chronological order.
func AggregateByYear(view View) Series {
	dim := dimensions["year"]
	groups := groupBySingle(view, dim)
	SortGroups(groups, "label_numeric_asc")
	return Series{
		Name:      SeriesByYear,
		Title:     "Yearly Trend of Attacks",
		Dimension: "year",
		Mode:      ModeCount,
		Points:    groupPoints(groups, groupTotal(groups), ModeCount),
	}
}

// AggregateByMonth returns the percentage per calendar month, all 12 present.
func AggregateByMonth(view View) Series {
	return Series{
		Name:      SeriesByMonth,
		Title:     "Monthly Distribution",
		Dimension: "month",
		Mode:      ModePercent,
		Points:    vocabularyPoints(view, MonthNames, dimensions["month"], ModePercent),
	}
}

// AggregateByDay returns the percentage per weekday, Monday → Sunday.
func AggregateByDay(view View) Series {
	return Series{
		Name:      SeriesByDay,
		Title:     "Attacks by Day of Week",
		Dimension: "day_of_week",
		Mode:      ModePercent,
		Points:    vocabularyPoints(view, DayNames, dimensions["day_of_week"], ModePercent),
	}
}

// AggregateByAge returns the percentage per age bracket, "Unknown" included.
func AggregateByAge(view View) Series {
	return Series{
		Name:      SeriesByAge,
		Title:     "Attacks by Age Group",
		Dimension: "age_bracket",
		Mode:      ModePercent,
		Points:    vocabularyPoints(view, AgeBrackets, dimensions["age_bracket"], ModePercent),
	}
}

// AggregateByHour returns the percentage per hour-of-day bucket. Times that
// do not parse to an hour in 0–23 are left out of numerator and denominator.
func AggregateByHour(view View) Series {
	hour := func(inc Incident) string {
		h, ok := HourOf(inc.IncidentTime)
		if !ok {
			return ""
		}
		return HourLabels[h]
	}
	return Series{
		Name:      SeriesByHour,
		Title:     "Attacks by Hour of Day",
		Dimension: "hour",
		Mode:      ModePercent,
		Points:    vocabularyPoints(view, HourLabels, hour, ModePercent),
	}
}

// ============================================================================
// CROSS-TABULATIONS
// ============================================================================

// GenderProvocationByAge counts incidents per age bracket split into
// Male/Female × Provoked/Unprovoked. Other genders and provocations are skipped.
func GenderProvocationByAge(view View) CrossTab {
	ct := newCrossTab(CrossTabGenderProvocationAge, "Attacks by Age, Gender and Provocation", "Age Group",
		AgeBrackets, GenderProvocationColumns)

	for i := 0; i < view.Len(); i++ {
		inc := view.At(i)
		col := -1
		switch normalize(inc.Gender) {
		case Male:
			col = 0
		case Female:
			col = 2
		default:
			continue
		}
		switch normalize(inc.Provocation) {
		case Provoked:
		case Unprovoked:
			col++
		default:
			continue
		}
		row := indexOf(AgeBrackets, inc.AgeBracket)
		if row < 0 {
			row = indexOf(AgeBrackets, AgeBracket(inc.Age))
		}
		ct.Cells[row][col]++
	}
	return ct
}

// SpeciesOverTime pivots yearly counts for the topN most frequent species
// into a year × species matrix. Years ascend; species keep their rank order.
func SpeciesOverTime(view View, topN int) CrossTab {
	species := groupBySingle(view, dimensions["species"])
	SortGroups(species, "value_desc")
	species = limitGroups(species, topN)

	columns := make([]string, len(species))
	for i, g := range species {
		columns[i] = g.Key
	}

	yearSet := make(map[int]bool)
	perSpecies := make([]map[int]int, len(species))
	for si, g := range species {
		perSpecies[si] = make(map[int]int)
		for i := 0; i < g.View.Len(); i++ {
			y := g.View.At(i).Year
			if !y.Valid {
				continue
			}
			yearSet[y.Int] = true
			perSpecies[si][y.Int]++
		}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([]string, len(years))
	for i, y := range years {
		rows[i] = yearLabel(y)
	}

	ct := newCrossTab(CrossTabSpeciesOverTime, "Shark Species over Time", "Year", rows, columns)
	for ri, y := range years {
		for si := range species {
			ct.Cells[ri][si] = float64(perSpecies[si][y])
		}
	}
	return ct
}

// ActivityByProvocation counts provoked and unprovoked incidents per
// activity, keeping the topN activities by combined total.
func ActivityByProvocation(view View, topN int) CrossTab {
	groups := groupBySingle(view, dimensions["activity"])

	type row struct {
		activity   string
		provoked   int
		unprovoked int
	}
	rows := make([]row, 0, len(groups))
	for _, g := range groups {
		r := row{activity: g.Key}
		for i := 0; i < g.View.Len(); i++ {
			switch normalize(g.View.At(i).Provocation) {
			case Provoked:
				r.provoked++
			case Unprovoked:
				r.unprovoked++
			}
		}
		if r.provoked+r.unprovoked > 0 {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].provoked+rows[i].unprovoked > rows[j].provoked+rows[j].unprovoked
	})
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.activity
	}
	ct := newCrossTab(CrossTabActivityProvocation, "Activity by Provocation", "Activity", labels, ProvocationColumns)
	for i, r := range rows {
		ct.Cells[i][0] = float64(r.provoked)
		ct.Cells[i][1] = float64(r.unprovoked)
	}
	return ct
}

// ============================================================================
// GROUPING
// ============================================================================

// groupBySingle buckets a view by dimension value in first-seen order.
// Missing values are not grouped.
func groupBySingle(view View, dim Dimension) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := dim(view.At(i))
		if key == "" {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		idx := grouped[key]
		groups = append(groups, Group{
			Key:   key,
			Value: float64(len(idx)),
			Count: len(idx),
			View:  newSubView(view, idx),
		})
	}
	return groups
}

func freeSeries(view View, name, title, dimension string, mode Mode, topN int) Series {
	groups := groupBySingle(view, dimensions[dimension])
	total := groupTotal(groups)
	SortGroups(groups, "value_desc")
	groups = limitGroups(groups, topN)
	return Series{
		Name:      name,
		Title:     title,
		Dimension: dimension,
		Mode:      mode,
		Points:    groupPoints(groups, total, mode),
	}
}

// vocabularyPoints counts values that belong to vocab and emits every vocab
// entry in order. Values outside vocab contribute to nothing.
func vocabularyPoints(view View, vocab []string, dim Dimension, mode Mode) []Point {
	counts := make(map[string]int, len(vocab))
	for _, v := range vocab {
		counts[v] = 0
	}
	total := 0
	for i := 0; i < view.Len(); i++ {
		key := dim(view.At(i))
		if _, ok := counts[key]; !ok {
			continue
		}
		counts[key]++
		total++
	}

	points := make([]Point, len(vocab))
	if mode == ModePercent {
		ordered := make([]int, len(vocab))
		for i, v := range vocab {
			ordered[i] = counts[v]
		}
		for i, pct := range largestRemainder(ordered, total) {
			points[i] = Point{Label: vocab[i], Value: pct}
		}
		return points
	}
	for i, v := range vocab {
		points[i] = Point{Label: v, Value: float64(counts[v])}
	}
	return points
}

// largestRemainder converts counts to percentages with 1 decimal that sum to
// exactly 100.0. Each share is floored to a tenth; the leftover tenths go to
// the largest remainders, ties in input order. A zero total yields zeros.
func largestRemainder(counts []int, total int) []float64 {
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}

	tenths := make([]int, len(counts))
	rems := make([]int, len(counts))
	order := make([]int, len(counts))
	left := 1000
	for i, c := range counts {
		tenths[i] = c * 1000 / total
		rems[i] = c * 1000 % total
		order[i] = i
		left -= tenths[i]
	}
	sort.SliceStable(order, func(a, b int) bool { return rems[order[a]] > rems[order[b]] })
	for _, i := range order[:left] {
		tenths[i]++
	}

	for i, t := range tenths {
		out[i] = float64(t) / 10
	}
	return out
}

func groupPoints(groups []Group, total int, mode Mode) []Point {
	points := make([]Point, len(groups))
	for i, g := range groups {
		points[i] = Point{Label: g.Key, Value: valueFor(g.Count, total, mode)}
	}
	return points
}

func groupTotal(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total
}

func limitGroups(groups []Group, limit int) []Group {
	if limit > 0 && len(groups) > limit {
		return groups[:limit]
	}
	return groups
}

func newCrossTab(name, title, rowLabel string, rows, columns []string) CrossTab {
	cells := make([][]float64, len(rows))
	for i := range cells {
		cells[i] = make([]float64, len(columns))
	}
	return CrossTab{
		Name:     name,
		Title:    title,
		RowLabel: rowLabel,
		Rows:     rows,
		Columns:  columns,
		Cells:    cells,
	}
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts groups in place. All modes are stable, so ties keep their
// grouping (first-seen) order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "label_numeric_asc":
		sort.SliceStable(groups, func(i, j int) bool { return numericKey(groups[i].Key) < numericKey(groups[j].Key) })
	case "label_asc", "alpha_asc":
		sort.SliceStable(groups, func(i, j int) bool { return strings.ToLower(groups[i].Key) < strings.ToLower(groups[j].Key) })
	default:
		// preserve grouping order
	}
}

func numericKey(key string) float64 {
	v, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// Percent returns part/total×100 rounded to 1 decimal, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return RoundTo1(float64(part) / float64(total) * 100)
}

func valueFor(count, total int, mode Mode) float64 {
	if mode == ModePercent {
		return Percent(count, total)
	}
	return float64(count)
}

// RoundTo1 rounds to 1 decimal place.
func RoundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// LabelForDimension returns a display label for a dimension key.
// "day_of_week" → "Day Of Week"
func LabelForDimension(dimension string) string {
	words := strings.Fields(strings.ReplaceAll(dimension, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// LabelForMode returns the axis label for a mode.
func LabelForMode(mode Mode) string {
	if mode == ModePercent {
		return "Percentage"
	}
	return "Count"
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
