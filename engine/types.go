package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// SHARKSCOPE ENGINE TYPES
// ============================================================================
// Incident      — one recorded shark-human encounter (raw + derived fields)
// FilterState   — the active user constraints, one optional field per dimension
// Series        — an ordered label → value distribution
// CrossTab      — a row × column matrix of counts
// Facts         — single-valued summary of a subset
// Dashboard     — everything the UI needs for one FilterState
// ============================================================================

// ============================================================================
// NULLABLE NUMERICS
// ============================================================================

// NullInt is an integer that may be missing from the source table.
type NullInt struct {
	Int   int
	Valid bool
}

// Int returns a valid NullInt.
func Int(v int) NullInt { return NullInt{Int: v, Valid: true} }

// MarshalJSON encodes a missing value as null.
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Int)), nil
}

// UnmarshalJSON decodes null as a missing value.
func (n *NullInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*n = NullInt{}
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Int(v)
	return nil
}

// NullFloat is a float that may be missing from the source table.
type NullFloat struct {
	Float float64
	Valid bool
}

// Float returns a valid NullFloat.
func Float(v float64) NullFloat { return NullFloat{Float: v, Valid: true} }

// MarshalJSON encodes a missing value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Float, 'f', -1, 64)), nil
}

// UnmarshalJSON decodes null as a missing value.
func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// ============================================================================
// INCIDENT — one row of the resident table
// ============================================================================

// Incident is a single recorded encounter. Empty strings are missing values.
//
// The derived block is owned by Derive and is recomputed from the raw block;
// nothing else writes to it.
type Incident struct {
	Year  NullInt `json:"year"`
	Month NullInt `json:"month"`
	Day   NullInt `json:"day"`

	State     string    `json:"state"`
	Location  string    `json:"location,omitempty"`
	Latitude  NullFloat `json:"latitude"`
	Longitude NullFloat `json:"longitude"`

	SharkName       string `json:"sharkName"`
	SharkScientific string `json:"sharkScientific,omitempty"`

	Activity       string `json:"activity"`
	Provocation    string `json:"provocation"`
	Injury         string `json:"injury"`
	InjuryLocation string `json:"injuryLocation,omitempty"`

	Gender       string    `json:"gender"`
	Age          NullFloat `json:"age"`
	IncidentTime string    `json:"incidentTime"`

	// Derived
	DayOfWeek      string `json:"dayOfWeek"`
	TimeOfDay      string `json:"timeOfDay"`
	AgeBracket     string `json:"ageBracket"`
	DisplaySummary string `json:"displaySummary"`
}

// ============================================================================
// FILTER STATE — Contract between UI controller and engine
// ============================================================================

// Range is an inclusive [Lo, Hi] bound. Lo > Hi matches nothing.
type Range struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Contains reports whether lo <= v <= hi.
func (r Range) Contains(v float64) bool {
	return r.Lo <= v && v <= r.Hi
}

// UnmarshalJSON accepts both {"lo":0,"hi":30} and [0, 30].
func (r *Range) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(b, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("range needs exactly 2 bounds, got %d", len(pair))
		}
		r.Lo, r.Hi = pair[0], pair[1]
		return nil
	}
	type plain Range
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Range(p)
	return nil
}

// UnmarshalYAML accepts both {lo: 0, hi: 30} and [0, 30].
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("range needs exactly 2 bounds, got %d", len(pair))
		}
		r.Lo, r.Hi = pair[0], pair[1]
		return nil
	}
	type plain Range
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = Range(p)
	return nil
}

// FilterState holds the active constraints. A nil range or empty set means
// the dimension is unrestricted; active dimensions are AND-combined and a
// record with a missing value in an active dimension is excluded.
type FilterState struct {
	States              []string `json:"states,omitempty" yaml:"states"`
	AgeRange            *Range   `json:"age_range,omitempty" yaml:"age_range"`
	YearRange           *Range   `json:"year_range,omitempty" yaml:"year_range"`
	MonthRange          *Range   `json:"month_range,omitempty" yaml:"month_range"`
	DayRange            *Range   `json:"day_range,omitempty" yaml:"day_range"`
	SelectedDays        []string `json:"selected_days,omitempty" yaml:"selected_days"`
	SelectedGenders     []string `json:"selected_genders,omitempty" yaml:"selected_genders"`
	SelectedMonths      []int    `json:"selected_months,omitempty" yaml:"selected_months"`
	SelectedActivities  []string `json:"selected_activities,omitempty" yaml:"selected_activities"`
	SelectedTimePeriods []string `json:"selected_time_periods,omitempty" yaml:"selected_time_periods"`
	SelectedSharks      []string `json:"selected_sharks,omitempty" yaml:"selected_sharks"`
	SelectedInjuries    []string `json:"selected_injuries,omitempty" yaml:"selected_injuries"`
}

// IsEmpty returns true if no dimension is restricted.
func (f FilterState) IsEmpty() bool {
	return len(f.States) == 0 &&
		f.AgeRange == nil && f.YearRange == nil && f.MonthRange == nil && f.DayRange == nil &&
		len(f.SelectedDays) == 0 && len(f.SelectedGenders) == 0 && len(f.SelectedMonths) == 0 &&
		len(f.SelectedActivities) == 0 && len(f.SelectedTimePeriods) == 0 &&
		len(f.SelectedSharks) == 0 && len(f.SelectedInjuries) == 0
}

// ============================================================================
// AGGREGATE OUTPUT
// ============================================================================

// Mode selects raw counts or percentages of the contributing total.
type Mode string

const (
	ModeCount   Mode = "count"
	ModePercent Mode = "percent"
)

// ParseMode maps a query value to a Mode, defaulting to counts.
func ParseMode(s string) Mode {
	if Mode(s) == ModePercent {
		return ModePercent
	}
	return ModeCount
}

// Point is one label → value entry of a Series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered distribution over one dimension.
type Series struct {
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Dimension string  `json:"dimension"`
	Mode      Mode    `json:"mode"`
	Points    []Point `json:"points"`
}

// Labels returns the series labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Value returns the value for label, or false if absent.
func (s Series) Value(label string) (float64, bool) {
	for _, p := range s.Points {
		if p.Label == label {
			return p.Value, true
		}
	}
	return 0, false
}

// Total sums every point.
func (s Series) Total() float64 {
	var t float64
	for _, p := range s.Points {
		t += p.Value
	}
	return t
}

// CrossTab is a Rows × Columns matrix of raw counts.
type CrossTab struct {
	Name     string      `json:"name"`
	Title    string      `json:"title"`
	RowLabel string      `json:"rowLabel"`
	Rows     []string    `json:"rows"`
	Columns  []string    `json:"columns"`
	Cells    [][]float64 `json:"cells"`
}

// Cell returns the value at (row, column) by label.
func (c CrossTab) Cell(row, column string) (float64, bool) {
	ri, ci := indexOf(c.Rows, row), indexOf(c.Columns, column)
	if ri < 0 || ci < 0 {
		return 0, false
	}
	return c.Cells[ri][ci], true
}

// ============================================================================
// FACTS
// ============================================================================

// NotAvailable is reported for facts that cannot be computed from a subset.
const NotAvailable = "N/A"

// YearSpan is the earliest and latest year in a subset.
type YearSpan struct {
	Min NullInt `json:"min"`
	Max NullInt `json:"max"`
}

// String renders "1900 - 2024", or "null - null" when the span is undefined.
func (y YearSpan) String() string {
	return fmt.Sprintf("%s - %s", nullIntText(y.Min, "null"), nullIntText(y.Max, "null"))
}

// Facts are single-valued summaries of a subset.
type Facts struct {
	TotalCount      int      `json:"totalCount"`
	YearSpan        YearSpan `json:"yearSpan"`
	ModalState      string   `json:"modalState"`
	ModalSpecies    string   `json:"modalSpecies"`
	ModalTimePeriod string   `json:"modalTimePeriod"`
}

// ============================================================================
// MAP + DASHBOARD
// ============================================================================

// MapPoint is one plottable incident.
type MapPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	State     string  `json:"state"`
	Color     string  `json:"color"`
	Summary   string  `json:"summary"`
}

// Dashboard is the engine's render-ready output for one FilterState.
type Dashboard struct {
	Filters   FilterState `json:"filters"`
	Total     int         `json:"total"`
	Matched   int         `json:"matched"`
	Facts     Facts       `json:"facts"`
	Series    []Series    `json:"series"`
	CrossTabs []CrossTab  `json:"crossTabs"`
	MapPoints []MapPoint  `json:"mapPoints"`

	View View `json:"-"` // filtered subset, read-only
}

// Lookup returns the named series.
func (d *Dashboard) Lookup(name string) (Series, bool) {
	for _, s := range d.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// LookupCrossTab returns the named cross-tabulation.
func (d *Dashboard) LookupCrossTab(name string) (CrossTab, bool) {
	for _, c := range d.CrossTabs {
		if c.Name == name {
			return c, true
		}
	}
	return CrossTab{}, false
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group is one bucket of a grouped view. Builders convert these into Series.
type Group struct {
	Key   string
	Value float64
	Count int
	View  View // sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

func indexOf(items []string, v string) int {
	for i, s := range items {
		if s == v {
			return i
		}
	}
	return -1
}

func nullIntText(n NullInt, missing string) string {
	if !n.Valid {
		return missing
	}
	return strconv.Itoa(n.Int)
}
