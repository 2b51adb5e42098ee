package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from views, Series and CrossTabs
// ============================================================================

// incidentColumns are the columns of the incident list, in display order.
var incidentColumns = []struct {
	Column
	value func(Incident) string
}{
	{Column{Key: "year", Label: "Year", Type: "number", Align: "right"}, func(i Incident) string { return nullIntText(i.Year, "") }},
	{Column{Key: "month", Label: "Month", Type: "number", Align: "right"}, func(i Incident) string { return nullIntText(i.Month, "") }},
	{Column{Key: "day", Label: "Day", Type: "number", Align: "right"}, func(i Incident) string { return nullIntText(i.Day, "") }},
	{Column{Key: "day_of_week", Label: "Day Of Week", Type: "text", Align: "left"}, func(i Incident) string { return i.DayOfWeek }},
	{Column{Key: "state", Label: "State", Type: "text", Align: "left"}, func(i Incident) string { return i.State }},
	{Column{Key: "location", Label: "Location", Type: "text", Align: "left"}, func(i Incident) string { return i.Location }},
	{Column{Key: "latitude", Label: "Latitude", Type: "number", Align: "right"}, func(i Incident) string { return nullFloatText(i.Latitude) }},
	{Column{Key: "longitude", Label: "Longitude", Type: "number", Align: "right"}, func(i Incident) string { return nullFloatText(i.Longitude) }},
	{Column{Key: "shark_name", Label: "Shark", Type: "text", Align: "left"}, func(i Incident) string { return i.SharkName }},
	{Column{Key: "activity", Label: "Activity", Type: "text", Align: "left"}, func(i Incident) string { return i.Activity }},
	{Column{Key: "provocation", Label: "Provocation", Type: "text", Align: "left"}, func(i Incident) string { return i.Provocation }},
	{Column{Key: "injury", Label: "Injury", Type: "text", Align: "left"}, func(i Incident) string { return i.Injury }},
	{Column{Key: "gender", Label: "Gender", Type: "text", Align: "left"}, func(i Incident) string { return i.Gender }},
	{Column{Key: "age", Label: "Age", Type: "number", Align: "right"}, func(i Incident) string { return nullFloatText(i.Age) }},
	{Column{Key: "age_bracket", Label: "Age Group", Type: "text", Align: "left"}, func(i Incident) string { return i.AgeBracket }},
	{Column{Key: "incident_time", Label: "Time", Type: "text", Align: "left"}, func(i Incident) string { return i.IncidentTime }},
	{Column{Key: "time_of_day", Label: "Time Period", Type: "text", Align: "left"}, func(i Incident) string { return i.TimeOfDay }},
}

// ============================================================================
// LIST TABLE — Row per incident
// ============================================================================

// BuildIncidentTable lists every incident of a view, one row each.
func BuildIncidentTable(view View) *TableData {
	columns := make([]Column, len(incidentColumns))
	for i, c := range incidentColumns {
		columns[i] = c.Column
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		inc := view.At(i)
		row := make([]string, len(incidentColumns))
		for ci, c := range incidentColumns {
			row[ci] = c.value(inc)
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   "Incidents",
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label:  fmt.Sprintf("Total (%s records)", FormatInt(view.Len())),
			Values: map[string]string{},
		},
	}
}

// ============================================================================
// AGGREGATED TABLES — Summary rows
// ============================================================================

// BuildSeriesTable renders a series as label/value rows.
func BuildSeriesTable(s Series) *TableData {
	columns := []Column{
		{Key: "label", Label: LabelForDimension(s.Dimension), Type: "text", Align: "left"},
		{Key: "value", Label: LabelForMode(s.Mode), Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(s.Points))
	for _, p := range s.Points {
		rows = append(rows, []string{p.Label, FormatValue(p.Value, s.Mode)})
	}

	return &TableData{
		Title:   s.Title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"value": FormatValue(s.Total(), s.Mode),
			},
		},
	}
}

// BuildCrossTabTable renders a cross-tab with one column per cross-tab column.
func BuildCrossTabTable(ct CrossTab) *TableData {
	columns := make([]Column, 0, len(ct.Columns)+1)
	columns = append(columns, Column{Key: "row", Label: ct.RowLabel, Type: "text", Align: "left"})
	for _, c := range ct.Columns {
		columns = append(columns, Column{Key: c, Label: c, Type: "number", Align: "right"})
	}

	totals := make([]float64, len(ct.Columns))
	rows := make([][]string, 0, len(ct.Rows))
	for ri, label := range ct.Rows {
		row := make([]string, 0, len(ct.Columns)+1)
		row = append(row, label)
		for ci, v := range ct.Cells[ri] {
			row = append(row, FormatValue(v, ModeCount))
			totals[ci] += v
		}
		rows = append(rows, row)
	}

	values := make(map[string]string, len(ct.Columns))
	for ci, c := range ct.Columns {
		values[c] = FormatValue(totals[ci], ModeCount)
	}

	return &TableData{
		Title:   ct.Title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{Label: "Total", Values: values},
	}
}

// FormatValue renders counts as integers and percentages with 1 decimal.
func FormatValue(v float64, mode Mode) string {
	if mode == ModePercent {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func nullFloatText(n NullFloat) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float, 'f', -1, 64)
}
