package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from Series and CrossTabs
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// chartTypes picks a rendering per named series; anything else is a bar.
var chartTypes = map[string]string{
	SeriesByYear:                 "line",
	SeriesBySpecies:              "pie",
	SeriesByAge:                  "bar",
	CrossTabGenderProvocationAge: "stacked_bar",
	CrossTabSpeciesOverTime:      "stream",
	CrossTabActivityProvocation:  "stacked_bar",
}

// BuildChart produces a ChartConfig for a series, or nil if it has no points.
func BuildChart(s Series) *ChartConfig {
	if len(s.Points) == 0 {
		return nil
	}

	chartType := chartTypes[s.Name]
	if chartType == "" {
		chartType = "bar"
	}

	points := make([]ChartPoint, 0, len(s.Points))
	for _, p := range s.Points {
		points = append(points, ChartPoint{Label: p.Label, Value: p.Value})
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      s.Title,
		XAxis:      LabelForDimension(s.Dimension),
		YAxis:      LabelForMode(s.Mode),
		Series:     []ChartSeries{{Name: s.Title, Data: points}},
		ShowLegend: chartType == "pie",
		ShowGrid:   chartType != "pie",
	}

	if s.Dimension == "state" {
		config.Colors = make([]string, len(s.Points))
		for i, p := range s.Points {
			config.Colors[i] = StateColor(p.Label)
		}
	} else {
		config.Colors = assignColors(len(s.Points))
	}
	return config
}

// BuildCrossTabChart produces a multi-series chart, one series per column.
// Returns nil if the cross-tab has no rows.
func BuildCrossTabChart(ct CrossTab) *ChartConfig {
	if len(ct.Rows) == 0 || len(ct.Columns) == 0 {
		return nil
	}

	chartType := chartTypes[ct.Name]
	if chartType == "" {
		chartType = "stacked_bar"
	}

	series := make([]ChartSeries, 0, len(ct.Columns))
	for ci, col := range ct.Columns {
		data := make([]ChartPoint, 0, len(ct.Rows))
		for ri, row := range ct.Rows {
			data = append(data, ChartPoint{Label: row, Value: ct.Cells[ri][ci]})
		}
		series = append(series, ChartSeries{
			Name:  col,
			Data:  data,
			Color: defaultColors[ci%len(defaultColors)],
		})
	}

	return &ChartConfig{
		ChartType:  chartType,
		Title:      ct.Title,
		XAxis:      ct.RowLabel,
		YAxis:      "Count",
		Series:     series,
		Colors:     assignColors(len(series)),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// BuildCharts renders every series and cross-tab of a dashboard, skipping
// the ones with nothing to draw.
func BuildCharts(d *Dashboard) []*ChartConfig {
	charts := make([]*ChartConfig, 0, len(d.Series)+len(d.CrossTabs))
	for _, s := range d.Series {
		if c := BuildChart(s); c != nil {
			charts = append(charts, c)
		}
	}
	for _, ct := range d.CrossTabs {
		if c := BuildCrossTabChart(ct); c != nil {
			charts = append(charts, c)
		}
	}
	return charts
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
