package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/sharkscope/engine"
)

// ============================================================================
// EXPORT HELPER — Dashboard → Sheets/Excel-ready files
// ============================================================================

// ============================================================================
// CSV
// ============================================================================

// WriteTableCSV writes a table as CSV: one header row of column labels, then
// the rows as rendered.
func WriteTableCSV(w io.Writer, table *engine.TableData) error {
	cw := csv.NewWriter(w)

	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChartCSV writes chart data as CSV. A single series becomes two
// columns; multiple series become a label column plus one column per series.
func WriteChartCSV(w io.Writer, chart *engine.ChartConfig) error {
	if chart == nil || len(chart.Series) == 0 {
		return fmt.Errorf("chart has no series")
	}
	cw := csv.NewWriter(w)

	xLabel, yLabel := chart.XAxis, chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	headers := []string{xLabel}
	if len(chart.Series) == 1 {
		headers = append(headers, yLabel)
	} else {
		for _, s := range chart.Series {
			headers = append(headers, s.Name)
		}
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ============================================================================
// XLSX
// ============================================================================

// sheetNameLimit is Excel's maximum sheet-name length.
const sheetNameLimit = 31

// WriteWorkbook writes a dashboard as an XLSX workbook with sheets for the
// quick facts, the matched incidents, every series and every cross-tab.
func WriteWorkbook(w io.Writer, d *engine.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	wb := workbook{f: f, headerStyle: headerStyle}

	facts := &engine.TableData{
		Title:   "Quick Facts",
		Columns: []engine.Column{{Key: "fact", Label: "Fact"}},
	}
	for _, line := range engine.BuildQuickFacts(d.Facts) {
		facts.Rows = append(facts.Rows, []string{line})
	}
	if err := wb.addSheet("Facts", facts); err != nil {
		return err
	}

	if d.View != nil {
		if err := wb.addSheet("Incidents", engine.BuildIncidentTable(d.View)); err != nil {
			return err
		}
	}
	for _, s := range d.Series {
		if err := wb.addSheet(s.Name, engine.BuildSeriesTable(s)); err != nil {
			return err
		}
	}
	for _, ct := range d.CrossTabs {
		if err := wb.addSheet(ct.Name, engine.BuildCrossTabTable(ct)); err != nil {
			return err
		}
	}

	// drop the default sheet created by NewFile
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type workbook struct {
	f           *excelize.File
	headerStyle int
}

// addSheet writes a table with a styled, frozen header row. Number columns
// are written as numbers so they sort and sum in Excel.
func (wb workbook) addSheet(name string, table *engine.TableData) error {
	if utf8.RuneCountInString(name) > sheetNameLimit {
		name = string([]rune(name)[:sheetNameLimit])
	}
	if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	widths := make([]int, len(table.Columns))
	for col, c := range table.Columns {
		if err := wb.setCell(name, col+1, 1, c.Label); err != nil {
			return err
		}
		widths[col] = utf8.RuneCountInString(c.Label)
	}
	if len(table.Columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(table.Columns), 1)
		if err := wb.f.SetCellStyle(name, first, last, wb.headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for r, row := range table.Rows {
		for col, val := range row {
			if val == "" {
				continue
			}
			var v any = val
			if col < len(table.Columns) && table.Columns[col].Type == "number" {
				if n, err := strconv.ParseFloat(val, 64); err == nil {
					v = n
				}
			}
			if err := wb.setCell(name, col+1, r+2, v); err != nil {
				return err
			}
			if col < len(widths) && utf8.RuneCountInString(val) > widths[col] {
				widths[col] = utf8.RuneCountInString(val)
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := wb.f.SetColWidth(name, col, col, float64(min(width+2, 60))); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// freeze the header row
	if err := wb.f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func (wb workbook) setCell(sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := wb.f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// fmtNum renders whole numbers without decimals and fractions with 1 decimal.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
