package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/spektr-org/sharkscope/engine"
	"github.com/spektr-org/sharkscope/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into []engine.Incident
// ============================================================================
// Headers are matched through the schema; a missing required column fails the
// load. Individual cells never do: anything unparsable becomes a missing
// value and is counted in the LoadReport.
// ============================================================================

// LoadReport summarises one CSV load.
type LoadReport struct {
	Rows          int            `json:"rows"`
	MalformedRows int            `json:"malformedRows"`
	Unmapped      []string       `json:"unmapped,omitempty"`
	FieldErrors   map[string]int `json:"fieldErrors,omitempty"` // column key → cells degraded to missing
}

func (r *LoadReport) fieldError(key string) {
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]int)
	}
	r.FieldErrors[key]++
}

// ParseCSV parses CSV bytes into raw incidents using the schema for header
// mapping. Derived fields are left empty; engine.NewDataset fills them.
func ParseCSV(data []byte, sch schema.Config) ([]engine.Incident, *LoadReport, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	// Read header
	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	hm, err := schema.MapHeaders(headers, sch)
	if err != nil {
		return nil, nil, err
	}

	report := &LoadReport{Unmapped: hm.Unmapped()}
	p := rowParser{hm: hm, report: report}

	// Read rows
	var incidents []engine.Incident
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.MalformedRows++
			continue // skip malformed rows
		}
		incidents = append(incidents, p.parse(row))
	}
	report.Rows = len(incidents)

	return incidents, report, nil
}

// ParseCSVView parses CSV into a derived, immutable Dataset.
func ParseCSVView(data []byte, sch schema.Config) (*engine.Dataset, *LoadReport, error) {
	incidents, report, err := ParseCSV(data, sch)
	if err != nil {
		return nil, nil, err
	}
	return engine.NewDataset(incidents), report, nil
}

// LoadFile reads and parses the incident CSV at path. A nil logger is
// replaced by a no-op logger.
func LoadFile(path string, sch schema.Config, log *zap.Logger) (*engine.Dataset, *LoadReport, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read incident file: %w", err)
	}

	ds, report, err := ParseCSVView(data, sch)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	keys := make([]string, 0, len(report.FieldErrors))
	for k := range report.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Debug("cells degraded to missing", zap.String("column", k), zap.Int("count", report.FieldErrors[k]))
	}

	log.Info("incidents loaded",
		zap.String("path", path),
		zap.Int("rows", report.Rows),
		zap.Int("malformed_rows", report.MalformedRows),
		zap.Strings("unmapped_columns", report.Unmapped),
	)
	return ds, report, nil
}

// ============================================================================
// ROW PARSING
// ============================================================================

type rowParser struct {
	hm     schema.HeaderMap
	report *LoadReport
}

func (p rowParser) parse(row []string) engine.Incident {
	return engine.Incident{
		Year:  p.intCell(row, "year"),
		Month: p.intCell(row, "month"),
		Day:   p.intCell(row, "day"),

		State:     p.strCell(row, "state"),
		Location:  p.strCell(row, "location"),
		Latitude:  p.coordCell(row, "latitude"),
		Longitude: p.coordCell(row, "longitude"),

		SharkName:       p.strCell(row, "shark_name"),
		SharkScientific: p.strCell(row, "shark_scientific"),

		Activity:       p.strCell(row, "activity"),
		Provocation:    p.strCell(row, "provocation"),
		Injury:         p.strCell(row, "injury"),
		InjuryLocation: p.strCell(row, "injury_location"),

		Gender:       p.strCell(row, "gender"),
		Age:          p.floatCell(row, "age"),
		IncidentTime: p.strCell(row, "incident_time"),
	}
}

func (p rowParser) strCell(row []string, key string) string {
	v := p.hm.Cell(row, key)
	if schema.IsNull(v) {
		return ""
	}
	return v
}

func (p rowParser) intCell(row []string, key string) engine.NullInt {
	v := p.hm.Cell(row, key)
	if schema.IsNull(v) {
		return engine.NullInt{}
	}
	n, ok := schema.ParseInt(v)
	if !ok {
		p.report.fieldError(key)
		return engine.NullInt{}
	}
	return engine.Int(n)
}

func (p rowParser) floatCell(row []string, key string) engine.NullFloat {
	v := p.hm.Cell(row, key)
	if schema.IsNull(v) {
		return engine.NullFloat{}
	}
	f, ok := schema.ParseFloat(v)
	if !ok {
		p.report.fieldError(key)
		return engine.NullFloat{}
	}
	return engine.Float(f)
}

func (p rowParser) coordCell(row []string, key string) engine.NullFloat {
	v := p.hm.Cell(row, key)
	if schema.IsNull(v) {
		return engine.NullFloat{}
	}
	c := engine.CleanCoordinate(v)
	if !c.Valid {
		p.report.fieldError(key)
	}
	return c
}
