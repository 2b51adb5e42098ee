package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA — Describes the shape of the incident table
// ============================================================================
// The loader uses the schema to map CSV headers onto incident fields and to
// refuse a file that lacks any required column. Column keys are the
// snake_case form of the header ("SharkName" → "shark_name").
// ============================================================================

// ErrMissingColumns is returned when a source lacks required columns.
var ErrMissingColumns = errors.New("missing required columns")

// Kind is the parse rule applied to a column's cells.
type Kind string

const (
	KindString     Kind = "string"
	KindInt        Kind = "int"        // integers, "3.0" accepted
	KindFloat      Kind = "float"
	KindCoordinate Kind = "coordinate" // float after stripping everything but digits, '.' and '-'
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string       `json:"name"`
	Version     string       `json:"version,omitempty"`
	Description string       `json:"description,omitempty"`
	Columns     []ColumnMeta `json:"columns"`
}

// ColumnMeta describes one source column.
type ColumnMeta struct {
	Key         string `json:"key"`
	Header      string `json:"header"`
	DisplayName string `json:"displayName"`
	Kind        Kind   `json:"kind"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// column creates a ColumnMeta keyed by the snake_case form of header.
func column(header string, kind Kind, required bool, description string) ColumnMeta {
	key := toSnakeCase(header)
	return ColumnMeta{
		Key:         key,
		Header:      header,
		DisplayName: toDisplayName(key),
		Kind:        kind,
		Required:    required,
		Description: description,
	}
}

// Incidents returns the schema of the cleaned incident CSV.
func Incidents() Config {
	return Config{
		Name:        "Australian Shark Incidents",
		Version:     "1.0",
		Description: "One row per recorded shark-human encounter",
		Columns: []ColumnMeta{
			column("Year", KindInt, true, "Calendar year of the incident"),
			column("Status", KindString, false, ""),
			column("Provocation", KindString, false, "provoked or unprovoked"),
			column("Activity", KindString, true, "What the victim was doing"),
			column("Day", KindInt, false, "Day of month"),
			column("Month", KindInt, false, "Month number, 1-12"),
			column("Injury", KindString, true, "Injury outcome"),
			column("State", KindString, true, "Short code or long name"),
			column("Location", KindString, false, ""),
			column("Latitude", KindCoordinate, true, ""),
			column("Longitude", KindCoordinate, true, ""),
			column("SharkName", KindString, true, "Common name of the species"),
			column("SharkLength", KindFloat, false, ""),
			column("SharksCount", KindInt, false, ""),
			column("InjuryLocation", KindString, false, ""),
			column("Severity", KindString, false, ""),
			column("Gender", KindString, true, ""),
			column("Age", KindFloat, true, "Age in years"),
			column("IncidentTime", KindString, false, "HH:MM"),
			column("Latitude_timedb2", KindString, false, ""),
			column("SharkScientific", KindString, false, "Scientific name of the species"),
			column("TimeOfDay", KindString, false, "Source time-of-day label, superseded by the derived period"),
		},
	}
}

// ColumnKeys returns all column keys.
func (c Config) ColumnKeys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// RequiredKeys returns the keys of required columns.
func (c Config) RequiredKeys() []string {
	var keys []string
	for _, col := range c.Columns {
		if col.Required {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

// Lookup returns the column with key.
func (c Config) Lookup(key string) (ColumnMeta, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return ColumnMeta{}, false
}

// ============================================================================
// HEADER MAPPING
// ============================================================================

// HeaderMap resolves column keys to positions in a source header row.
type HeaderMap struct {
	index    map[string]int
	unmapped []string
}

// MapHeaders matches a header row against the schema. Headers are compared in
// snake_case so "SharkName", "Shark Name" and "shark_name" are the same column.
// A missing required column is an error wrapping ErrMissingColumns.
func MapHeaders(headers []string, c Config) (HeaderMap, error) {
	m := HeaderMap{index: make(map[string]int, len(headers))}

	known := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		known[col.Key] = true
	}

	for i, h := range headers {
		key := toSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if !known[key] {
			m.unmapped = append(m.unmapped, h)
			continue
		}
		if _, dup := m.index[key]; !dup {
			m.index[key] = i
		}
	}

	var missing []string
	for _, key := range c.RequiredKeys() {
		if _, ok := m.index[key]; !ok {
			col, _ := c.Lookup(key)
			missing = append(missing, col.Header)
		}
	}
	if len(missing) > 0 {
		return m, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return m, nil
}

// Index returns the position of key in the header row.
func (m HeaderMap) Index(key string) (int, bool) {
	i, ok := m.index[key]
	return i, ok
}

// Cell returns the trimmed cell for key, or "" if the column is absent or
// the row is short.
func (m HeaderMap) Cell(row []string, key string) string {
	i, ok := m.index[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Unmapped returns source headers that match no schema column.
func (m HeaderMap) Unmapped() []string {
	return m.unmapped
}
