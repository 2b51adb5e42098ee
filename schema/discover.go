package schema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/spektr-org/sharkscope/engine"
)

// ============================================================================
// PROFILING — Column-level data quality of an incident CSV
// ============================================================================
// Inspects raw CSV against the schema without loading it:
//   1. Map headers → schema columns (required columns checked)
//   2. Per column: null count, unique count, unparsable cells for its Kind
//   3. Cardinality hint and sample values
//
// The loader never fails on a bad cell; the profile shows how many were
// degraded to missing.
// ============================================================================

// ProfileOptions controls profiling behavior.
type ProfileOptions struct {
	SampleSize int // Max rows to inspect (0 = all).
	MaxSamples int // Sample values kept per column. Default: 10
}

// DefaultProfileOptions returns sensible defaults.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{MaxSamples: 10}
}

// Profile summarises a CSV source.
type Profile struct {
	Rows          int             `json:"rows"`
	MalformedRows int             `json:"malformedRows"`
	Columns       []ColumnProfile `json:"columns"`
	Unmapped      []string        `json:"unmapped,omitempty"`
}

// ColumnProfile summarises one schema column.
type ColumnProfile struct {
	Key             string   `json:"key"`
	DisplayName     string   `json:"displayName"`
	Kind            Kind     `json:"kind"`
	Present         bool     `json:"present"`
	NullCount       int      `json:"nullCount"`
	InvalidCount    int      `json:"invalidCount"`
	UniqueCount     int      `json:"uniqueCount"`
	CardinalityHint string   `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
	SampleValues    []string `json:"sampleValues,omitempty"`
}

// DescribeCSV profiles CSV data against a schema. A source lacking required
// columns returns an error wrapping ErrMissingColumns.
func DescribeCSV(data []byte, c Config, opts ...ProfileOptions) (*Profile, error) {
	opt := DefaultProfileOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	hm, err := MapHeaders(headers, c)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Unmapped: hm.Unmapped()}

	var rows [][]string
	for opt.SampleSize <= 0 || len(rows) < opt.SampleSize {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			profile.MalformedRows++
			continue
		}
		rows = append(rows, row)
	}
	profile.Rows = len(rows)

	for _, col := range c.Columns {
		profile.Columns = append(profile.Columns, profileColumn(col, hm, rows, opt.MaxSamples))
	}
	return profile, nil
}

// profileColumn inspects every value of one column.
func profileColumn(col ColumnMeta, hm HeaderMap, rows [][]string, maxSamples int) ColumnProfile {
	p := ColumnProfile{
		Key:         col.Key,
		DisplayName: col.DisplayName,
		Kind:        col.Kind,
	}
	if _, ok := hm.Index(col.Key); !ok {
		return p
	}
	p.Present = true

	uniqueSet := make(map[string]bool)
	for _, row := range rows {
		val := hm.Cell(row, col.Key)
		if IsNull(val) {
			p.NullCount++
			continue
		}
		if !validFor(col.Kind, val) {
			p.InvalidCount++
		}
		uniqueSet[val] = true
	}

	p.UniqueCount = len(uniqueSet)
	p.SampleValues = collectSamples(uniqueSet, maxSamples)

	switch {
	case p.UniqueCount <= 10:
		p.CardinalityHint = "low"
	case p.UniqueCount <= 100:
		p.CardinalityHint = "medium"
	default:
		p.CardinalityHint = "high"
	}
	return p
}

func validFor(kind Kind, val string) bool {
	switch kind {
	case KindInt:
		_, ok := ParseInt(val)
		return ok
	case KindFloat:
		_, ok := ParseFloat(val)
		return ok
	case KindCoordinate:
		return engine.CleanCoordinate(val).Valid
	default:
		return true
	}
}

// ============================================================================
// CELL PARSING
// ============================================================================

var nullTokens = map[string]bool{
	"": true, "null": true, "nan": true, "n/a": true, "na": true, "none": true, "<na>": true,
}

// IsNull reports whether a cell is a missing-value token.
func IsNull(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// ParseInt parses an integer cell. Float-formatted integers ("2019.0") are
// accepted; fractional values are not.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ParseFloat parses a finite float cell.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ============================================================================
// NAMING HELPERS
// ============================================================================

// toSnakeCase converts "Column Name" or "ColumnName" → "column_name".
func toSnakeCase(s string) string {
	// Handle camelCase: insert underscore before uppercase letters
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "shark_name" → "Shark Name", "age" → "Age"
func toDisplayName(s string) string {
	// If already has spaces/mixed case, just trim
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if maxSamples > 0 && len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
