package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// DERIVED FIELDS — computed once at load time
// ============================================================================
// Every function here is total: malformed input degrades to a missing value
// (or "Unknown") and never fails the load. Derived fields are pure functions of
// the raw block, so deriving twice yields identical records. Gender and
// provocation are canonicalized to lowercase here, once for every consumer.
// ============================================================================

// Derive returns a copy of raw with the derived fields of every incident set.
// The input slice is not modified.
func Derive(raw []Incident) []Incident {
	out := make([]Incident, len(raw))
	for i, inc := range raw {
		out[i] = DeriveIncident(inc)
	}
	return out
}

// DeriveIncident recomputes the derived block of a single incident.
func DeriveIncident(inc Incident) Incident {
	inc.Gender = normalize(inc.Gender)
	inc.Provocation = normalize(inc.Provocation)
	inc.DayOfWeek = DayOfWeek(inc.Year, inc.Month, inc.Day)
	inc.TimeOfDay = TimeOfDay(inc.IncidentTime)
	inc.AgeBracket = AgeBracket(inc.Age)
	inc.DisplaySummary = DisplaySummary(inc)
	return inc
}

// DayOfWeek returns the weekday name for a date, or "" if the date is invalid.
// A missing day defaults to the 1st of the month.
func DayOfWeek(year, month, day NullInt) string {
	if !year.Valid || !month.Valid {
		return ""
	}
	d := 1
	if day.Valid {
		d = day.Int
	}
	if month.Int < 1 || month.Int > 12 || d < 1 || d > 31 {
		return ""
	}
	t := time.Date(year.Int, time.Month(month.Int), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises Feb 30 into March; treat that as invalid.
	if t.Year() != year.Int || int(t.Month()) != month.Int || t.Day() != d {
		return ""
	}
	return t.Weekday().String()
}

// parseHour extracts the leading integer hour from an "HH:MM"-like string.
func parseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(s, ":")
	h, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return h, true
}

// TimeOfDay buckets an incident time into a period of the day.
// Hours outside the day-time windows (including out-of-range integers) are
// "night"; unparsable or missing times return "".
func TimeOfDay(incidentTime string) string {
	h, ok := parseHour(incidentTime)
	if !ok {
		return ""
	}
	switch {
	case 6 <= h && h < 12:
		return PeriodMorning
	case 12 <= h && h < 18:
		return PeriodAfternoon
	case 18 <= h && h < 21:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// HourOf returns the hour-of-day bucket (0–23) of an incident time.
func HourOf(incidentTime string) (int, bool) {
	h, ok := parseHour(incidentTime)
	if !ok || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// AgeBracket maps an age onto the fixed bracket vocabulary.
func AgeBracket(age NullFloat) string {
	if !age.Valid || math.IsNaN(age.Float) {
		return UnknownBracket
	}
	for _, b := range ageUpperBounds {
		if age.Float <= b.max {
			return b.bracket
		}
	}
	return "55+"
}

// CleanCoordinate strips everything except digits, '.' and '-' and parses the
// remainder. Anything that still fails to parse is missing.
func CleanCoordinate(raw string) NullFloat {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return NullFloat{}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return Float(v)
}

// DisplaySummary formats the multi-line hover text for an incident.
func DisplaySummary(inc Incident) string {
	age := "Unknown"
	if inc.Age.Valid && !math.IsNaN(inc.Age.Float) {
		age = strconv.Itoa(int(inc.Age.Float))
	}
	period := "Unknown"
	if p := TimeOfDay(inc.IncidentTime); p != "" {
		period = strings.ToUpper(p[:1]) + p[1:]
	}

	lines := []string{
		"Year: " + nullIntText(inc.Year, "Unknown"),
		"Shark Species: " + orUnknown(inc.SharkName),
		"Activity: " + orUnknown(inc.Activity),
		"Injury: " + orUnknown(strings.ToLower(inc.Injury)),
		"Gender: " + orUnknown(inc.Gender),
		"Age: " + age,
		"Time: " + orUnknown(inc.IncidentTime),
		fmt.Sprintf("Time Period: %s", period),
	}
	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
