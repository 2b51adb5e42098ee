package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// FIXED VOCABULARIES — static configuration, immutable for the session
// ============================================================================

// Age brackets in display order. Upper bounds are inclusive.
var AgeBrackets = []string{"0-12", "13-17", "18-24", "25-34", "35-44", "45-54", "55+", "Unknown"}

// UnknownBracket is the bracket for a missing age.
const UnknownBracket = "Unknown"

var ageUpperBounds = []struct {
	max     float64
	bracket string
}{
	{12, "0-12"},
	{17, "13-17"},
	{24, "18-24"},
	{34, "25-34"},
	{44, "35-44"},
	{54, "45-54"},
}

// DayNames are ordered Monday → Sunday.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MonthNames are ordered January → December; MonthNames[m-1] names month m.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Time-of-day periods.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
	PeriodNight     = "night"
)

// TimePeriods lists the periods in day order.
var TimePeriods = []string{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}

// HourLabels are the 24 hour-of-day buckets "00:00" … "23:00".
var HourLabels = func() []string {
	out := make([]string, 24)
	for h := range out {
		out[h] = fmt.Sprintf("%02d:00", h)
	}
	return out
}()

// Provocation values.
const (
	Provoked   = "provoked"
	Unprovoked = "unprovoked"
)

// Genders recognised by the cross-tabulation.
const (
	Male   = "male"
	Female = "female"
)

// ============================================================================
// STATE ALIASES — bidirectional short code ↔ long name lookup
// ============================================================================

// stateNames maps region codes to the names used by the boundary file.
var stateNames = map[string]string{
	"NSW": "New South Wales",
	"VIC": "Victoria",
	"QLD": "Queensland",
	"WA":  "Western Australia",
	"SA":  "South Australia",
	"TAS": "Tasmania",
	"NT":  "Northern Territory",
	"ACT": "Australian Capital Territory",
}

// stateCodes is the case-insensitive reverse index: lowercased code or name → code.
var stateCodes = func() map[string]string {
	m := make(map[string]string, 2*len(stateNames))
	for code, name := range stateNames {
		m[strings.ToLower(code)] = code
		m[strings.ToLower(name)] = code
	}
	return m
}()

// stateColors is the map marker palette.
var stateColors = map[string]string{
	"NSW": "#FF3D00",
	"WA":  "#2196F3",
	"QLD": "#AA00FF",
	"VIC": "#00E676",
	"SA":  "#FFEB3B",
	"TAS": "#FF1744",
	"NT":  "#18FFFF",
}

// DefaultColor is used for values missing from a colour table.
const DefaultColor = "#808080"

// StateCode resolves a short code or long name to the short code.
// Unknown values pass through unchanged.
func StateCode(s string) string {
	s = strings.TrimSpace(s)
	if code, ok := stateCodes[strings.ToLower(s)]; ok {
		return code
	}
	return s
}

// StateName resolves a short code or long name to the long name.
// Unknown values pass through unchanged.
func StateName(s string) string {
	code := StateCode(s)
	if name, ok := stateNames[code]; ok {
		return name
	}
	return s
}

// StateColor returns the marker colour for a state, or DefaultColor.
func StateColor(s string) string {
	if c, ok := stateColors[StateCode(s)]; ok {
		return c
	}
	return DefaultColor
}

// StateCodes returns the known codes in a stable order.
func StateCodes() []string {
	return []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "NT", "ACT"}
}
