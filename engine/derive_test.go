package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// DERIVED FIELD TESTS
// ============================================================================

func TestDayOfWeek(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day NullInt
		want             string
	}{
		{"full date", Int(2020), Int(1), Int(15), "Wednesday"},
		{"christmas", Int(2018), Int(12), Int(25), "Tuesday"},
		{"missing day defaults to 1st", Int(2021), Int(6), NullInt{}, "Tuesday"},
		{"leap day", Int(2020), Int(2), Int(29), "Saturday"},
		{"feb 30 is invalid", Int(2020), Int(2), Int(30), ""},
		{"feb 29 on non-leap year", Int(2019), Int(2), Int(29), ""},
		{"month 13", Int(2020), Int(13), Int(1), ""},
		{"missing year", NullInt{}, Int(2), Int(3), ""},
		{"missing month", Int(2020), NullInt{}, Int(3), ""},
		{"day zero", Int(2020), Int(1), Int(0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayOfWeek(tt.year, tt.month, tt.day); got != tt.want {
				t.Errorf("DayOfWeek(%v, %v, %v) = %q, want %q", tt.year, tt.month, tt.day, got, tt.want)
			}
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"06:00", PeriodMorning},
		{"11:59", PeriodMorning},
		{"12:00", PeriodAfternoon},
		{"14:35", PeriodAfternoon},
		{"18:00", PeriodEvening},
		{"20:59", PeriodEvening},
		{"21:00", PeriodNight},
		{"00:15", PeriodNight},
		{"05:59", PeriodNight},
		{" 9:30 ", PeriodMorning},
		{"1435", PeriodNight}, // parses as hour 1435
		{"", ""},
		{"afternoon", ""},
		{":30", ""},
	}
	for _, tt := range tests {
		if got := TimeOfDay(tt.in); got != tt.want {
			t.Errorf("TimeOfDay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHourOf(t *testing.T) {
	h, ok := HourOf("14:35")
	require.True(t, ok)
	assert.Equal(t, 14, h)
	assert.Equal(t, "14:00", HourLabels[h])

	h, ok = HourOf("00:05")
	require.True(t, ok)
	assert.Equal(t, 0, h)

	for _, bad := range []string{"", "1435", "24:00", "-1:00", "noon"} {
		_, ok := HourOf(bad)
		assert.False(t, ok, "HourOf(%q) should not produce an hour", bad)
	}
}

func TestAgeBracket(t *testing.T) {
	tests := []struct {
		age  NullFloat
		want string
	}{
		{Float(0), "0-12"},
		{Float(12), "0-12"},
		{Float(12.5), "13-17"},
		{Float(17), "13-17"},
		{Float(18), "18-24"},
		{Float(24), "18-24"},
		{Float(34), "25-34"},
		{Float(44), "35-44"},
		{Float(54), "45-54"},
		{Float(54.5), "55+"},
		{Float(90), "55+"},
		{NullFloat{}, "Unknown"},
		{Float(math.NaN()), "Unknown"},
	}
	for _, tt := range tests {
		if got := AgeBracket(tt.age); got != tt.want {
			t.Errorf("AgeBracket(%v) = %q, want %q", tt.age, got, tt.want)
		}
	}
}

func TestAgeBracketPartitionIsExhaustive(t *testing.T) {
	seen := make(map[string]bool)
	for age := -5.0; age <= 120; age += 0.5 {
		b := AgeBracket(Float(age))
		require.Contains(t, AgeBrackets, b, "age %v", age)
		seen[b] = true
	}
	seen[AgeBracket(NullFloat{})] = true
	assert.Len(t, seen, len(AgeBrackets))
}

func TestCleanCoordinate(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"-33.89", -33.89, true},
		{"151.27°E", 151.27, true},
		{" -30.3 S", -30.3, true},
		{"approx 115", 115, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"1.2.3", 0, false},
		{"--5", 0, false},
	}
	for _, tt := range tests {
		got := CleanCoordinate(tt.in)
		if got.Valid != tt.valid {
			t.Errorf("CleanCoordinate(%q).Valid = %v, want %v", tt.in, got.Valid, tt.valid)
			continue
		}
		if tt.valid && got.Float != tt.want {
			t.Errorf("CleanCoordinate(%q) = %v, want %v", tt.in, got.Float, tt.want)
		}
	}
}

func TestDisplaySummary(t *testing.T) {
	full := DisplaySummary(Incident{
		Year: Int(2020), SharkName: "white shark", Activity: "surfing",
		Injury: "Injured", Gender: "male", Age: Float(25.7), IncidentTime: "14:35",
	})
	assert.Equal(t, strings.Join([]string{
		"Year: 2020",
		"Shark Species: white shark",
		"Activity: surfing",
		"Injury: injured",
		"Gender: male",
		"Age: 25",
		"Time: 14:35",
		"Time Period: Afternoon",
	}, "\n"), full)

	empty := DisplaySummary(Incident{})
	lines := strings.Split(empty, "\n")
	require.Len(t, lines, 8)
	for _, l := range lines {
		assert.True(t, strings.HasSuffix(l, ": Unknown"), "line %q", l)
	}
}

func TestDeriveIsIdempotentAndCopies(t *testing.T) {
	raw := sampleRaw()
	once := Derive(raw)
	twice := Derive(once)
	assert.Equal(t, once, twice)

	// input untouched
	for _, inc := range raw {
		assert.Empty(t, inc.DayOfWeek)
		assert.Empty(t, inc.AgeBracket)
	}

	assert.Equal(t, "Wednesday", once[0].DayOfWeek)
	assert.Equal(t, PeriodAfternoon, once[0].TimeOfDay)
	assert.Equal(t, "25-34", once[0].AgeBracket)
	assert.Equal(t, "Unknown", once[2].AgeBracket)
	assert.Equal(t, "", once[3].TimeOfDay)
	assert.Equal(t, PeriodNight, once[4].TimeOfDay)
	assert.Equal(t, "", once[4].DayOfWeek)
	assert.Equal(t, "", once[5].DayOfWeek)
}

func TestDatasetAtOutOfRange(t *testing.T) {
	ds := sampleDataset()
	assert.Equal(t, 6, ds.Len())
	assert.Equal(t, Incident{}, ds.At(-1))
	assert.Equal(t, Incident{}, ds.At(6))

	// mutating the copy handed out does not reach the table
	inc := ds.At(0)
	inc.State = "WA"
	assert.Equal(t, "NSW", ds.At(0).State)
}
