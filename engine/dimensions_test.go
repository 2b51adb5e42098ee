package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateAliases(t *testing.T) {
	tests := []struct {
		in, code, name string
	}{
		{"NSW", "NSW", "New South Wales"},
		{"new south wales", "NSW", "New South Wales"},
		{" Tasmania ", "TAS", "Tasmania"},
		{"act", "ACT", "Australian Capital Territory"},
		{"Atlantis", "Atlantis", "Atlantis"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, StateCode(tt.in), "StateCode(%q)", tt.in)
		assert.Equal(t, tt.name, StateName(tt.in), "StateName(%q)", tt.in)
	}

	assert.Equal(t, "#2196F3", StateColor("Western Australia"))
	assert.Equal(t, DefaultColor, StateColor("ACT"))
	assert.Len(t, StateCodes(), 8)
}

func TestOptions(t *testing.T) {
	opts := Options(sampleDataset())
	assert.Equal(t, []string{"Atlantis", "NSW", "QLD", "VIC", "WA"}, opts.States)
	assert.Equal(t, []string{"female", "male"}, opts.Genders)
	assert.Equal(t, []string{"fishing", "surfing", "swimming"}, opts.Activities)
	assert.Equal(t, []string{"fatal", "injured", "uninjured"}, opts.Injuries)
	assert.Equal(t, DayNames, opts.Days)
	assert.Len(t, opts.Months, 12)
	assert.Equal(t, Range{2018, 2021}, opts.YearBounds)
	assert.Equal(t, Range{10, 70}, opts.AgeBounds)

	empty := Options(NewDataset(nil))
	assert.Empty(t, empty.States)
	assert.Equal(t, DefaultYearBounds, empty.YearBounds)
	assert.Equal(t, DefaultAgeBounds, empty.AgeBounds)
}

func TestUniqueValues(t *testing.T) {
	ds := sampleDataset()
	assert.Equal(t, []string{"white shark", "tiger shark", "bull shark"}, UniqueValues(ds, "species"))
	assert.Equal(t, []string{"January", "March", "June", "December", "February"}, UniqueValues(ds, "month"))
	assert.Nil(t, UniqueValues(ds, "colour"))
	assert.Contains(t, DimensionKeys(), "age_bracket")
}
