package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/sharkscope/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/cleaned_data.csv", c.Data.CSVFile)
	assert.Equal(t, "data/states.geojson", c.Data.GeoJSONFile)
	assert.Equal(t, Aggregation{TopActivities: 8, TopSpecies: 5, TopStreamSpecies: 6, TopActivityProvocations: 10}, c.Aggregation)
	assert.Equal(t, ":8050", c.Server.ListenAddress)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, c.Server.IdleTimeout)
	assert.Equal(t, Log{Level: "info", Format: "json"}, c.Log)
	assert.NoError(t, c.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
data:
  csv_file: /srv/incidents.csv
aggregation:
  top_species: 3
server:
  listen_address: 127.0.0.1:9000
  read_timeout: 2s
log:
  level: debug
  format: console
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/incidents.csv", c.Data.CSVFile)
	assert.Equal(t, "data/states.geojson", c.Data.GeoJSONFile)
	assert.Equal(t, 3, c.Aggregation.TopSpecies)
	assert.Equal(t, 8, c.Aggregation.TopActivities)
	assert.Equal(t, "127.0.0.1:9000", c.Server.ListenAddress)
	assert.Equal(t, 2*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, Log{Level: "debug", Format: "console"}, c.Log)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "data:\n  csv_file: from-yaml.csv\n")
	t.Setenv(EnvCSVFile, "from-env.csv")
	t.Setenv(EnvGeoJSONFile, "regions.geojson")
	t.Setenv(EnvListenAddress, ":9999")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "console")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.csv", c.Data.CSVFile)
	assert.Equal(t, "regions.geojson", c.Data.GeoJSONFile)
	assert.Equal(t, ":9999", c.Server.ListenAddress)
	assert.Equal(t, Log{Level: "warn", Format: "console"}, c.Log)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "data: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty csv", func(c *Config) { c.Data.CSVFile = "" }},
		{"negative activities", func(c *Config) { c.Aggregation.TopActivities = -1 }},
		{"zero species", func(c *Config) { c.Aggregation.TopSpecies = 0 }},
		{"negative stream", func(c *Config) { c.Aggregation.TopStreamSpecies = -6 }},
		{"negative provocations", func(c *Config) { c.Aggregation.TopActivityProvocations = -2 }},
		{"negative timeout", func(c *Config) { c.Server.IdleTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load("")
			require.NoError(t, err)
			tt.mutate(c)
			assert.True(t, errors.Is(c.Validate(), ErrInvalid))
		})
	}
}

func TestEngineOptions(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.Aggregation.TopSpecies = 1

	ds := engine.NewDataset([]engine.Incident{
		{SharkName: "white shark"},
		{SharkName: "white shark"},
		{SharkName: "tiger shark"},
	})
	d := engine.Execute(ds, engine.FilterState{}, c.EngineOptions(nil)...)

	species, ok := d.Lookup(engine.SeriesBySpecies)
	require.True(t, ok)
	assert.Equal(t, []string{"white shark"}, species.Labels())
}
