package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/sharkscope/engine"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables applied on top of the YAML file.
const (
	EnvCSVFile       = "SHARKSCOPE_CSV_FILE"
	EnvGeoJSONFile   = "SHARKSCOPE_GEOJSON_FILE"
	EnvListenAddress = "SHARKSCOPE_LISTEN_ADDRESS"
	EnvLogLevel      = "SHARKSCOPE_LOG_LEVEL"
	EnvLogFormat     = "SHARKSCOPE_LOG_FORMAT"
)

// Data locates the incident CSV and the optional state GeoJSON.
type Data struct {
	CSVFile     string `yaml:"csv_file"`
	GeoJSONFile string `yaml:"geojson_file"`
}

// Aggregation holds the top-N sizes of the truncated distributions.
type Aggregation struct {
	TopActivities           int `yaml:"top_activities"`
	TopSpecies              int `yaml:"top_species"`
	TopStreamSpecies        int `yaml:"top_stream_species"`
	TopActivityProvocations int `yaml:"top_activity_provocations"`
}

// Server configures the HTTP listener.
type Server struct {
	ListenAddress string        `yaml:"listen_address"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
}

// Log selects the zap level and encoder (json or console).
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root of sharkscope.yml.
type Config struct {
	Data        Data        `yaml:"data"`
	Aggregation Aggregation `yaml:"aggregation"`
	Server      Server      `yaml:"server"`
	Log         Log         `yaml:"log"`
}

// Load reads the YAML file at path, fills defaults and applies environment
// overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	c.applyDefaults()
	c.applyEnv()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Data.CSVFile == "" {
		c.Data.CSVFile = "data/cleaned_data.csv"
	}
	if c.Data.GeoJSONFile == "" {
		c.Data.GeoJSONFile = "data/states.geojson"
	}
	if c.Aggregation.TopActivities == 0 {
		c.Aggregation.TopActivities = 8
	}
	if c.Aggregation.TopSpecies == 0 {
		c.Aggregation.TopSpecies = 5
	}
	if c.Aggregation.TopStreamSpecies == 0 {
		c.Aggregation.TopStreamSpecies = 6
	}
	if c.Aggregation.TopActivityProvocations == 0 {
		c.Aggregation.TopActivityProvocations = 10
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8050"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{EnvCSVFile, &c.Data.CSVFile},
		{EnvGeoJSONFile, &c.Data.GeoJSONFile},
		{EnvListenAddress, &c.Server.ListenAddress},
		{EnvLogLevel, &c.Log.Level},
		{EnvLogFormat, &c.Log.Format},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

// Validate reports the first unusable setting, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	if c.Data.CSVFile == "" {
		return fmt.Errorf("%w: data.csv_file is empty", ErrInvalid)
	}
	sizes := []struct {
		name string
		n    int
	}{
		{"aggregation.top_activities", c.Aggregation.TopActivities},
		{"aggregation.top_species", c.Aggregation.TopSpecies},
		{"aggregation.top_stream_species", c.Aggregation.TopStreamSpecies},
		{"aggregation.top_activity_provocations", c.Aggregation.TopActivityProvocations},
	}
	for _, s := range sizes {
		if s.n <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, s.name, s.n)
		}
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("%w: server timeouts must not be negative", ErrInvalid)
	}
	return nil
}

// EngineOptions converts the aggregation settings into engine options. A nil
// logger is ignored by the engine.
func (c *Config) EngineOptions(log *zap.Logger) []engine.Option {
	return []engine.Option{
		engine.WithTopActivities(c.Aggregation.TopActivities),
		engine.WithTopSpecies(c.Aggregation.TopSpecies),
		engine.WithTopStreamSpecies(c.Aggregation.TopStreamSpecies),
		engine.WithTopActivityProvocations(c.Aggregation.TopActivityProvocations),
		engine.WithLogger(log),
	}
}
