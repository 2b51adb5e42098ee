package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	TopActivities           int // bars in the activity chart
	TopSpecies              int // slices in the species chart
	TopStreamSpecies        int // species in the species-over-time stream
	TopActivityProvocations int // activities in the provocation breakdown
	Logger                  *zap.Logger
}

// WithTopActivities sets how many activities the activity series keeps.
func WithTopActivities(n int) Option {
	return func(c *config) {
		c.TopActivities = n
	}
}

// WithTopSpecies sets how many species the species series keeps.
func WithTopSpecies(n int) Option {
	return func(c *config) {
		c.TopSpecies = n
	}
}

// WithTopStreamSpecies sets how many species the species-over-time matrix keeps.
func WithTopStreamSpecies(n int) Option {
	return func(c *config) {
		c.TopStreamSpecies = n
	}
}

// WithTopActivityProvocations sets how many activities the provocation
// breakdown keeps.
func WithTopActivityProvocations(n int) Option {
	return func(c *config) {
		c.TopActivityProvocations = n
	}
}

// WithLogger routes engine debug logs to l. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		TopActivities:           8,
		TopSpecies:              5,
		TopStreamSpecies:        6,
		TopActivityProvocations: 10,
		Logger:                  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
