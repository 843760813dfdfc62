package section

// Config holds the tunable limits of a parse. Real-world IDF files
// violate declared counts and closure in both directions, so the
// thresholds are adjustable rather than hard-coded.
type Config struct {
	// CountMismatchLimit is the fraction of the declared record count
	// by which the actual count may deviate before the mismatch is
	// treated as a section desynchronization and the parse fails.
	CountMismatchLimit float64

	// ClosureTolerance is the maximum distance, in millimeters, between
	// the first and last point of an outline loop for the loop to be
	// considered closed.
	ClosureTolerance float64
}

// DefaultConfig returns the limits used when no options are given.
func DefaultConfig() Config {
	return Config{
		CountMismatchLimit: 0.5,
		ClosureTolerance:   1e-4,
	}
}

// Option adjusts a Config.
type Option func(*Config)

// WithCountMismatchLimit sets the declared-count deviation (as a
// fraction of the declared count) beyond which parsing fails.
func WithCountMismatchLimit(limit float64) Option {
	return func(c *Config) {
		c.CountMismatchLimit = limit
	}
}

// WithClosureTolerance sets the loop closure tolerance in millimeters.
func WithClosureTolerance(tol float64) Option {
	return func(c *Config) {
		c.ClosureTolerance = tol
	}
}

// NewConfig applies options on top of the defaults.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
