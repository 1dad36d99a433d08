package collection

import "go.uber.org/zap"

// Option configures a Collection.
type Option func(*config)

type config struct {
	logger         *zap.Logger
	ids            IDStrategy
	resetOnReplace bool
}

func defaultConfig() config {
	return config{
		logger: zap.NewNop(),
		ids:    PrefixStrategy{Prefix: DefaultIDPrefix},
	}
}

// WithLogger sets the logger receiving debug records.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDStrategy replaces the identifier generator.
func WithIDStrategy(s IDStrategy) Option {
	return func(c *config) {
		if s != nil {
			c.ids = s
		}
	}
}

// WithIDPrefix keeps the default sequence ids with another prefix.
func WithIDPrefix(prefix string) Option {
	return WithIDStrategy(PrefixStrategy{Prefix: prefix})
}

// WithResetOnReplace makes Refresh with replace restart the id sequence.
func WithResetOnReplace() Option {
	return func(c *config) {
		c.resetOnReplace = true
	}
}
