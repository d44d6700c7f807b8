package array

import (
	"log/slog"

	"github.com/joshuapare/poolkit/internal/contract"
	"github.com/joshuapare/poolkit/internal/logger"
	"github.com/joshuapare/poolkit/mem/pool"
)

// Option configures a Fixed array at construction. Ranges and clones inherit
// the options of the array they were taken from.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	policy    pool.Policy
	policySet bool
}

// WithLogger sets the logger for warnings and the backing pool's traces.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPolicy overrides the POOLKIT_CONTRACT environment setting.
func WithPolicy(p pool.Policy) Option {
	return func(o *options) {
		o.policy = p
		o.policySet = true
	}
}

func resolveOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.policySet {
		o.policy = contract.ModeFromEnv()
		o.policySet = true
	}
	if o.logger == nil {
		o.logger = logger.Default()
	}
	return o
}

func (o options) checker() contract.Checker {
	return contract.Checker{Mode: o.policy, Logger: o.logger}
}

func (o options) poolOptions() []pool.Option {
	return []pool.Option{pool.WithLogger(o.logger), pool.WithPolicy(o.policy)}
}

// inherit replays resolved options onto a derived array.
func (o options) inherit() []Option {
	return []Option{WithLogger(o.logger), WithPolicy(o.policy)}
}
