package pool

import (
	"log/slog"

	"github.com/joshuapare/poolkit/internal/contract"
)

// Option configures a Pool at construction.
type Option func(*options)

type options struct {
	source    Source
	logger    *slog.Logger
	policy    Policy
	policySet bool
}

// WithSource selects where a self-allocating pool gets its memory.
// It has no effect on pools built over a caller buffer.
func WithSource(s Source) Option {
	return func(o *options) { o.source = s }
}

// WithLogger sets the logger for debug traces and soft-precondition warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPolicy overrides the POOLKIT_CONTRACT environment setting.
func WithPolicy(p Policy) Option {
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
	}
	return o
}
