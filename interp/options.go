package interp

import (
	"github.com/npillmayer/schuko/gconf"
)

// Default ceilings.
const (
	DefaultMaxIterations = 1000
	DefaultMaxCallDepth  = 50
)

// Configuration keys read by LimitsFromConfig.
const (
	ConfigMaxIterations = "blockflow.max-iterations"
	ConfigMaxCallDepth  = "blockflow.max-call-depth"
)

// Limits are the ceilings guarding against runaway programs.
type Limits struct {
	MaxIterations int // maximum loop-body/function-body traversal count
	MaxCallDepth  int // maximum depth of nested function calls
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxIterations sets the iteration ceiling. Values < 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(ip *Interpreter) {
		if n > 0 {
			ip.limits.MaxIterations = n
		}
	}
}

// WithMaxCallDepth sets the maximum depth of nested function calls.
// Values < 1 are ignored.
func WithMaxCallDepth(n int) Option {
	return func(ip *Interpreter) {
		if n > 0 {
			ip.limits.MaxCallDepth = n
		}
	}
}

// WithLimits sets both ceilings at once. Zero values keep the defaults.
func WithLimits(l Limits) Option {
	return func(ip *Interpreter) {
		WithMaxIterations(l.MaxIterations)(ip)
		WithMaxCallDepth(l.MaxCallDepth)(ip)
	}
}

// LimitsFromConfig reads the ceilings from the global configuration, as
// initialized by the application. Keys not set result in zero values.
func LimitsFromConfig() Limits {
	var l Limits
	if gconf.IsSet(ConfigMaxIterations) {
		l.MaxIterations = gconf.GetInt(ConfigMaxIterations)
	}
	if gconf.IsSet(ConfigMaxCallDepth) {
		l.MaxCallDepth = gconf.GetInt(ConfigMaxCallDepth)
	}
	return l
}
