package engine

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/c360studio/semshape/query"
)

// Options controls a single validation run. The zero value runs sequentially
// with no per-unit timeout.
type Options struct {
	// Parallel enables the bounded worker pool over dispatch units.
	Parallel bool

	// MaxConcurrency bounds in-flight units in parallel mode and is ignored
	// in sequential mode. Zero selects the platform parallelism
	// (runtime.GOMAXPROCS); negative values are a configuration error.
	MaxConcurrency int

	// Timeout bounds each dispatch unit. Zero disables the bound; negative
	// values are a configuration error. A timed-out unit is replaced by a
	// single engine-error result and does not cancel sibling units.
	Timeout time.Duration

	// Executor runs rule-constraint queries. Shapes without rule constraints
	// never need one; units with rule constraints and no executor yield an
	// engine-error result.
	Executor query.Executor

	// Logger receives run-level diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// ConfigError reports invalid run options. It is the only failure Run returns
// directly; every other failure is recovered at the unit boundary and turned
// into an engine-error result inside the report.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid engine option %s: %s", e.Field, e.Reason)
}

// normalize validates the options and fills defaults.
func (o Options) normalize() (Options, error) {
	if o.MaxConcurrency < 0 {
		return o, &ConfigError{Field: "max_concurrency", Reason: "must be non-negative"}
	}
	if o.Timeout < 0 {
		return o, &ConfigError{Field: "timeout", Reason: "must be non-negative"}
	}
	if o.MaxConcurrency == 0 {
		o.MaxConcurrency = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}
