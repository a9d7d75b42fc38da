// Package engine orchestrates validation runs: it selects focus nodes per
// node shape, dispatches every (shape, focus node) pair through the core and
// rule validators, and aggregates the results into a report.
//
// Each call to Run is self-contained. In sequential mode results follow a
// fully deterministic order: shape declaration order, focus-node discovery
// order, property-shape order, validator order, rule results last. Parallel
// mode evaluates units concurrently but assembles the report in the same unit
// order, so the two modes produce identical reports for the same input.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/query"
	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/validator"
	"github.com/c360studio/semshape/vocabulary/rdf"
)

// unit is one (node shape, focus node) pair, the sole parallelizable
// granularity.
type unit struct {
	shape *shape.NodeShape
	focus shape.Term
}

// Run validates every in-scope focus node against its shapes and returns the
// aggregate report. Only invalid options fail the call; unit-level failures
// (timeouts, panics, rule-query errors) are isolated into engine-error
// results inside an otherwise successful report.
func Run(ctx context.Context, g graph.Graph, shapes []*shape.NodeShape, opts Options) (*shape.Report, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, &ConfigError{Field: "graph", Reason: "data graph is required"}
	}

	units := collectUnits(g, shapes)

	opts.Logger.Debug("validation run starting",
		"shapes", len(shapes),
		"units", len(units),
		"parallel", opts.Parallel)

	start := time.Now()
	var perUnit [][]shape.Result
	if opts.Parallel && len(units) > 1 {
		perUnit = runParallel(ctx, g, units, opts)
	} else {
		perUnit = runSequential(ctx, g, units, opts)
	}

	report := &shape.Report{}
	for _, results := range perUnit {
		report.Results = append(report.Results, results...)
	}

	opts.Logger.Debug("validation run finished",
		"units", len(units),
		"results", len(report.Results),
		"violations", report.ViolationCount(),
		"engine_errors", report.EngineErrorCount(),
		"conforms", report.Conforms(),
		"duration", time.Since(start))

	return report, nil
}

// collectUnits performs target selection: for each node shape, the focus
// nodes are the de-duplicated union of explicit rdf:type members across its
// target classes, in discovery order. A shape with no target classes
// contributes no units.
func collectUnits(g graph.Graph, shapes []*shape.NodeShape) []unit {
	var units []unit
	for _, ns := range shapes {
		seen := make(map[shape.Term]struct{})
		for _, class := range ns.TargetClasses {
			for _, subject := range g.SubjectsWith(rdf.Type, shape.NewIRI(class)) {
				if _, dup := seen[subject]; dup {
					continue
				}
				seen[subject] = struct{}{}
				units = append(units, unit{shape: ns, focus: subject})
			}
		}
	}
	return units
}

func runSequential(ctx context.Context, g graph.Graph, units []unit, opts Options) [][]shape.Result {
	out := make([][]shape.Result, len(units))
	for i, u := range units {
		out[i] = evaluateUnit(ctx, g, u, opts)
	}
	return out
}

// runParallel evaluates units on a bounded worker pool. Results land in a
// slice indexed by unit, so per-unit contiguity and order survive regardless
// of completion order. No worker outlives the call.
func runParallel(ctx context.Context, g graph.Graph, units []unit, opts Options) [][]shape.Result {
	out := make([][]shape.Result, len(units))

	workers := opts.MaxConcurrency
	if workers > len(units) {
		workers = len(units)
	}

	work := make(chan int)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range work {
				out[i] = evaluateUnit(ctx, g, units[i], opts)
			}
		}()
	}

	for i := range units {
		work <- i
	}
	close(work)
	for w := 0; w < workers; w++ {
		<-done
	}
	return out
}

// evaluateUnit runs every property shape of the unit's node shape through the
// core validators, then the shape's rule constraints. Failure isolation
// happens here: a panic or an expired per-unit deadline replaces the unit's
// output with a single engine-error result; a rule-query failure keeps the
// core results and appends one engine-error result.
func evaluateUnit(ctx context.Context, g graph.Graph, u unit, opts Options) (results []shape.Result) {
	defer func() {
		if r := recover(); r != nil {
			opts.Logger.Error("validation unit panicked",
				"shape", u.shape.ID,
				"focus", u.focus.String(),
				"panic", r)
			results = []shape.Result{engineError(u, fmt.Sprintf("unit evaluation panicked: %v", r))}
		}
	}()

	unitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		unitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var out []shape.Result
	for _, ps := range u.shape.PropertyShapes {
		if unitCtx.Err() != nil {
			return []shape.Result{aborted(u, unitCtx.Err())}
		}
		out = append(out, validator.Property(g, u.focus, ps)...)
	}

	ruleResults, err := validator.Rules(unitCtx, g, opts.Executor, u.focus, u.shape.RuleConstraints)
	if unitCtx.Err() != nil {
		return []shape.Result{aborted(u, unitCtx.Err())}
	}
	out = append(out, ruleResults...)
	if err != nil {
		var detail shape.Details
		if qerr, ok := err.(*query.Error); ok && qerr.Query != "" {
			detail = shape.Details{{Key: "query", Value: qerr.Query}}
		}
		res := engineError(u, fmt.Sprintf("rule constraint evaluation failed: %v", err))
		res.Details = detail
		out = append(out, res)
	}
	return out
}

func aborted(u unit, cause error) shape.Result {
	return engineError(u, fmt.Sprintf("unit evaluation aborted: %v", cause))
}

func engineError(u unit, msg string) shape.Result {
	return shape.Result{
		FocusNode:   u.focus,
		SourceShape: u.shape.ID,
		Severity:    shape.SeverityEngineError,
		Message:     msg,
	}
}
