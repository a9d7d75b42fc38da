// Package validator implements the per-property constraint checkers and the
// rule-constraint validator. Every core validator is a pure function: it
// reads the graph, inspects its own shape fields, and returns zero or more
// results. A validator whose fields are absent on the shape returns nil.
//
// Property runs the five core validators in their fixed order: cardinality,
// type, string, value, qualified. The orchestrator relies on that order when
// assembling reports.
package validator

import (
	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
)

// Func is the contract every core validator satisfies.
type Func func(g graph.Graph, focus shape.Term, ps *shape.PropertyShape) []shape.Result

// Core lists the validators in dispatch order.
var Core = []Func{Cardinality, Type, String, Value, Qualified}

// Property runs all core validators against one property shape and
// concatenates their results in order.
func Property(g graph.Graph, focus shape.Term, ps *shape.PropertyShape) []shape.Result {
	var out []shape.Result
	for _, validate := range Core {
		out = append(out, validate(g, focus, ps)...)
	}
	return out
}

// violation builds a violation result for a property shape, honoring the
// shape's message override.
func violation(focus shape.Term, ps *shape.PropertyShape, defaultMsg string, details shape.Details) shape.Result {
	msg := defaultMsg
	if ps.Message != "" {
		msg = ps.Message
	}
	return shape.Result{
		FocusNode:   focus,
		Path:        ps.Path,
		SourceShape: ps.ID,
		Severity:    shape.SeverityViolation,
		Message:     msg,
		Details:     details,
	}
}
