package validator

import (
	"context"
	"strings"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/query"
	"github.com/c360studio/semshape/shape"
)

// Placeholder is the token in rule query templates that is replaced with the
// canonical serialization of the focus node.
const Placeholder = "$this"

// defaultRuleMessage is used when a rule constraint carries no message.
const defaultRuleMessage = "rule constraint violated"

// BindQuery substitutes every placeholder occurrence in the template with the
// canonical serialization of the focus node: bracketed absolute form for an
// IRI, underscore-prefixed label for a blank node.
func BindQuery(template string, focus shape.Term) string {
	return strings.ReplaceAll(template, Placeholder, focus.String())
}

// Rules evaluates the node-level rule constraints for one focus node. Each
// binding row the executor returns becomes one violation whose details carry
// every bound variable in row order. Zero rows means the constraint holds.
//
// On an execution failure Rules returns the results accumulated so far
// together with a *query.Error; the orchestrator surfaces it as an
// engine-error result for the unit instead of a missing violation.
func Rules(ctx context.Context, g graph.Graph, exec query.Executor, focus shape.Term, constraints []shape.RuleConstraint) ([]shape.Result, error) {
	if len(constraints) == 0 {
		return nil, nil
	}
	if exec == nil {
		return nil, &query.Error{Err: errNoExecutor}
	}

	var out []shape.Result
	for i := range constraints {
		rc := &constraints[i]
		bound := BindQuery(rc.QueryTemplate, focus)

		rows, err := exec.Execute(ctx, g, bound)
		if err != nil {
			var qerr *query.Error
			if e, ok := err.(*query.Error); ok {
				qerr = e
			} else {
				qerr = &query.Error{Query: bound, Err: err}
			}
			return out, qerr
		}

		msg := rc.Message
		if msg == "" {
			msg = defaultRuleMessage
		}
		for _, row := range rows {
			details := make(shape.Details, 0, len(row))
			for _, b := range row {
				details = append(details, shape.Detail{Key: b.Var, Value: b.Term})
			}
			out = append(out, shape.Result{
				FocusNode:   focus,
				SourceShape: rc.SourceShapeID,
				Severity:    shape.SeverityViolation,
				Message:     msg,
				Details:     details,
			})
		}
	}
	return out, nil
}

var errNoExecutor = noExecutorError{}

type noExecutorError struct{}

func (noExecutorError) Error() string {
	return "no query executor configured for rule constraints"
}
