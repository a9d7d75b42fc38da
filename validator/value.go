package validator

import (
	"fmt"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
)

// Value checks the enumeration, required-value, and numeric upper-bound
// constraints.
//
// in_list flags every value that is not term-equal to a list member.
// has_value emits exactly one violation when no value equals the required
// term. It is an existence check, not a per-value check. max_inclusive
// requires every value to be a literal parseable as a number no greater than
// the bound.
func Value(g graph.Graph, focus shape.Term, ps *shape.PropertyShape) []shape.Result {
	if len(ps.InList) == 0 && ps.HasValue == nil && ps.MaxInclusive == nil {
		return nil
	}

	values := g.Values(focus, ps.Path)

	var out []shape.Result
	if len(ps.InList) > 0 {
		for _, v := range values {
			if termInList(v, ps.InList) {
				continue
			}
			out = append(out, violation(focus, ps,
				fmt.Sprintf("value %s is not in the allowed list", v),
				shape.Details{{Key: "value", Value: v}}))
		}
	}
	if ps.HasValue != nil {
		if !termInList(*ps.HasValue, values) {
			out = append(out, violation(focus, ps,
				fmt.Sprintf("required value %s is missing from %s", *ps.HasValue, ps.Path),
				shape.Details{{Key: "required_value", Value: *ps.HasValue}}))
		}
	}
	if ps.MaxInclusive != nil {
		for _, v := range values {
			if n, ok := v.Number(); ok && n <= *ps.MaxInclusive {
				continue
			}
			out = append(out, violation(focus, ps,
				fmt.Sprintf("value %s exceeds maximum %v or is not numeric", v, *ps.MaxInclusive),
				shape.Details{
					{Key: "value", Value: v},
					{Key: "max_inclusive", Value: *ps.MaxInclusive},
				}))
		}
	}
	return out
}

func termInList(t shape.Term, list []shape.Term) bool {
	for _, member := range list {
		if t == member {
			return true
		}
	}
	return false
}
