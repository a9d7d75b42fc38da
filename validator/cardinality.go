package validator

import (
	"fmt"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
)

// Cardinality checks min_count and max_count against the number of values on
// the property path. The two bounds are independent; a shape with both set
// can emit up to two results.
func Cardinality(g graph.Graph, focus shape.Term, ps *shape.PropertyShape) []shape.Result {
	if ps.MinCount == nil && ps.MaxCount == nil {
		return nil
	}

	n := len(g.Values(focus, ps.Path))

	var out []shape.Result
	if ps.MinCount != nil && n < *ps.MinCount {
		out = append(out, violation(focus, ps,
			fmt.Sprintf("too few values for %s: got %d, need at least %d", ps.Path, n, *ps.MinCount),
			shape.Details{
				{Key: "actual_count", Value: n},
				{Key: "min_count", Value: *ps.MinCount},
			}))
	}
	if ps.MaxCount != nil && n > *ps.MaxCount {
		out = append(out, violation(focus, ps,
			fmt.Sprintf("too many values for %s: got %d, allowed at most %d", ps.Path, n, *ps.MaxCount),
			shape.Details{
				{Key: "actual_count", Value: n},
				{Key: "max_count", Value: *ps.MaxCount},
			}))
	}
	return out
}
