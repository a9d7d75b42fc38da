package validator

import (
	"fmt"
	"unicode/utf8"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
)

// String checks the pattern and min_length constraints. Both apply to the
// lexical form of literal values; a non-literal value fails either check.
// Patterns are precompiled by the shape source (shape.CompilePattern anchors
// them to the full form) and matched against the whole lexical form. Length
// is counted in runes, not bytes.
func String(g graph.Graph, focus shape.Term, ps *shape.PropertyShape) []shape.Result {
	if ps.Pattern == nil && ps.MinLength == nil {
		return nil
	}

	values := g.Values(focus, ps.Path)

	var out []shape.Result
	if ps.Pattern != nil {
		for _, v := range values {
			if v.Kind == shape.Literal && ps.Pattern.MatchString(v.Value) {
				continue
			}
			out = append(out, violation(focus, ps,
				fmt.Sprintf("value %s does not match pattern %s", v, ps.Pattern),
				shape.Details{
					{Key: "value", Value: v},
					{Key: "pattern", Value: ps.Pattern.String()},
				}))
		}
	}
	if ps.MinLength != nil {
		for _, v := range values {
			if v.Kind == shape.Literal && utf8.RuneCountInString(v.Value) >= *ps.MinLength {
				continue
			}
			out = append(out, violation(focus, ps,
				fmt.Sprintf("value %s is shorter than %d characters", v, *ps.MinLength),
				shape.Details{
					{Key: "value", Value: v},
					{Key: "min_length", Value: *ps.MinLength},
				}))
		}
	}
	return out
}
