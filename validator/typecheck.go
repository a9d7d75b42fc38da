package validator

import (
	"fmt"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/vocabulary/rdf"
)

// Type checks the datatype and class constraints. Datatype requires every
// value to be a literal of the exact datatype IRI. Class requires every value
// to carry an explicit rdf:type assertion for the class, with no transitive
// reasoning, which a literal can never satisfy. Both checks run
// independently and their results concatenate, datatype first.
func Type(g graph.Graph, focus shape.Term, ps *shape.PropertyShape) []shape.Result {
	if ps.Datatype == "" && ps.Class == "" {
		return nil
	}

	values := g.Values(focus, ps.Path)

	var out []shape.Result
	if ps.Datatype != "" {
		for _, v := range values {
			if v.Kind == shape.Literal && v.Datatype == ps.Datatype {
				continue
			}
			out = append(out, violation(focus, ps,
				fmt.Sprintf("value %s is not a literal of datatype %s", v, ps.Datatype),
				shape.Details{
					{Key: "value", Value: v},
					{Key: "datatype", Value: ps.Datatype},
				}))
		}
	}
	if ps.Class != "" {
		classTerm := shape.NewIRI(ps.Class)
		for _, v := range values {
			if v.IsResource() && g.Has(v, rdf.Type, classTerm) {
				continue
			}
			out = append(out, violation(focus, ps,
				fmt.Sprintf("value %s is not an instance of %s", v, ps.Class),
				shape.Details{
					{Key: "value", Value: v},
					{Key: "class", Value: ps.Class},
				}))
		}
	}
	return out
}
