package validator

import (
	"fmt"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/vocabulary/rdf"
)

// Qualified counts only the values carrying an explicit rdf:type assertion
// for the qualified class, and checks that count against
// qualified_min_count. It is a complete no-op when both fields are absent.
func Qualified(g graph.Graph, focus shape.Term, ps *shape.PropertyShape) []shape.Result {
	if ps.QualifiedClass == "" && ps.QualifiedMinCount == nil {
		return nil
	}

	classTerm := shape.NewIRI(ps.QualifiedClass)
	qualified := 0
	for _, v := range g.Values(focus, ps.Path) {
		if v.IsResource() && g.Has(v, rdf.Type, classTerm) {
			qualified++
		}
	}

	if ps.QualifiedMinCount == nil || qualified >= *ps.QualifiedMinCount {
		return nil
	}

	return []shape.Result{violation(focus, ps,
		fmt.Sprintf("only %d values of %s are instances of %s, need at least %d",
			qualified, ps.Path, ps.QualifiedClass, *ps.QualifiedMinCount),
		shape.Details{
			{Key: "qualified_count", Value: qualified},
			{Key: "qualified_min_count", Value: *ps.QualifiedMinCount},
			{Key: "qualified_class", Value: ps.QualifiedClass},
		})}
}
