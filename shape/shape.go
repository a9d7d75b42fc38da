// Package shape defines the immutable shape and result model for the
// validation engine: graph terms, node and property shapes, rule constraints,
// validation results, and the aggregate report.
//
// Shapes are constructed once by a shape source before a validation run and
// never mutated afterwards. An absent optional field means "this constraint
// kind is not checked", never "checked against zero".
package shape

import (
	"fmt"
	"regexp"
)

// PropertyShape constrains the values reachable from a focus node via a
// single predicate path. Nil pointer fields and empty string fields disable
// the corresponding check.
type PropertyShape struct {
	ID   string
	Path string // predicate IRI

	// Cardinality.
	MinCount *int
	MaxCount *int

	// Type.
	Datatype string // required literal datatype IRI
	Class    string // required rdf:type class IRI for each value

	// String. Pattern must match the full lexical form; use CompilePattern
	// so upstream shape sources anchor the expression once.
	Pattern   *regexp.Regexp
	MinLength *int

	// Value.
	InList       []Term // allowed values; empty slice disables the check
	HasValue     *Term  // at least one value must equal this term
	MaxInclusive *float64

	// Qualified counting: only values carrying rdf:type QualifiedClass count
	// toward QualifiedMinCount.
	QualifiedClass    string
	QualifiedMinCount *int

	// Message overrides the constraint-specific default verbatim when set.
	Message string
}

// Validate checks structural soundness of the property shape.
func (p *PropertyShape) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("property shape %s: path is required", p.ID)
	}
	if p.MinCount != nil && *p.MinCount < 0 {
		return fmt.Errorf("property shape %s: min_count must be non-negative", p.ID)
	}
	if p.MaxCount != nil && *p.MaxCount < 0 {
		return fmt.Errorf("property shape %s: max_count must be non-negative", p.ID)
	}
	if p.MinCount != nil && p.MaxCount != nil && *p.MinCount > *p.MaxCount {
		return fmt.Errorf("property shape %s: min_count %d exceeds max_count %d", p.ID, *p.MinCount, *p.MaxCount)
	}
	if p.MinLength != nil && *p.MinLength < 0 {
		return fmt.Errorf("property shape %s: min_length must be non-negative", p.ID)
	}
	if p.QualifiedMinCount != nil && *p.QualifiedMinCount < 0 {
		return fmt.Errorf("property shape %s: qualified_min_count must be non-negative", p.ID)
	}
	if p.QualifiedMinCount != nil && p.QualifiedClass == "" {
		return fmt.Errorf("property shape %s: qualified_min_count requires qualified_class", p.ID)
	}
	return nil
}

// RuleConstraint is a node-level, query-based constraint. Every occurrence of
// $this in the template is replaced with the canonical serialization of the
// focus node before the query is handed to the executor. Each returned
// binding row becomes one violation.
type RuleConstraint struct {
	SourceShapeID string
	QueryTemplate string
	Message       string
}

// Validate checks structural soundness of the rule constraint.
func (r *RuleConstraint) Validate() error {
	if r.QueryTemplate == "" {
		return fmt.Errorf("rule constraint of shape %s: query template is required", r.SourceShapeID)
	}
	return nil
}

// NodeShape bundles the constraints applied to every member of its target
// classes. Property shapes and rule constraints are evaluated in declaration
// order.
type NodeShape struct {
	ID              string
	TargetClasses   []string // class IRIs; empty means the shape selects no focus nodes
	PropertyShapes  []*PropertyShape
	RuleConstraints []RuleConstraint
}

// Validate checks the node shape and all nested constraints.
func (n *NodeShape) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("node shape: id is required")
	}
	for _, ps := range n.PropertyShapes {
		if err := ps.Validate(); err != nil {
			return fmt.Errorf("node shape %s: %w", n.ID, err)
		}
	}
	for i := range n.RuleConstraints {
		if err := n.RuleConstraints[i].Validate(); err != nil {
			return fmt.Errorf("node shape %s: %w", n.ID, err)
		}
	}
	return nil
}

// CompilePattern compiles a constraint pattern anchored to the full lexical
// form, so "a+" matches "aaa" but not "baaab". Shape sources compile patterns
// once at load time; validators never recompile.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + expr + `)\z`)
}

// MustCompilePattern is CompilePattern for statically known expressions.
func MustCompilePattern(expr string) *regexp.Regexp {
	re, err := CompilePattern(expr)
	if err != nil {
		panic(fmt.Sprintf("shape: invalid pattern %q: %v", expr, err))
	}
	return re
}

// Int returns a pointer to v, for populating optional count fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for populating optional numeric bounds.
func Float(v float64) *float64 { return &v }
