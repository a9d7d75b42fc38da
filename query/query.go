// Package query defines the contract between the rule-constraint validator
// and an external query engine. The validation engine never executes queries
// itself; it binds the focus node into a rule's query template and hands the
// bound string to an Executor.
package query

import (
	"context"
	"fmt"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
)

// Binding is one bound variable of a result row.
type Binding struct {
	Var  string
	Term shape.Term
}

// Row is the ordered set of variable bindings produced for one query match.
type Row []Binding

// Executor runs a bound query string against a graph and returns one row per
// match. Implementations must be safe for concurrent use; the engine may call
// Execute from multiple dispatch units at once.
type Executor interface {
	Execute(ctx context.Context, g graph.Graph, query string) ([]Row, error)
}

// Error wraps a query execution failure with the query that caused it.
// The engine surfaces it as an engine-error result for the affected unit
// rather than aborting the run.
type Error struct {
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
