// Package graph provides the read-only triple-graph interface consumed by the
// validators and an in-memory implementation fed from knowledge-graph entity
// ingestion messages.
package graph

import (
	"github.com/c360studio/semshape/shape"
)

// Graph is the read surface the validation engine requires. Implementations
// must be safe for concurrent reads; the engine never writes.
type Graph interface {
	// Values returns every object of (subject, predicate) triples in
	// backing-store order, duplicates preserved.
	Values(subject shape.Term, predicate string) []shape.Term

	// Has reports whether the exact triple exists.
	Has(subject shape.Term, predicate string, object shape.Term) bool

	// SubjectsWith returns the distinct subjects of triples with the given
	// predicate and object, in first-seen order. Target selection uses this
	// with the rdf:type predicate to enumerate class members.
	SubjectsWith(predicate string, object shape.Term) []shape.Term
}
