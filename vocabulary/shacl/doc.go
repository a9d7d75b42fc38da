// Package shacl provides IRI constants from the W3C Shapes Constraint
// Language vocabulary, used when serializing validation results for
// downstream consumers.
//
// The engine implements a fixed subset of SHACL semantics; this package only
// carries the identifiers that appear in reports, not the full vocabulary.
package shacl
