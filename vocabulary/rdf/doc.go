// Package rdf provides IRI constants for the core RDF and XSD vocabularies
// used by the validation engine.
//
// Only the terms the engine actually dereferences are defined here: the
// rdf:type predicate for class membership and target selection, and the XSD
// datatype IRIs assigned to literals during triple ingestion.
package rdf
