package rdf

// Namespace is the base IRI prefix for the RDF vocabulary.
const Namespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// XSDNamespace is the base IRI prefix for XML Schema datatypes.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

// Core RDF terms.
const (
	// Type is the rdf:type predicate asserting class membership.
	// The engine honors explicit type assertions only; no subclass reasoning.
	Type = Namespace + "type"

	// LangString is the datatype of language-tagged literals.
	LangString = Namespace + "langString"
)

// XSD datatype IRIs assigned to literals.
const (
	// XSDString is the default datatype for plain string literals.
	XSDString = XSDNamespace + "string"

	// XSDBoolean is the datatype for true/false literals.
	XSDBoolean = XSDNamespace + "boolean"

	// XSDInteger is the datatype for whole-number literals.
	XSDInteger = XSDNamespace + "integer"

	// XSDDecimal is the datatype for arbitrary-precision decimal literals.
	XSDDecimal = XSDNamespace + "decimal"

	// XSDDouble is the datatype for floating-point literals.
	XSDDouble = XSDNamespace + "double"

	// XSDDateTime is the datatype for timestamp literals (RFC 3339 lexical form).
	XSDDateTime = XSDNamespace + "dateTime"
)

// IsNumeric reports whether datatype is one of the XSD numeric datatypes the
// engine knows how to parse for bounded-numeric checks.
func IsNumeric(datatype string) bool {
	switch datatype {
	case XSDInteger, XSDDecimal, XSDDouble:
		return true
	}
	return false
}
