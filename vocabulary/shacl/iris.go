package shacl

// Namespace is the base IRI prefix for the SHACL vocabulary.
const Namespace = "http://www.w3.org/ns/shacl#"

// Severity IRIs for validation results.
const (
	// Violation marks a constraint failure that makes the report non-conforming.
	Violation = Namespace + "Violation"

	// Warning marks an advisory result that does not affect conformance.
	Warning = Namespace + "Warning"

	// Info marks an informational result.
	Info = Namespace + "Info"
)

// EngineError is the severity IRI for infrastructure failures surfaced inside
// a report: aborted units, panics, and rule-query execution errors. It is not
// part of the W3C vocabulary, since SHACL has no severity for "could not evaluate",
// so it lives under the semshape ontology namespace.
const EngineError = "https://semshape.dev/ontology/validation/EngineError"

// Report structure IRIs.
const (
	// ValidationReport is the class of validation reports.
	ValidationReport = Namespace + "ValidationReport"

	// ValidationResult is the class of individual results.
	ValidationResult = Namespace + "ValidationResult"

	// Conforms is the property carrying the report-level conformance boolean.
	Conforms = Namespace + "conforms"
)
