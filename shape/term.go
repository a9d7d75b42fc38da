package shape

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/c360studio/semshape/vocabulary/rdf"
)

// TermKind discriminates the three kinds of graph value.
type TermKind uint8

const (
	// IRI identifies a term by absolute IRI.
	IRI TermKind = iota

	// BlankNode identifies a term by graph-local label.
	BlankNode

	// Literal carries a lexical form with a datatype and optional language tag.
	Literal
)

func (k TermKind) String() string {
	switch k {
	case IRI:
		return "iri"
	case BlankNode:
		return "blank"
	case Literal:
		return "literal"
	}
	return "unknown"
}

// Term is a single RDF value: an IRI, a blank node, or a literal.
//
// Term is comparable; equality is structural. IRIs compare by string, blank
// nodes by label, literals by (lexical form, datatype, language). No numeric
// canonicalization, so "1"^^xsd:integer and "1.0"^^xsd:decimal are distinct.
type Term struct {
	Kind     TermKind
	Value    string // IRI string, blank-node label, or literal lexical form
	Datatype string // literal datatype IRI; empty for IRI and blank-node terms
	Lang     string // literal language tag; empty unless rdf:langString
}

// NewIRI returns an IRI term.
func NewIRI(iri string) Term {
	return Term{Kind: IRI, Value: iri}
}

// NewBlankNode returns a blank-node term with the given label (without the
// "_:" prefix).
func NewBlankNode(label string) Term {
	return Term{Kind: BlankNode, Value: label}
}

// NewLiteral returns a literal term with an explicit datatype.
func NewLiteral(lexical, datatype string) Term {
	return Term{Kind: Literal, Value: lexical, Datatype: datatype}
}

// NewString returns an xsd:string literal.
func NewString(s string) Term {
	return NewLiteral(s, rdf.XSDString)
}

// NewLangString returns a language-tagged literal.
func NewLangString(lexical, lang string) Term {
	return Term{Kind: Literal, Value: lexical, Datatype: rdf.LangString, Lang: lang}
}

// NewInteger returns an xsd:integer literal.
func NewInteger(v int64) Term {
	return NewLiteral(strconv.FormatInt(v, 10), rdf.XSDInteger)
}

// NewDecimal returns an xsd:decimal literal.
func NewDecimal(v float64) Term {
	return NewLiteral(strconv.FormatFloat(v, 'f', -1, 64), rdf.XSDDecimal)
}

// NewBoolean returns an xsd:boolean literal.
func NewBoolean(v bool) Term {
	return NewLiteral(strconv.FormatBool(v), rdf.XSDBoolean)
}

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool { return t.Kind == Literal }

// IsResource reports whether the term can appear as a triple subject
// (an IRI or a blank node).
func (t Term) IsResource() bool { return t.Kind == IRI || t.Kind == BlankNode }

// Number parses the term's lexical form as a number. The second return is
// false for non-literals, literals without a numeric datatype, and lexical
// forms that do not parse. An xsd:string holding digits is not a number.
func (t Term) Number() (float64, bool) {
	if t.Kind != Literal || !rdf.IsNumeric(t.Datatype) {
		return 0, false
	}
	f, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String renders the term in N-Triples style: <iri>, _:label, or a quoted
// literal with datatype or language suffix. This is also the canonical form
// substituted for $this in rule-constraint queries.
func (t Term) String() string {
	switch t.Kind {
	case IRI:
		return "<" + t.Value + ">"
	case BlankNode:
		return "_:" + t.Value
	case Literal:
		q := strconv.Quote(t.Value)
		if t.Lang != "" {
			return q + "@" + t.Lang
		}
		if t.Datatype != "" && t.Datatype != rdf.XSDString {
			return q + "^^<" + t.Datatype + ">"
		}
		return q
	}
	return ""
}

type termJSON struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(termJSON{
		Kind:     t.Kind.String(),
		Value:    t.Value,
		Datatype: t.Datatype,
		Lang:     t.Lang,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Term) UnmarshalJSON(data []byte) error {
	var raw termJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "iri":
		t.Kind = IRI
	case "blank":
		t.Kind = BlankNode
	case "literal":
		t.Kind = Literal
	default:
		return fmt.Errorf("unknown term kind %q", raw.Kind)
	}
	t.Value = raw.Value
	t.Datatype = raw.Datatype
	t.Lang = raw.Lang
	return nil
}
