package entities

// Well-known predicate IRIs relations are usually made of.
const (
	RDFType           = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSSubClassOf    = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	RDFSSubPropertyOf = "http://www.w3.org/2000/01/rdf-schema#subPropertyOf"
	RDFSDomain        = "http://www.w3.org/2000/01/rdf-schema#domain"
	RDFSRange         = "http://www.w3.org/2000/01/rdf-schema#range"
)

// Relation is a directed edge from an ontology entity to another entity or a literal.
type Relation struct {
	Predicate string `json:"predicate"` // Predicate IRI
	Object    Value  `json:"object"`
}

// Value is the object of a relation: either an IRI or a literal.
type Value struct {
	IRI     string `json:"iri,omitempty"`
	Literal string `json:"literal,omitempty"`
	Lang    string `json:"lang,omitempty"`
}

// IsLiteral reports whether the value is a literal rather than a reference.
func (v Value) IsLiteral() bool {
	return v.IRI == ""
}

// String returns the IRI or the literal text.
func (v Value) String() string {
	if v.IsLiteral() {
		return v.Literal
	}
	return v.IRI
}
