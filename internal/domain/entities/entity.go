// Package entities contains core domain data structures.
package entities

import "strings"

// DefaultLanguage is used for literals without a language tag.
const DefaultLanguage = "en"

// MaxTextLength is the longest label or description WikiBase accepts.
const MaxTextLength = 250

// OntologyEntity is a class, property or individual read from the source graph.
// It is immutable once the parser has produced it.
type OntologyEntity struct {
	IRI          string            `json:"iri"`  // Stable identifier
	Kind         Kind              `json:"kind"` // class, property or individual
	Labels       map[string]string `json:"labels"`
	Descriptions map[string]string `json:"descriptions"`
	Datatype     string            `json:"datatype,omitempty"` // WikiBase datatype, properties only
	Relations    []Relation        `json:"relations,omitempty"`
	Position     int               `json:"position"` // Order of first appearance in the source
}

// Label returns the label in the given language, or "" when there is none.
func (e *OntologyEntity) Label(lang string) string {
	return e.Labels[lang]
}

// DisplayName returns a human readable name for logs: the default label, else the IRI.
func (e *OntologyEntity) DisplayName() string {
	if label := e.Labels[DefaultLanguage]; label != "" {
		return label
	}
	return e.IRI
}

// Truncate shortens text to MaxTextLength, marking the cut with "...".
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxTextLength {
		return text
	}
	return string(runes[:MaxTextLength-3]) + "..."
}

// LocalName returns the part of an IRI after the last '#' or '/'.
func LocalName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}
