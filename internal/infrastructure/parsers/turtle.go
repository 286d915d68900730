package parsers

import (
	"errors"
	"io"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/knakk/rdf"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

const (
	rdfNS     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rdfsNS    = "http://www.w3.org/2000/01/rdf-schema#"
	owlNS     = "http://www.w3.org/2002/07/owl#"
	skosNS    = "http://www.w3.org/2004/02/skos/core#"
	dctermsNS = "http://purl.org/dc/terms/"
	dcNS      = "http://purl.org/dc/elements/1.1/"
	xsdNS     = "http://www.w3.org/2001/XMLSchema#"
)

// Predicates whose literals become labels, in priority order.
var labelPredicates = []string{
	rdfsNS + "label",
	skosNS + "prefLabel",
	dctermsNS + "title",
	dcNS + "title",
}

// Predicates whose literals become descriptions, in priority order.
var descriptionPredicates = []string{
	rdfsNS + "comment",
	skosNS + "definition",
	dctermsNS + "description",
	dcNS + "description",
}

// Structural predicates that never become relations.
var ignoredPredicates = map[string]bool{
	owlNS + "cardinality":    true,
	owlNS + "minCardinality": true,
	owlNS + "maxCardinality": true,
}

// Types that carry no meaning beyond marking an individual.
var markerTypes = map[string]bool{
	owlNS + "NamedIndividual": true,
	owlNS + "Thing":           true,
}

// textSeparator joins several values in the same language.
const textSeparator = "\n\n"

// TurtleParser reads an ontology from Turtle.
type TurtleParser struct{}

type subject struct {
	iri     string
	triples []rdf.Triple
}

// Parse reads all triples and reduces them to the classes, properties and
// individuals of the ontology, in order of first appearance. Syntax errors
// are reported as *entities.ParseError.
func (p *TurtleParser) Parse(r io.Reader, source string) (*entities.Ontology, error) {
	subjects, err := p.decode(r)
	if err != nil {
		return nil, &entities.ParseError{File: source, Err: err}
	}

	var ontologyIRI string
	list := make([]*entities.OntologyEntity, 0, len(subjects))

	for _, s := range subjects {
		types := objectIRIs(s.triples, entities.RDFType)

		if pie.Contains(types, owlNS+"Ontology") {
			ontologyIRI = s.iri
			continue
		}

		kind, datatype, ok := classify(types, s.triples)
		if !ok {
			continue
		}

		e := &entities.OntologyEntity{
			IRI:          s.iri,
			Kind:         kind,
			Labels:       collectTexts(s.triples, labelPredicates),
			Descriptions: collectTexts(s.triples, descriptionPredicates),
			Datatype:     datatype,
			Relations:    collectRelations(s.triples, kind),
			Position:     len(list),
		}
		if len(e.Labels) == 0 {
			e.Labels[entities.DefaultLanguage] = entities.LocalName(s.iri)
		}
		list = append(list, e)
	}

	return entities.NewOntology(ontologyIRI, source, list), nil
}

// decode groups IRI subjects with their triples, preserving first appearance.
func (p *TurtleParser) decode(r io.Reader) ([]*subject, error) {
	dec := rdf.NewTripleDecoder(r, rdf.Turtle)

	index := make(map[string]*subject)
	var subjects []*subject

	for {
		triple, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		subj, ok := triple.Subj.(rdf.IRI)
		if !ok {
			continue
		}

		iri := subj.String()
		s, ok := index[iri]
		if !ok {
			s = &subject{iri: iri}
			index[iri] = s
			subjects = append(subjects, s)
		}
		s.triples = append(s.triples, triple)
	}

	return subjects, nil
}

// classify derives the kind of a subject from its rdf:type values.
func classify(types []string, triples []rdf.Triple) (entities.Kind, string, bool) {
	switch {
	case pie.Contains(types, owlNS+"Class"), pie.Contains(types, rdfsNS+"Class"):
		return entities.KindClass, "", true
	case pie.Contains(types, owlNS+"ObjectProperty"):
		return entities.KindProperty, entities.DatatypeItem, true
	case pie.Contains(types, owlNS+"DatatypeProperty"),
		pie.Contains(types, owlNS+"AnnotationProperty"),
		pie.Contains(types, rdfNS+"Property"):
		if pie.Contains(objectIRIs(triples, entities.RDFSRange), xsdNS+"anyURI") {
			return entities.KindProperty, entities.DatatypeURL, true
		}
		return entities.KindProperty, entities.DatatypeString, true
	case len(types) > 0:
		return entities.KindIndividual, "", true
	default:
		return "", "", false
	}
}

// collectTexts joins the literals of the given predicates per language.
func collectTexts(triples []rdf.Triple, predicates []string) map[string]string {
	values := make(map[string][]string)
	var order []string

	for _, pred := range predicates {
		for _, t := range triples {
			if t.Pred.String() != pred {
				continue
			}
			lit, ok := t.Obj.(rdf.Literal)
			if !ok {
				continue
			}
			text := strings.TrimSpace(lit.String())
			if text == "" {
				continue
			}
			lang := lit.Lang()
			if lang == "" {
				lang = entities.DefaultLanguage
			}
			if _, seen := values[lang]; !seen {
				order = append(order, lang)
			}
			values[lang] = append(values[lang], text)
		}
	}

	texts := make(map[string]string, len(order))
	for _, lang := range order {
		texts[lang] = strings.Join(values[lang], textSeparator)
	}
	return texts
}

// collectRelations keeps every edge that is not an annotation or structural triple.
func collectRelations(triples []rdf.Triple, kind entities.Kind) []entities.Relation {
	var relations []entities.Relation

	for _, t := range triples {
		pred := t.Pred.String()
		if isTextPredicate(pred) || ignoredPredicates[pred] {
			continue
		}

		var value entities.Value
		switch obj := t.Obj.(type) {
		case rdf.IRI:
			value = entities.Value{IRI: obj.String()}
		case rdf.Literal:
			value = entities.Value{Literal: obj.String(), Lang: obj.Lang()}
		default:
			// Blank nodes (restrictions, lists) have no remote counterpart.
			continue
		}

		if pred == entities.RDFType {
			// Only individuals are instances of something worth a claim.
			if kind != entities.KindIndividual || markerTypes[value.IRI] {
				continue
			}
		}

		relations = append(relations, entities.Relation{Predicate: pred, Object: value})
	}

	return relations
}

func isTextPredicate(pred string) bool {
	return pie.Contains(labelPredicates, pred) || pie.Contains(descriptionPredicates, pred)
}

func objectIRIs(triples []rdf.Triple, pred string) []string {
	var iris []string
	for _, t := range triples {
		if t.Pred.String() != pred {
			continue
		}
		if obj, ok := t.Obj.(rdf.IRI); ok {
			iris = append(iris, obj.String())
		}
	}
	return iris
}
