package entities

// Ontology is the parsed source graph, reduced to the entities worth synchronizing.
type Ontology struct {
	IRI      string // IRI of the owl:Ontology subject, if declared
	Source   string // File the ontology was read from
	Entities []*OntologyEntity
	index    map[string]*OntologyEntity
}

// NewOntology creates an ontology from entities already sorted in source order.
func NewOntology(iri, source string, list []*OntologyEntity) *Ontology {
	o := &Ontology{
		IRI:      iri,
		Source:   source,
		Entities: list,
		index:    make(map[string]*OntologyEntity, len(list)),
	}
	for _, e := range list {
		o.index[e.IRI] = e
	}
	return o
}

// Get returns the entity with the given IRI.
func (o *Ontology) Get(iri string) (*OntologyEntity, bool) {
	e, ok := o.index[iri]
	return e, ok
}

// CountByKind returns how many entities of each kind the ontology defines.
func (o *Ontology) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, 3)
	for _, e := range o.Entities {
		counts[e.Kind]++
	}
	return counts
}
