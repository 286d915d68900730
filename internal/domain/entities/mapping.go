package entities

// Mapping links stable identifiers of ontology entities to their remote counterparts.
// It lives for a single run and is passed explicitly to every sync step.
type Mapping struct {
	byIRI map[string]*RemoteEntity
	byID  map[string]string // remote ID -> IRI
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{
		byIRI: make(map[string]*RemoteEntity),
		byID:  make(map[string]string),
	}
}

// Bind maps iri to remote. Binding an identifier to a second, different remote
// entity, or binding one remote entity to two identifiers, is a DuplicateMatchError.
func (m *Mapping) Bind(iri string, remote *RemoteEntity) error {
	if existing, ok := m.byIRI[iri]; ok && existing.ID != remote.ID {
		return &DuplicateMatchError{IRI: iri, RemoteIDs: []string{existing.ID, remote.ID}}
	}
	if other, ok := m.byID[remote.ID]; ok && other != iri {
		return &DuplicateMatchError{IRI: iri, RemoteIDs: []string{remote.ID}, OtherIRI: other}
	}
	m.byIRI[iri] = remote
	m.byID[remote.ID] = iri
	return nil
}

// Lookup returns the remote entity bound to iri.
func (m *Mapping) Lookup(iri string) (*RemoteEntity, bool) {
	r, ok := m.byIRI[iri]
	return r, ok
}

// Contains reports whether iri is bound.
func (m *Mapping) Contains(iri string) bool {
	_, ok := m.byIRI[iri]
	return ok
}

// RemoteID returns the remote ID bound to iri.
func (m *Mapping) RemoteID(iri string) (string, bool) {
	r, ok := m.byIRI[iri]
	if !ok {
		return "", false
	}
	return r.ID, true
}

// IRIOf returns the identifier a remote ID is bound to.
func (m *Mapping) IRIOf(remoteID string) (string, bool) {
	iri, ok := m.byID[remoteID]
	return iri, ok
}

// Len returns the number of bound identifiers.
func (m *Mapping) Len() int {
	return len(m.byIRI)
}
