package entities

// Kind is the tagged variant of an ontology entity.
type Kind string

const (
	KindClass      Kind = "class"
	KindProperty   Kind = "property"
	KindIndividual Kind = "individual"
)

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindClass, KindProperty, KindIndividual:
		return true
	default:
		return false
	}
}

// RemoteKind returns the WikiBase entity type an ontology kind is stored as.
// Classes and individuals both become items.
func (k Kind) RemoteKind() RemoteKind {
	switch k {
	case KindProperty:
		return RemoteProperty
	default:
		return RemoteItem
	}
}

// RemoteKind is the type of a WikiBase entity.
type RemoteKind string

const (
	RemoteItem     RemoteKind = "item"
	RemoteProperty RemoteKind = "property"
)

// IDPrefix returns the letter WikiBase uses for IDs of this kind.
func (k RemoteKind) IDPrefix() string {
	if k == RemoteProperty {
		return "P"
	}
	return "Q"
}

// RemoteKindOf derives the entity type from a WikiBase ID like "Q12" or "P7".
func RemoteKindOf(id string) (RemoteKind, bool) {
	if len(id) < 2 {
		return "", false
	}
	switch id[0] {
	case 'Q':
		return RemoteItem, true
	case 'P':
		return RemoteProperty, true
	default:
		return "", false
	}
}

// WikiBase datatypes used for created properties.
const (
	DatatypeItem   = "wikibase-item"
	DatatypeString = "string"
	DatatypeURL    = "url"
)
