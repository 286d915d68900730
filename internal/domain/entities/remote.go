package entities

// ClaimValue is the value of a WikiBase statement. Exactly one field is set.
type ClaimValue struct {
	EntityID string `json:"entity_id,omitempty"` // Reference to an item or property
	Text     string `json:"text,omitempty"`      // string or url value
}

// IsReference reports whether the value points at another entity.
func (v ClaimValue) IsReference() bool {
	return v.EntityID != ""
}

func (v ClaimValue) String() string {
	if v.IsReference() {
		return v.EntityID
	}
	return v.Text
}

// Claim is a statement to be written on an entity.
type Claim struct {
	PropertyID string     `json:"property_id"`
	Value      ClaimValue `json:"value"`
}

// RemoteEntity is the WikiBase side of an ontology entity.
type RemoteEntity struct {
	ID           string                  `json:"id"`
	Kind         RemoteKind              `json:"kind"`
	Datatype     string                  `json:"datatype,omitempty"`
	Labels       map[string]string       `json:"labels"`
	Descriptions map[string]string       `json:"descriptions"`
	Claims       map[string][]ClaimValue `json:"claims,omitempty"`
}

// HasClaim reports whether the entity already carries the given statement.
func (r *RemoteEntity) HasClaim(c Claim) bool {
	for _, v := range r.Claims[c.PropertyID] {
		if v == c.Value {
			return true
		}
	}
	return false
}

// AddClaim records a statement locally after it was written remotely.
func (r *RemoteEntity) AddClaim(c Claim) {
	if r.Claims == nil {
		r.Claims = make(map[string][]ClaimValue)
	}
	r.Claims[c.PropertyID] = append(r.Claims[c.PropertyID], c.Value)
}

// EntityEdit is the payload of a create or update call.
// On update only the fields that differ from the remote state are set.
type EntityEdit struct {
	Kind         RemoteKind        `json:"kind"`
	Datatype     string            `json:"datatype,omitempty"` // only on property creation
	Labels       map[string]string `json:"labels,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
	Claims       []Claim           `json:"claims,omitempty"`
}

// IsEmpty reports whether the edit would not change anything.
func (e *EntityEdit) IsEmpty() bool {
	return len(e.Labels) == 0 && len(e.Descriptions) == 0 && len(e.Claims) == 0
}
