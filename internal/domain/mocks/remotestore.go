// Package mocks provides hand-written test doubles for the domain ports.
package mocks

import (
	"context"
	"fmt"
	"sort"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// RemoteStore is an in-memory mock implementation of ports.RemoteStore.
// It assigns IDs sequentially per kind, like a fresh WikiBase would.
type RemoteStore struct {
	Entities map[string]*entities.RemoteEntity

	LoginErr  error
	SearchErr error
	GetErr    error
	// CreateErr and EditErr fail every call; FailLabels fails create/edit of
	// entities whose default label is listed.
	CreateErr  error
	EditErr    error
	FailLabels map[string]error

	LoggedIn    bool
	CreateCalls []*entities.EntityEdit
	EditCalls   []EditCall

	nextItem     int
	nextProperty int
}

// EditCall records a single EditEntity invocation.
type EditCall struct {
	ID   string
	Edit *entities.EntityEdit
}

// NewRemoteStore creates a new mock RemoteStore.
func NewRemoteStore() *RemoteStore {
	return &RemoteStore{
		Entities:   make(map[string]*entities.RemoteEntity),
		FailLabels: make(map[string]error),
	}
}

// Seed adds a pre-existing remote entity and returns it.
func (m *RemoteStore) Seed(id, label, description string) *entities.RemoteEntity {
	kind, _ := entities.RemoteKindOf(id)
	r := &entities.RemoteEntity{
		ID:           id,
		Kind:         kind,
		Labels:       map[string]string{},
		Descriptions: map[string]string{},
	}
	if label != "" {
		r.Labels[entities.DefaultLanguage] = label
	}
	if description != "" {
		r.Descriptions[entities.DefaultLanguage] = description
	}
	m.Entities[id] = r
	return r
}

// Endpoint returns a fixed URL.
func (m *RemoteStore) Endpoint() string {
	return "http://wikibase.test/w/api.php"
}

// Login records the login.
func (m *RemoteStore) Login(_ context.Context, _, _ string) error {
	if m.LoginErr != nil {
		return m.LoginErr
	}
	m.LoggedIn = true
	return nil
}

// SearchByLabel finds entities with an exact label match.
func (m *RemoteStore) SearchByLabel(_ context.Context, label, language string, kind entities.RemoteKind) ([]string, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var ids []string
	for id, r := range m.Entities {
		if r.Kind == kind && r.Labels[language] == label {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// SearchBySourceIRI finds entities carrying a statement propertyID = iri.
func (m *RemoteStore) SearchBySourceIRI(_ context.Context, propertyID, iri string) ([]string, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var ids []string
	for id, r := range m.Entities {
		if r.HasClaim(entities.Claim{PropertyID: propertyID, Value: entities.ClaimValue{Text: iri}}) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// GetEntities returns copies of the stored entities.
func (m *RemoteStore) GetEntities(_ context.Context, ids []string) ([]*entities.RemoteEntity, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	result := make([]*entities.RemoteEntity, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.Entities[id]; ok {
			result = append(result, clone(r))
		}
	}
	return result, nil
}

// CreateEntity stores a new entity under the next free ID.
func (m *RemoteStore) CreateEntity(_ context.Context, edit *entities.EntityEdit) (string, error) {
	m.CreateCalls = append(m.CreateCalls, edit)
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if err := m.FailLabels[edit.Labels[entities.DefaultLanguage]]; err != nil {
		return "", err
	}

	var id string
	if edit.Kind == entities.RemoteProperty {
		m.nextProperty++
		id = fmt.Sprintf("P%d", 1000+m.nextProperty)
	} else {
		m.nextItem++
		id = fmt.Sprintf("Q%d", 1000+m.nextItem)
	}

	r := &entities.RemoteEntity{
		ID:           id,
		Kind:         edit.Kind,
		Datatype:     edit.Datatype,
		Labels:       copyTexts(edit.Labels),
		Descriptions: copyTexts(edit.Descriptions),
	}
	for _, c := range edit.Claims {
		r.AddClaim(c)
	}
	m.Entities[id] = r
	return id, nil
}

// EditEntity applies labels, descriptions and claims to a stored entity.
func (m *RemoteStore) EditEntity(_ context.Context, id string, edit *entities.EntityEdit) error {
	m.EditCalls = append(m.EditCalls, EditCall{ID: id, Edit: edit})
	if m.EditErr != nil {
		return m.EditErr
	}
	r, ok := m.Entities[id]
	if !ok {
		return fmt.Errorf("no-such-entity: %s", id)
	}
	if err := m.FailLabels[r.Labels[entities.DefaultLanguage]]; err != nil {
		return err
	}
	for lang, text := range edit.Labels {
		r.Labels[lang] = text
	}
	for lang, text := range edit.Descriptions {
		r.Descriptions[lang] = text
	}
	for _, c := range edit.Claims {
		r.AddClaim(c)
	}
	return nil
}

// ResetCalls forgets recorded calls, keeping the stored entities.
func (m *RemoteStore) ResetCalls() {
	m.CreateCalls = nil
	m.EditCalls = nil
}

func clone(r *entities.RemoteEntity) *entities.RemoteEntity {
	c := *r
	c.Labels = copyTexts(r.Labels)
	c.Descriptions = copyTexts(r.Descriptions)
	c.Claims = make(map[string][]entities.ClaimValue, len(r.Claims))
	for p, values := range r.Claims {
		c.Claims[p] = append([]entities.ClaimValue(nil), values...)
	}
	return &c
}

func copyTexts(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
