// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// RemoteStore defines the operations the synchronizer needs from a WikiBase instance.
// All calls are blocking and are never retried.
type RemoteStore interface {
	// Endpoint returns the API URL, for logs and the journal.
	Endpoint() string

	// Login authenticates the session. Rejected credentials yield *entities.AuthenticationError.
	Login(ctx context.Context, username, password string) error

	// SearchByLabel returns the IDs of entities of the given kind whose label in
	// language equals label exactly (case-sensitive).
	SearchByLabel(ctx context.Context, label, language string, kind entities.RemoteKind) ([]string, error)

	// SearchBySourceIRI returns the IDs of entities carrying a propertyID statement equal to iri.
	SearchBySourceIRI(ctx context.Context, propertyID, iri string) ([]string, error)

	// GetEntities fetches labels, descriptions and claims of the given IDs.
	// Missing IDs are left out of the result.
	GetEntities(ctx context.Context, ids []string) ([]*entities.RemoteEntity, error)

	// CreateEntity creates a new item or property and returns its assigned ID.
	CreateEntity(ctx context.Context, edit *entities.EntityEdit) (string, error)

	// EditEntity applies the edit to an existing entity.
	EditEntity(ctx context.Context, id string, edit *entities.EntityEdit) error
}
