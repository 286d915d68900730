package services

import (
	"github.com/elliotchance/pie/v2"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// newEntityEdit builds the create payload of an ontology entity.
func newEntityEdit(e *entities.OntologyEntity, sourceIRIProperty string) *entities.EntityEdit {
	edit := &entities.EntityEdit{
		Kind:         e.Kind.RemoteKind(),
		Labels:       truncateAll(e.Labels),
		Descriptions: truncateAll(e.Descriptions),
	}

	if edit.Kind == entities.RemoteProperty {
		edit.Datatype = e.Datatype
		if edit.Datatype == "" {
			edit.Datatype = entities.DatatypeString
		}
	}

	if sourceIRIProperty != "" {
		edit.Claims = append(edit.Claims, entities.Claim{
			PropertyID: sourceIRIProperty,
			Value:      entities.ClaimValue{Text: e.IRI},
		})
	}

	return edit
}

// diffEntity returns the labels and descriptions of e that differ from remote.
// Languages only present remotely are left alone.
func diffEntity(e *entities.OntologyEntity, remote *entities.RemoteEntity) *entities.EntityEdit {
	return &entities.EntityEdit{
		Kind:         remote.Kind,
		Labels:       changedTexts(e.Labels, remote.Labels),
		Descriptions: changedTexts(e.Descriptions, remote.Descriptions),
	}
}

// applyEdit mirrors a successful edit onto the local copy of the remote entity.
func applyEdit(remote *entities.RemoteEntity, edit *entities.EntityEdit) {
	if remote.Labels == nil {
		remote.Labels = make(map[string]string, len(edit.Labels))
	}
	if remote.Descriptions == nil {
		remote.Descriptions = make(map[string]string, len(edit.Descriptions))
	}
	for lang, text := range edit.Labels {
		remote.Labels[lang] = text
	}
	for lang, text := range edit.Descriptions {
		remote.Descriptions[lang] = text
	}
	for _, c := range edit.Claims {
		remote.AddClaim(c)
	}
}

func changedTexts(local, remote map[string]string) map[string]string {
	var changed map[string]string
	for _, lang := range pie.Sort(pie.Keys(local)) {
		text := entities.Truncate(local[lang])
		if text == "" || remote[lang] == text {
			continue
		}
		if changed == nil {
			changed = make(map[string]string)
		}
		changed[lang] = text
	}
	return changed
}

func truncateAll(texts map[string]string) map[string]string {
	out := make(map[string]string, len(texts))
	for lang, text := range texts {
		if text != "" {
			out[lang] = entities.Truncate(text)
		}
	}
	return out
}
