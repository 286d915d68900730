package wikibase

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

var reEntityID = regexp.MustCompile(`\b[QP][1-9][0-9]*\b`)

type tokensResponse struct {
	Query struct {
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
}

type clientLoginResponse struct {
	ClientLogin struct {
		Status      string `json:"status"`
		Username    string `json:"username"`
		Message     string `json:"message"`
		MessageCode string `json:"messagecode"`
	} `json:"clientlogin"`
}

type searchEntitiesResponse struct {
	Search []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Match struct {
			Type     string `json:"type"`
			Language string `json:"language"`
			Text     string `json:"text"`
		} `json:"match"`
	} `json:"search"`
}

type searchResponse struct {
	Query struct {
		Search []struct {
			NS    int    `json:"ns"`
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type getEntitiesResponse struct {
	Entities map[string]entityDocument `json:"entities"`
}

type editEntityResponse struct {
	Entity struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"entity"`
	Success int `json:"success"`
}

// entityDocument is the JSON form of an entity as returned by wbgetentities.
type entityDocument struct {
	ID           string                     `json:"id"`
	Type         string                     `json:"type"`
	Datatype     string                     `json:"datatype,omitempty"`
	Labels       map[string]langValue       `json:"labels"`
	Descriptions map[string]langValue       `json:"descriptions"`
	Claims       map[string][]statementJSON `json:"claims"`
	Missing      *string                    `json:"missing,omitempty"`
}

type langValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type statementJSON struct {
	Mainsnak snakJSON `json:"mainsnak"`
	Type     string   `json:"type"`
	Rank     string   `json:"rank,omitempty"`
}

type snakJSON struct {
	Snaktype  string         `json:"snaktype"`
	Property  string         `json:"property"`
	Datatype  string         `json:"datatype,omitempty"`
	Datavalue *dataValueJSON `json:"datavalue,omitempty"`
}

type dataValueJSON struct {
	Value json.RawMessage `json:"value"`
	Type  string          `json:"type"`
}

type entityIDValue struct {
	EntityType string `json:"entity-type"`
	ID         string `json:"id,omitempty"`
	NumericID  int    `json:"numeric-id"`
}

// editData is the data parameter of wbeditentity.
type editData struct {
	Labels       map[string]langValue `json:"labels,omitempty"`
	Descriptions map[string]langValue `json:"descriptions,omitempty"`
	Datatype     string               `json:"datatype,omitempty"`
	Claims       []statementJSON      `json:"claims,omitempty"`
}

func (d *entityDocument) toRemote() *entities.RemoteEntity {
	r := &entities.RemoteEntity{
		ID:           d.ID,
		Kind:         entities.RemoteKind(d.Type),
		Datatype:     d.Datatype,
		Labels:       make(map[string]string, len(d.Labels)),
		Descriptions: make(map[string]string, len(d.Descriptions)),
	}
	for lang, v := range d.Labels {
		r.Labels[lang] = v.Value
	}
	for lang, v := range d.Descriptions {
		r.Descriptions[lang] = v.Value
	}
	for prop, statements := range d.Claims {
		for _, st := range statements {
			if value, ok := decodeValue(st.Mainsnak.Datavalue); ok {
				r.AddClaim(entities.Claim{PropertyID: prop, Value: value})
			}
		}
	}
	return r
}

// decodeValue understands entity references and plain strings; other
// datatypes cannot be produced by the synchronizer and are ignored.
func decodeValue(dv *dataValueJSON) (entities.ClaimValue, bool) {
	if dv == nil {
		return entities.ClaimValue{}, false
	}
	switch dv.Type {
	case "string":
		var s string
		if err := json.Unmarshal(dv.Value, &s); err != nil {
			return entities.ClaimValue{}, false
		}
		return entities.ClaimValue{Text: s}, true
	case "wikibase-entityid":
		var ref entityIDValue
		if err := json.Unmarshal(dv.Value, &ref); err != nil {
			return entities.ClaimValue{}, false
		}
		if ref.ID == "" && ref.NumericID > 0 {
			ref.ID = entities.RemoteKind(ref.EntityType).IDPrefix() + strconv.Itoa(ref.NumericID)
		}
		return entities.ClaimValue{EntityID: ref.ID}, ref.ID != ""
	default:
		return entities.ClaimValue{}, false
	}
}

func encodeEdit(edit *entities.EntityEdit) *editData {
	data := &editData{
		Labels:       encodeTexts(edit.Labels),
		Descriptions: encodeTexts(edit.Descriptions),
		Datatype:     edit.Datatype,
	}
	for _, c := range edit.Claims {
		data.Claims = append(data.Claims, encodeClaim(c))
	}
	return data
}

func encodeTexts(texts map[string]string) map[string]langValue {
	if len(texts) == 0 {
		return nil
	}
	out := make(map[string]langValue, len(texts))
	for lang, text := range texts {
		out[lang] = langValue{Language: lang, Value: text}
	}
	return out
}

func encodeClaim(c entities.Claim) statementJSON {
	var dv dataValueJSON
	if c.Value.IsReference() {
		kind, _ := entities.RemoteKindOf(c.Value.EntityID)
		numeric, _ := strconv.Atoi(c.Value.EntityID[1:])
		raw, _ := json.Marshal(entityIDValue{
			EntityType: string(kind),
			ID:         c.Value.EntityID,
			NumericID:  numeric,
		})
		dv = dataValueJSON{Value: raw, Type: "wikibase-entityid"}
	} else {
		raw, _ := json.Marshal(c.Value.Text)
		dv = dataValueJSON{Value: raw, Type: "string"}
	}

	return statementJSON{
		Mainsnak: snakJSON{
			Snaktype:  "value",
			Property:  c.PropertyID,
			Datavalue: &dv,
		},
		Type: "statement",
		Rank: "normal",
	}
}

// entityIDFromTitle strips the namespace from a page title like "Item:Q5".
func entityIDFromTitle(title string) string {
	if i := strings.LastIndexByte(title, ':'); i >= 0 {
		return title[i+1:]
	}
	return title
}

// conflictID finds the entity named in an "already has label" message.
func conflictID(info string) string {
	return reEntityID.FindString(info)
}
