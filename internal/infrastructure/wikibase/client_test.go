package wikibase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// fakeAPI answers the subset of api.php the client uses.
type fakeAPI struct {
	loginStatus string
	entities    map[string]string // id -> raw entity JSON
	editError   string            // raw error JSON returned by wbeditentity
	getCalls    int
	edits       []map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{loginStatus: "PASS", entities: make(map[string]string)}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := r.Form
	w.Header().Set("Content-Type", "application/json")

	switch form.Get("action") {
	case "query":
		f.serveQuery(w, r)
	case "clientlogin":
		if form.Get("logintoken") != "login-token" {
			fmt.Fprint(w, `{"error":{"code":"badtoken","info":"Invalid token"}}`)
			return
		}
		if f.loginStatus == "PASS" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
			fmt.Fprintf(w, `{"clientlogin":{"status":"PASS","username":%q}}`, form.Get("username"))
			return
		}
		fmt.Fprintf(w, `{"clientlogin":{"status":%q,"message":"Incorrect username or password entered.","messagecode":"wrongpassword"}}`, f.loginStatus)
	case "wbsearchentities":
		fmt.Fprint(w, `{"search":[
			{"id":"Q1","label":"Module","match":{"type":"label","language":"en","text":"Module"}},
			{"id":"Q2","label":"Module set","match":{"type":"label","language":"en","text":"Module set"}},
			{"id":"Q3","label":"Part","match":{"type":"alias","language":"en","text":"Module"}}
		]}`)
	case "wbgetentities":
		f.getCalls++
		docs := make(map[string]json.RawMessage)
		for _, id := range strings.Split(form.Get("ids"), "|") {
			if doc, ok := f.entities[id]; ok {
				docs[id] = json.RawMessage(doc)
			} else {
				docs[id] = json.RawMessage(fmt.Sprintf(`{"id":%q,"missing":""}`, id))
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"entities": docs, "success": 1})
	case "wbeditentity":
		if form.Get("token") != "csrf-token" {
			fmt.Fprint(w, `{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`)
			return
		}
		f.edits = append(f.edits, map[string]string{
			"new":  form.Get("new"),
			"id":   form.Get("id"),
			"data": form.Get("data"),
		})
		if f.editError != "" {
			fmt.Fprint(w, f.editError)
			return
		}
		id := form.Get("id")
		if id == "" {
			id = "Q100"
			if form.Get("new") == "property" {
				id = "P100"
			}
		}
		fmt.Fprintf(w, `{"entity":{"id":%q},"success":1}`, id)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (f *fakeAPI) serveQuery(w http.ResponseWriter, r *http.Request) {
	form := r.Form
	switch {
	case form.Get("meta") == "tokens" && form.Get("type") == "login":
		fmt.Fprint(w, `{"query":{"tokens":{"logintoken":"login-token"}}}`)
	case form.Get("meta") == "tokens":
		token := `+\\`
		if c, err := r.Cookie("session"); err == nil && c.Value == "abc" {
			token = "csrf-token"
		}
		fmt.Fprintf(w, `{"query":{"tokens":{"csrftoken":%q}}}`, token)
	case form.Get("list") == "search":
		if form.Get("srsearch") != `haswbstatement:"P9=http://example.org/onto#Module"` {
			fmt.Fprint(w, `{"query":{"search":[]}}`)
			return
		}
		fmt.Fprint(w, `{"query":{"search":[{"ns":120,"title":"Item:Q5"},{"ns":0,"title":"Q6"}]}}`)
	default:
		http.Error(w, "unknown query", http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, api http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/api.php", 5*time.Second)
	require.NoError(t, err)
	return client
}

func loggedInClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	client := newTestClient(t, api)
	require.NoError(t, client.Login(context.Background(), "bot", "secret"))
	return client
}

func TestClient_Login(t *testing.T) {
	t.Run("session carries csrf token", func(t *testing.T) {
		api := newFakeAPI()
		client := loggedInClient(t, api)
		assert.Equal(t, "csrf-token", client.csrfToken)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		api := newFakeAPI()
		api.loginStatus = "FAIL"
		client := newTestClient(t, api)

		err := client.Login(context.Background(), "bot", "wrong")

		var authErr *entities.AuthenticationError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, "FAIL", authErr.Status)
		assert.Equal(t, client.Endpoint(), authErr.Endpoint)
		assert.Contains(t, authErr.Message, "Incorrect")
	})
}

func TestClient_SearchByLabel(t *testing.T) {
	client := loggedInClient(t, newFakeAPI())

	ids, err := client.SearchByLabel(context.Background(), "Module", "en", entities.RemoteItem)

	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, ids, "prefix and alias hits are not exact label matches")
}

func TestClient_SearchBySourceIRI(t *testing.T) {
	client := loggedInClient(t, newFakeAPI())

	ids, err := client.SearchBySourceIRI(context.Background(), "P9", "http://example.org/onto#Module")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q5", "Q6"}, ids)

	ids, err = client.SearchBySourceIRI(context.Background(), "P9", "http://example.org/onto#Other")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestClient_GetEntities(t *testing.T) {
	api := newFakeAPI()
	api.entities["Q1"] = `{
		"id": "Q1", "type": "item",
		"labels": {"en": {"language": "en", "value": "Module"}},
		"descriptions": {"en": {"language": "en", "value": "A part."}},
		"claims": {
			"P279": [{"mainsnak": {"snaktype": "value", "property": "P279",
				"datavalue": {"value": {"entity-type": "item", "numeric-id": 2}, "type": "wikibase-entityid"}}}],
			"P9": [{"mainsnak": {"snaktype": "value", "property": "P9",
				"datavalue": {"value": "http://example.org/onto#Module", "type": "string"}}}],
			"P18": [{"mainsnak": {"snaktype": "novalue", "property": "P18"}}]
		}
	}`
	api.entities["P3"] = `{"id": "P3", "type": "property", "datatype": "wikibase-item",
		"labels": {"en": {"language": "en", "value": "has module"}}, "descriptions": {}, "claims": {}}`
	client := loggedInClient(t, api)

	ids := []string{"Q1", "P3"}
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("Q%d", 1000+i))
	}

	result, err := client.GetEntities(context.Background(), ids)

	require.NoError(t, err)
	assert.Equal(t, 2, api.getCalls, "ids are fetched in batches of 50")
	require.Len(t, result, 2, "missing entities are dropped")

	item := result[0]
	assert.Equal(t, "Q1", item.ID)
	assert.Equal(t, entities.RemoteItem, item.Kind)
	assert.Equal(t, "Module", item.Labels["en"])
	assert.Equal(t, "A part.", item.Descriptions["en"])
	assert.True(t, item.HasClaim(entities.Claim{PropertyID: "P279", Value: entities.ClaimValue{EntityID: "Q2"}}))
	assert.True(t, item.HasClaim(entities.Claim{PropertyID: "P9", Value: entities.ClaimValue{Text: "http://example.org/onto#Module"}}))
	assert.Empty(t, item.Claims["P18"])

	prop := result[1]
	assert.Equal(t, entities.RemoteProperty, prop.Kind)
	assert.Equal(t, entities.DatatypeItem, prop.Datatype)
}

func TestClient_CreateEntity(t *testing.T) {
	api := newFakeAPI()
	client := loggedInClient(t, api)

	id, err := client.CreateEntity(context.Background(), &entities.EntityEdit{
		Kind:     entities.RemoteProperty,
		Datatype: entities.DatatypeItem,
		Labels:   map[string]string{"en": "has module"},
		Claims: []entities.Claim{
			{PropertyID: "P9", Value: entities.ClaimValue{Text: "http://example.org/onto#hasModule"}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "P100", id)
	require.Len(t, api.edits, 1)
	assert.Equal(t, "property", api.edits[0]["new"])

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(api.edits[0]["data"]), &data))
	assert.Equal(t, "wikibase-item", data["datatype"])
	assert.Equal(t, map[string]any{"language": "en", "value": "has module"}, data["labels"].(map[string]any)["en"])
	assert.NotContains(t, data, "descriptions")
	assert.Len(t, data["claims"], 1)
}

func TestClient_EditEntity(t *testing.T) {
	api := newFakeAPI()
	client := loggedInClient(t, api)

	err := client.EditEntity(context.Background(), "Q1", &entities.EntityEdit{
		Kind:   entities.RemoteItem,
		Claims: []entities.Claim{{PropertyID: "P279", Value: entities.ClaimValue{EntityID: "Q2"}}},
	})

	require.NoError(t, err)
	require.Len(t, api.edits, 1)
	assert.Equal(t, "Q1", api.edits[0]["id"])
	assert.Contains(t, api.edits[0]["data"], `"numeric-id":2`)
	assert.Contains(t, api.edits[0]["data"], `"wikibase-entityid"`)
}

func TestClient_WriteErrors(t *testing.T) {
	t.Run("label conflict", func(t *testing.T) {
		api := newFakeAPI()
		api.editError = `{"error":{"code":"modification-failed","info":"Item [[Item:Q77|Q77]] already has label \"Module\" associated with language code en, using the same description text."}}`
		client := loggedInClient(t, api)

		_, err := client.CreateEntity(context.Background(), &entities.EntityEdit{
			Kind:   entities.RemoteItem,
			Labels: map[string]string{"en": "Module"},
		})

		var we *entities.RemoteWriteError
		require.True(t, errors.As(err, &we))
		assert.Equal(t, "modification-failed", we.Code)
		assert.Equal(t, "Q77", we.ConflictID)
	})

	t.Run("other api error", func(t *testing.T) {
		api := newFakeAPI()
		api.editError = `{"error":{"code":"permissiondenied","info":"You do not have the permissions needed."}}`
		client := loggedInClient(t, api)

		err := client.EditEntity(context.Background(), "Q1", &entities.EntityEdit{Kind: entities.RemoteItem})

		var we *entities.RemoteWriteError
		require.True(t, errors.As(err, &we))
		assert.Equal(t, "permissiondenied", we.Code)
		assert.Empty(t, we.ConflictID)

		var apiErr *APIError
		assert.True(t, errors.As(err, &apiErr))
	})

	t.Run("http failure", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		err := client.EditEntity(context.Background(), "Q1", &entities.EntityEdit{Kind: entities.RemoteItem})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status")
	})
}

func TestEntityIDFromTitle(t *testing.T) {
	assert.Equal(t, "Q5", entityIDFromTitle("Item:Q5"))
	assert.Equal(t, "P7", entityIDFromTitle("Property:P7"))
	assert.Equal(t, "Q9", entityIDFromTitle("Q9"))
}
