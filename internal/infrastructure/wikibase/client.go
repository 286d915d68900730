// Package wikibase implements ports.RemoteStore against the MediaWiki api.php of a WikiBase instance.
package wikibase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// UserAgent identifies the client to the API, as MediaWiki etiquette asks.
const UserAgent = "ont2wb/1.0 (https://github.com/osegermany/ont2wb)"

const (
	// getBatchSize is the most IDs wbgetentities accepts per call for normal users.
	getBatchSize = 50
	searchLimit  = 50
)

// APIError is an error object returned by api.php.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Info)
}

// Client talks to a WikiBase api.php endpoint over an authenticated session.
type Client struct {
	apiURL    string
	http      *http.Client
	csrfToken string
}

// NewClient creates a new Client. Session cookies are kept for the lifetime of the client.
func NewClient(apiURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		apiURL: apiURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// Endpoint returns the API URL.
func (c *Client) Endpoint() string {
	return c.apiURL
}

// Login authenticates with clientlogin and fetches the CSRF token used for edits.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var tokens tokensResponse
	err := c.get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {"login"},
	}, &tokens)
	if err != nil {
		return fmt.Errorf("fetching login token: %w", err)
	}

	var login clientLoginResponse
	err = c.post(ctx, url.Values{
		"action":         {"clientlogin"},
		"username":       {username},
		"password":       {password},
		"logintoken":     {tokens.Query.Tokens.LoginToken},
		"loginreturnurl": {c.apiURL},
	}, &login)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if login.ClientLogin.Status != "PASS" {
		return &entities.AuthenticationError{
			Endpoint: c.apiURL,
			Status:   login.ClientLogin.Status,
			Message:  login.ClientLogin.Message,
		}
	}

	tokens = tokensResponse{}
	err = c.get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
	}, &tokens)
	if err != nil {
		return fmt.Errorf("fetching csrf token: %w", err)
	}
	c.csrfToken = tokens.Query.Tokens.CSRFToken

	slog.Debug("Logged in", "endpoint", c.apiURL, "user", login.ClientLogin.Username)
	return nil
}

// SearchByLabel returns entities whose label in language is exactly label.
func (c *Client) SearchByLabel(ctx context.Context, label, language string, kind entities.RemoteKind) ([]string, error) {
	var resp searchEntitiesResponse
	err := c.get(ctx, url.Values{
		"action":         {"wbsearchentities"},
		"search":         {label},
		"language":       {language},
		"strictlanguage": {"1"},
		"type":           {string(kind)},
		"limit":          {fmt.Sprint(searchLimit)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", label, err)
	}

	var ids []string
	for _, hit := range resp.Search {
		// wbsearchentities also matches prefixes and aliases.
		if hit.Match.Type == "label" && hit.Match.Text == label {
			ids = append(ids, hit.ID)
		}
	}
	return ids, nil
}

// SearchBySourceIRI returns entities with a propertyID statement whose value is iri.
// It relies on the haswbstatement keyword of WikibaseCirrusSearch.
func (c *Client) SearchBySourceIRI(ctx context.Context, propertyID, iri string) ([]string, error) {
	var resp searchResponse
	err := c.get(ctx, url.Values{
		"action":      {"query"},
		"list":        {"search"},
		"srsearch":    {fmt.Sprintf("haswbstatement:%q", propertyID+"="+iri)},
		"srnamespace": {"*"},
		"srlimit":     {fmt.Sprint(searchLimit)},
		"srprop":      {""},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("searching statement %s=%s: %w", propertyID, iri, err)
	}

	var ids []string
	for _, hit := range resp.Query.Search {
		ids = append(ids, entityIDFromTitle(hit.Title))
	}
	return ids, nil
}

// GetEntities fetches entities in batches. Missing IDs are left out.
func (c *Client) GetEntities(ctx context.Context, ids []string) ([]*entities.RemoteEntity, error) {
	result := make([]*entities.RemoteEntity, 0, len(ids))

	for start := 0; start < len(ids); start += getBatchSize {
		end := min(start+getBatchSize, len(ids))
		batch := ids[start:end]

		var resp getEntitiesResponse
		err := c.get(ctx, url.Values{
			"action": {"wbgetentities"},
			"ids":    {strings.Join(batch, "|")},
			"props":  {"labels|descriptions|claims|datatype"},
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("fetching entities: %w", err)
		}

		// Keep request order.
		for _, id := range batch {
			doc, ok := resp.Entities[id]
			if !ok || doc.Missing != nil {
				continue
			}
			result = append(result, doc.toRemote())
		}
	}

	return result, nil
}

// CreateEntity creates an item or property and returns its new ID.
func (c *Client) CreateEntity(ctx context.Context, edit *entities.EntityEdit) (string, error) {
	data, err := json.Marshal(encodeEdit(edit))
	if err != nil {
		return "", fmt.Errorf("encoding entity: %w", err)
	}

	var resp editEntityResponse
	err = c.post(ctx, url.Values{
		"action": {"wbeditentity"},
		"new":    {string(edit.Kind)},
		"data":   {string(data)},
		"token":  {c.csrfToken},
	}, &resp)
	if err != nil {
		return "", writeError(err)
	}

	return resp.Entity.ID, nil
}

// EditEntity adds the labels, descriptions and claims of edit to an existing entity.
func (c *Client) EditEntity(ctx context.Context, id string, edit *entities.EntityEdit) error {
	data, err := json.Marshal(encodeEdit(edit))
	if err != nil {
		return fmt.Errorf("encoding entity: %w", err)
	}

	var resp editEntityResponse
	err = c.post(ctx, url.Values{
		"action": {"wbeditentity"},
		"id":     {id},
		"data":   {string(data)},
		"token":  {c.csrfToken},
	}, &resp)
	if err != nil {
		return writeError(err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, params.Get("action"), out)
}

func (c *Client) post(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, params.Get("action"), out)
}

func (c *Client) do(req *http.Request, action string, out any) error {
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", action, err)
	}
	slog.Debug("API call", "action", action, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calling %s: unexpected status %s", action, resp.Status)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", action, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", action, err)
	}
	return nil
}

// writeError turns an API rejection into a RemoteWriteError, keeping the
// conflicting entity of an "already has" label clash. The caller fills in
// the entity and action.
func writeError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	we := &entities.RemoteWriteError{Code: apiErr.Code, Err: apiErr}
	if strings.Contains(apiErr.Info, "already has") {
		we.ConflictID = conflictID(apiErr.Info)
	}
	return we
}
