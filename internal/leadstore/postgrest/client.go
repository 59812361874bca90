// Package postgrest reads and writes the lead table through a PostgREST
// endpoint, such as the REST API of a hosted Supabase project.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ignite/lead-console/internal/config"
	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
)

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a PostgREST client bound to one table.
type Client struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient HTTPDoer
}

// NewClient creates a client from the store configuration. Requests are
// never retried; the transport timeout is the only bound on a hung call.
func NewClient(cfg config.StoreConfig) *Client {
	return NewClientWithDoer(cfg, &http.Client{Timeout: cfg.Timeout()})
}

// NewClientWithDoer is NewClient with a caller-supplied transport.
func NewClientWithDoer(cfg config.StoreConfig, doer HTTPDoer) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		table:      cfg.Table,
		httpClient: doer,
	}
}

func (c *Client) tableURL(params url.Values) string {
	u := c.baseURL + "/rest/v1/" + url.PathEscape(c.table)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// doRequest makes one request and returns the body of a 2xx response.
func (c *Client) doRequest(ctx context.Context, method, fullURL string, body []byte, prefer string) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("API error: %s", apiMessage(respBody))
	}
	return respBody, resp.StatusCode, nil
}

// ListAll fetches every lead ordered by created_at descending.
func (c *Client) ListAll(ctx context.Context) ([]domain.Lead, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", domain.FieldCreatedAt+".desc")

	body, status, err := c.doRequest(ctx, http.MethodGet, c.tableURL(params), nil, "")
	if err != nil {
		return nil, &leadstore.StoreError{Op: leadstore.OpList, Status: status, Err: err}
	}

	var leads []domain.Lead
	if err := json.Unmarshal(body, &leads); err != nil {
		return nil, &leadstore.StoreError{Op: leadstore.OpList, Status: status, Err: fmt.Errorf("decoding leads: %w", err)}
	}
	return leads, nil
}

// ApplyUpdate PATCHes the row whose numero equals id. The updated row is
// requested back so a missing id can be told apart from a no-op.
func (c *Client) ApplyUpdate(ctx context.Context, id string, patch domain.Patch) error {
	if err := patch.Validate(); err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, err)
	}
	payload, err := json.Marshal(patch.Fields())
	if err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, fmt.Errorf("encoding patch: %w", err))
	}

	params := url.Values{}
	params.Set(domain.FieldID, "eq."+id)
	params.Set("select", domain.FieldID)

	body, status, err := c.doRequest(ctx, http.MethodPatch, c.tableURL(params), payload, "return=representation")
	if err != nil {
		return &leadstore.StoreError{Op: leadstore.OpUpdate, ID: id, Status: status, Err: err}
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return &leadstore.StoreError{Op: leadstore.OpUpdate, ID: id, Status: status, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(rows) == 0 {
		return &leadstore.StoreError{Op: leadstore.OpUpdate, ID: id, Status: status, Err: leadstore.ErrNotFound}
	}
	return nil
}

// Ping issues a one-row read.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("select", domain.FieldID)
	params.Set("limit", "1")
	_, status, err := c.doRequest(ctx, http.MethodGet, c.tableURL(params), nil, "")
	if err != nil {
		return &leadstore.StoreError{Op: leadstore.OpPing, Status: status, Err: err}
	}
	return nil
}

// apiMessage extracts the message field of a PostgREST error body, falling
// back to the raw body.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		if e.Code != "" {
			return e.Code + " " + e.Message
		}
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
