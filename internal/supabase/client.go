// Package supabase is a facade over the hosted database's REST interface.
// Table operations map one to one onto PostgREST requests; auth operations
// talk to the bundled GoTrue identity provider. The client performs no
// retries: every remote failure is surfaced on first attempt.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// Client is safe for concurrent use; the pooled HTTP client is shared
// across requests for the process lifetime.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase: URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase: APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
	}, nil
}

// APIError is a non-2xx response from the remote system.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.StatusCode)
}

// QuerySpec narrows a table read. Zero value selects everything.
type QuerySpec struct {
	Select  string
	Filters []Filter
	Limit   int
	Offset  int
}

// Query runs a filtered SELECT and returns the decoded rows verbatim.
func (c *Client) Query(ctx context.Context, table string, spec QuerySpec) ([]map[string]any, error) {
	params := url.Values{}
	sel := spec.Select
	if sel == "" {
		sel = "*"
	}
	params.Set("select", sel)
	applyFilters(params, spec.Filters)
	if spec.Limit > 0 {
		params.Set("limit", strconv.Itoa(spec.Limit))
	}
	if spec.Offset > 0 {
		params.Set("offset", strconv.Itoa(spec.Offset))
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL(table, params), nil)
	if err != nil {
		return nil, err
	}
	return c.rows(req)
}

// Insert adds records and returns the created representation.
func (c *Client) Insert(ctx context.Context, table string, records []map[string]any) ([]map[string]any, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.tableURL(table, nil), records)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")
	return c.rows(req)
}

// Upsert inserts or updates one record keyed by the onConflict column.
func (c *Client) Upsert(ctx context.Context, table string, record map[string]any, onConflict string) ([]map[string]any, error) {
	params := url.Values{}
	if onConflict != "" {
		params.Set("on_conflict", onConflict)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.tableURL(table, params), record)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=representation")
	return c.rows(req)
}

// Update patches every row matching the filters.
func (c *Client) Update(ctx context.Context, table string, filters []Filter, patch map[string]any) ([]map[string]any, error) {
	params := url.Values{}
	applyFilters(params, filters)
	req, err := c.newRequest(ctx, http.MethodPatch, c.tableURL(table, params), patch)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")
	return c.rows(req)
}

// Delete removes every row matching the filters.
func (c *Client) Delete(ctx context.Context, table string, filters []Filter) ([]map[string]any, error) {
	params := url.Values{}
	applyFilters(params, filters)
	req, err := c.newRequest(ctx, http.MethodDelete, c.tableURL(table, params), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")
	return c.rows(req)
}

func (c *Client) tableURL(table string, params url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// rows executes the request and decodes the JSON result. PostgREST answers
// with an array for table operations; a bare object is wrapped so callers
// always see rows.
func (c *Client) rows(req *http.Request) ([]map[string]any, error) {
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: restMessage(body, status)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}
	var row map[string]any
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return []map[string]any{row}, nil
}

func restMessage(body []byte, status int) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
		if errResp.Details != "" {
			return errResp.Details
		}
	}
	return http.StatusText(status)
}
