// Package postgrest implements remote.Authority against a PostgREST-style
// HTTP API (the surface exposed by Supabase and self-hosted PostgREST).
//
// Row filtering uses PostgREST query operators (user_id=eq.X,
// deleted=is.false) and upserts use POST with the merge-duplicates
// preference, which resolves on the table's primary key.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storysync/remote"
)

// Client handles HTTP communication with the remote authority.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
}

var _ remote.Authority = (*Client)(nil)

// New creates a client for the API rooted at baseURL (e.g.
// "https://xyz.supabase.co/rest/v1"). apiKey is the project key sent on
// every request; token is the user's access token for row-level scoping.
func New(baseURL, apiKey, token string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Select implements remote.Authority.
func (c *Client) Select(ctx context.Context, table string, q remote.Query) ([]remote.Row, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("user_id", "eq."+q.UserID)
	if !q.IncludeDeleted {
		params.Set("deleted", "is.false")
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/"+table+"?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, &remote.Error{Operation: "Select", Table: table, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("Select", table, resp)
	}

	var rows []remote.Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &remote.Error{Operation: "Select", Table: table, Message: "failed to decode response", Err: err}
	}
	return rows, nil
}

// Upsert implements remote.Authority.
func (c *Client) Upsert(ctx context.Context, table string, rows []remote.Row) error {
	if len(rows) == 0 {
		return nil
	}

	headers := map[string]string{
		"Prefer": "resolution=merge-duplicates,return=minimal",
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/"+table, rows, headers)
	if err != nil {
		return &remote.Error{Operation: "Upsert", Table: table, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusNoContent {
		return apiError("Upsert", table, resp)
	}
	return nil
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any, headers map[string]string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// apiError builds a remote.Error from a non-success response.
func apiError(operation, table string, resp *http.Response) *remote.Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &remote.Error{
		Operation:  operation,
		Table:      table,
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       string(body),
	}
}
