// Package apiclient is a small Go SDK for talking to a single causalkv
// node, adapted from the teacher's internal/client package: same shape
// (one Client per base URL, a bounded http.Client, JSON in/out, an
// APIError carrying the server's status and message), repointed at this
// node's three operations instead of the teacher's REST-ful /kv routes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppriyankuu/causalkv/internal/clock"
)

// Client talks to exactly one node. It has no knowledge of the rest of
// the cluster — replication is the node's job, not the client's.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client bound to baseURL (e.g. "http://localhost:5000").
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}
}

// WriteResponse mirrors POST /write's 200 body.
type WriteResponse struct {
	Status    string            `json:"status"`
	Timestamp clock.VectorClock `json:"timestamp"`
}

// ReadResponse mirrors GET /read's 200 body.
type ReadResponse struct {
	Value     any               `json:"value"`
	Timestamp clock.VectorClock `json:"timestamp"`
}

// HealthResponse mirrors GET /health's 200 body.
type HealthResponse struct {
	Status    string            `json:"status"`
	Node      string            `json:"node"`
	Timestamp clock.VectorClock `json:"timestamp"`
}

// Write performs a client-initiated write. context may be nil.
func (c *Client) Write(ctx context.Context, key string, value any, context_ clock.VectorClock) (*WriteResponse, error) {
	body, err := json.Marshal(map[string]any{"key": key, "value": value, "context": context_})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/write", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("write request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out WriteResponse
	return &out, json.NewDecoder(resp.Body).Decode(&out)
}

// Read retrieves the current value and clock for key.
func (c *Client) Read(ctx context.Context, key string) (*ReadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/read?key="+key, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out ReadResponse
	return &out, json.NewDecoder(resp.Body).Decode(&out)
}

// Health checks node liveness and returns its current clock.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out HealthResponse
	return &out, json.NewDecoder(resp.Body).Decode(&out)
}

// APIError carries the HTTP status and message from a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = string(body)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
