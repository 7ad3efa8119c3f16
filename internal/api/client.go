package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds an API client for the given bind address. The token may
// be empty when the daemon runs without authentication.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, errors.New("daemon address required")
	}
	baseURL := bind
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Resolve submits a resolution request.
func (c *Client) Resolve(ctx context.Context, req ResolveRequest) (*ResolveResponse, error) {
	var response ResolveResponse
	if err := c.postJSON(ctx, "/api/resolve", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Search performs a cache-only lookup.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var response SearchResponse
	endpoint := "/api/search?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var response StatusResponse
	if err := c.getJSON(ctx, "/api/status", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Stats fetches catalog counters.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var response StatsResponse
	if err := c.getJSON(ctx, "/api/stats", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Health fetches catalog database health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var response HealthResponse
	if err := c.getJSON(ctx, "/api/health", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Records lists the stored catalog records.
func (c *Client) Records(ctx context.Context) (*RecordListResponse, error) {
	var response RecordListResponse
	if err := c.getJSON(ctx, "/api/records", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PurgeRecords removes every catalog record.
func (c *Client) PurgeRecords(ctx context.Context) (*PurgeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/records", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	var response PurgeResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
