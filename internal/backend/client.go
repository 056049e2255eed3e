package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound marks a lookup for an id the backend has no record of. Callers
// render it as a dedicated not-found state, never as a generic failure.
var ErrNotFound = errors.New("not found")

// APIError carries the backend's own message for a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the external marketplace REST backend. All marketplace
// state lives behind it; this service never owns product data.
type Client struct {
	baseURL          string
	placeholderImage string
	httpClient       *http.Client
	fetchGroup       singleflight.Group
}

// New creates a backend client rooted at baseURL, e.g.
// "https://api.xowner.example". placeholderImage is substituted for listings
// without photos so normalized products never carry an empty image list.
func New(baseURL string, timeout time.Duration, placeholderImage string) *Client {
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		placeholderImage: placeholderImage,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode, Message: errorMessage(payload, res)}
		if res.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, apiErr)
		}
		return nil, apiErr
	}

	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	payload, err := c.do(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("backend: encode %s: %w", path, err)
	}
	payload, err := c.do(ctx, http.MethodPost, path, token, strings.NewReader(string(body)), "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error body: the JSON
// "message" field when present, the HTTP status text otherwise, and a generic
// fallback when neither is usable.
func errorMessage(payload []byte, res *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		return body.Message
	}
	if text := strings.TrimSpace(res.Status); text != "" {
		return text
	}
	return "request failed"
}
