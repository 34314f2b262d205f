// Package upstream defines the gateway's boundary collaborators: the
// hosted data store and the identity verifier. The core treats both as
// opaque, possibly-slow, possibly-failing remote services and never
// inspects their internals.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DataStore executes a named operation against the hosted backend and
// returns its JSON result.
type DataStore interface {
	Query(ctx context.Context, operation string, params map[string]any) (json.RawMessage, error)
}

// IdentityVerifier resolves a bearer credential to a user id.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

// ErrInvalidCredential reports a credential the identity service
// rejected, as opposed to a transport failure reaching it.
var ErrInvalidCredential = errors.New("upstream: invalid credential")

// HTTPStore calls the backend's query endpoint over HTTP.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPStore constructs a store client. timeout bounds each call.
func NewHTTPStore(baseURL, apiKey string, timeout time.Duration) *HTTPStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type queryRequest struct {
	Operation string         `json:"operation"`
	Params    map[string]any `json:"params,omitempty"`
}

// Query POSTs {operation, params} to the backend and returns the raw
// JSON body of a 2xx response.
func (s *HTTPStore) Query(ctx context.Context, operation string, params map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(queryRequest{Operation: operation, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode query %q: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("query %q: backend returned %d", operation, resp.StatusCode)
	}

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("query %q: read response: %w", operation, err)
	}
	return json.RawMessage(result), nil
}

// HTTPVerifier calls the identity service over HTTP.
type HTTPVerifier struct {
	url    string
	client *http.Client
}

// NewHTTPVerifier constructs a verifier client.
func NewHTTPVerifier(url string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPVerifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Verify exchanges a bearer credential for a user id. A rejected
// credential returns ErrInvalidCredential.
func (v *HTTPVerifier) Verify(ctx context.Context, credential string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("verify credential: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidCredential
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("verify credential: identity service returned %d", resp.StatusCode)
	}

	var claims struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return "", fmt.Errorf("verify credential: decode claims: %w", err)
	}
	if claims.UserID == "" {
		return "", ErrInvalidCredential
	}
	return claims.UserID, nil
}
