package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// AuthResult is the body returned by register and login.
type AuthResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// APIClient calls the REST API. Token, when set, is sent as a bearer
// credential on every request.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithToken returns a copy of the client that authenticates as token.
func (c *APIClient) WithToken(token string) *APIClient {
	cp := *c
	cp.token = token
	return &cp
}

func (c *APIClient) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	return out, err
}

func (c *APIClient) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	return out, err
}

func (c *APIClient) Me(ctx context.Context) (types.User, error) {
	var out types.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	return out, err
}

func (c *APIClient) ListSongs(ctx context.Context, filter types.SongFilter) ([]types.Song, error) {
	q := url.Values{}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Genre != "" {
		q.Set("genre", filter.Genre)
	}
	path := "/api/songs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []types.Song
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Feed returns the combined listing as raw objects; each carries a "type"
// of "song" or "vocal".
func (c *APIClient) Feed(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.do(ctx, http.MethodGet, "/api/songs/all", nil, &out)
	return out, err
}

func (c *APIClient) Ban(ctx context.Context, userID uuid.UUID, reason string) (types.User, error) {
	var out struct {
		User types.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/ban/"+userID.String(), map[string]string{"reason": reason}, &out)
	return out.User, err
}

func (c *APIClient) Unban(ctx context.Context, userID uuid.UUID) (types.User, error) {
	var out struct {
		User types.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/unban/"+userID.String(), nil, &out)
	return out.User, err
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
