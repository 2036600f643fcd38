// Package platform talks to the hosted backend: its REST data API for
// table reads and writes, and its auth API for sessions.
package platform

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

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/ports"
)

const (
	restPrefix = "/rest/v1/"
	authPrefix = "/auth/v1/"
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`

	// auth API spellings
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *APIError) Error() string {
	msg := e.Message
	for _, alt := range []string{e.Msg, e.ErrorDescription, e.ErrorName} {
		if msg == "" {
			msg = alt
		}
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("platform error %d: %s", e.Status, msg)
}

// Client implements ports.Backend over HTTP.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

var _ ports.Backend = (*Client)(nil)

// NewClient creates a client for the project at baseURL using its public
// anon key. Requests carry the caller's access token when the context has
// one, so row-level policies apply to that user.
func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Select(ctx context.Context, q ports.SelectQuery) ([]ports.Row, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set(q.EqColumn, "eq."+fmt.Sprint(q.EqValue))
	if q.OrderBy != "" {
		direction := "asc"
		if q.Descending {
			direction = "desc"
		}
		params.Set("order", q.OrderBy+"."+direction)
	}

	var rows []ports.Row
	path := restPrefix + url.PathEscape(q.Table) + "?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, path, bearer(ctx, c.anonKey), nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}
	if rows == nil {
		rows = []ports.Row{}
	}
	return rows, nil
}

func (c *Client) Update(ctx context.Context, m ports.UpdateMutation) error {
	params := url.Values{}
	params.Set(m.MatchColumn, "eq."+fmt.Sprint(m.MatchValue))
	if m.OwnerColumn != "" {
		params.Set(m.OwnerColumn, "eq."+fmt.Sprint(m.OwnerValue))
	}

	headers := map[string]string{"Prefer": "return=representation"}

	var updated []ports.Row
	path := restPrefix + url.PathEscape(m.Table) + "?" + params.Encode()
	if err := c.do(ctx, http.MethodPatch, path, bearer(ctx, c.anonKey), headers, m.Values, &updated); err != nil {
		return fmt.Errorf("update %s: %w", m.Table, err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("update %s where %s = %v: %w", m.Table, m.MatchColumn, m.MatchValue, ports.ErrNoMatch)
	}
	return nil
}

// authUser is the user object of the auth API.
type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// authSession is the token response of the auth API.
type authSession struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   int64     `json:"expires_at"`
	User        *authUser `json:"user"`

	// sign-up without auto-confirm returns the bare user
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *authSession) toSession() *ports.Session {
	session := &ports.Session{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		UserID:      s.ID,
		Email:       s.Email,
	}
	if s.User != nil {
		session.UserID = s.User.ID
		session.Email = s.User.Email
	}
	if s.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	}
	return session
}

func (c *Client) GetSession(ctx context.Context, accessToken string) (*ports.Session, error) {
	if accessToken == "" {
		return nil, entities.ErrNoSession
	}

	var user authUser
	if err := c.do(ctx, http.MethodGet, authPrefix+"user", accessToken, nil, nil, &user); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if user.ID == "" {
		return nil, entities.ErrNoSession
	}

	return &ports.Session{
		AccessToken: accessToken,
		TokenType:   "bearer",
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var out authSession
	err := c.do(ctx, http.MethodPost, authPrefix+"token?grant_type=password", c.anonKey, nil, body, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %v", entities.ErrInvalidCredentials, apiErr)
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return out.toSession(), nil
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (*ports.Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}

	var out authSession
	err := c.do(ctx, http.MethodPost, authPrefix+"signup", c.anonKey, nil, body, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Error()), "already registered") {
			return nil, fmt.Errorf("%w: %v", entities.ErrEmailTaken, apiErr)
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return out.toSession(), nil
}

// do sends one request and decodes the JSON response into result.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	token string,
	headers map[string]string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if len(respBody) > 0 {
			_ = json.Unmarshal(respBody, apiErr)
		}
		return apiErr
	}

	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// bearer picks the caller's access token, falling back to the anon key.
func bearer(ctx context.Context, anonKey string) string {
	if token, ok := ports.AccessTokenFrom(ctx); ok {
		return token
	}
	return anonKey
}
