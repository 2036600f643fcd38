package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/ports"
)

const testAnonKey = "anon-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", testAnonKey, 5*time.Second)
}

func TestSelect(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/notes", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "updated_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"n1","user_id":"u1","tags":["a"]},{"id":"n2","user_id":"u1","tags":[]}]`)
	})

	ctx := ports.WithAccessToken(context.Background(), "user-token")
	rows, err := client.Select(ctx, ports.SelectQuery{
		Table:      "notes",
		EqColumn:   "user_id",
		EqValue:    "u1",
		OrderBy:    "updated_at",
		Descending: true,
	})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "n1", rows[0]["id"])
	assert.Equal(t, []interface{}{"a"}, rows[0]["tags"])
}

func TestSelect_AnonKeyWithoutSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testAnonKey, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `null`)
	})

	rows, err := client.Select(context.Background(), ports.SelectQuery{Table: "tasks", EqColumn: "user_id", EqValue: "u1"})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSelect_ErrorResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"42P01","message":"relation \"public.notes\" does not exist"}`)
	})

	_, err := client.Select(context.Background(), ports.SelectQuery{Table: "notes", EqColumn: "user_id", EqValue: "u1"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "42P01", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "does not exist")
}

func TestUpdate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/tasks", r.URL.Path)
		assert.Equal(t, "eq.t1", r.URL.Query().Get("id"))
		assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "completed", body["status"])

		_, _ = io.WriteString(w, `[{"id":"t1","status":"completed"}]`)
	})

	err := client.Update(context.Background(), ports.UpdateMutation{
		Table:       "tasks",
		MatchColumn: "id",
		MatchValue:  "t1",
		OwnerColumn: "user_id",
		OwnerValue:  "u1",
		Values:      map[string]interface{}{"status": "completed"},
	})
	assert.NoError(t, err)
}

func TestUpdate_NoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	err := client.Update(context.Background(), ports.UpdateMutation{
		Table:       "tasks",
		MatchColumn: "id",
		MatchValue:  "gone",
		Values:      map[string]interface{}{"status": "completed"},
	})
	assert.ErrorIs(t, err, ports.ErrNoMatch)
}

func TestGetSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer valid" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"code":401,"error_code":"bad_jwt","msg":"invalid JWT"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"u1","email":"ada@example.com"}`)
	})

	session, err := client.GetSession(context.Background(), "valid")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "ada@example.com", session.Email)

	_, err = client.GetSession(context.Background(), "expired")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad_jwt", apiErr.ErrorCode)

	_, err = client.GetSession(context.Background(), "")
	assert.ErrorIs(t, err, entities.ErrNoSession)
}

func TestSignIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "correct-horse" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"jwt","token_type":"bearer","expires_in":3600,"expires_at":1700000000,"user":{"id":"u1","email":"ada@example.com"}}`)
	})

	session, err := client.SignIn(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "jwt", session.AccessToken)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), session.ExpiresAt)

	_, err = client.SignIn(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestSignUp(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)

		var body struct {
			Email string            `json:"email"`
			Data  map[string]string `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Email == "taken@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"code":422,"msg":"User already registered"}`)
			return
		}
		assert.Equal(t, "Ada", body.Data["name"])
		_, _ = io.WriteString(w, `{"id":"u-new","email":"ada@example.com"}`)
	})

	session, err := client.SignUp(context.Background(), "Ada", "ada@example.com", "abcdefgh")
	require.NoError(t, err)
	assert.Equal(t, "u-new", session.UserID)
	assert.Empty(t, session.AccessToken)

	_, err = client.SignUp(context.Background(), "Ada", "taken@example.com", "abcdefgh")
	assert.ErrorIs(t, err, entities.ErrEmailTaken)
}
