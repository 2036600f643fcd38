package ports

import (
	"context"
	"errors"
	"time"
)

// Row is a raw record as returned by the store, keyed by column name.
type Row map[string]interface{}

// SelectQuery selects every row of Table whose EqColumn equals EqValue,
// ordered by OrderBy.
type SelectQuery struct {
	Table      string
	EqColumn   string
	EqValue    interface{}
	OrderBy    string
	Descending bool
}

// UpdateMutation sets Values on every row of Table whose MatchColumn equals
// MatchValue. When OwnerColumn is set, rows must also have OwnerColumn equal
// to OwnerValue.
type UpdateMutation struct {
	Table       string
	MatchColumn string
	MatchValue  interface{}
	OwnerColumn string
	OwnerValue  interface{}
	Values      map[string]interface{}
}

// StoreGateway is the query surface of the hosted relational store.
type StoreGateway interface {
	Select(ctx context.Context, q SelectQuery) ([]Row, error)
	Update(ctx context.Context, m UpdateMutation) error
}

// Session is an authenticated session issued by the auth surface.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

// SessionProvider resolves an access token to the session it belongs to.
type SessionProvider interface {
	GetSession(ctx context.Context, accessToken string) (*Session, error)
}

// AuthGateway signs users in and up against the auth surface.
type AuthGateway interface {
	SessionProvider
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, name, email, password string) (*Session, error)
}

// Backend bundles the store and auth surfaces of one platform.
type Backend interface {
	StoreGateway
	AuthGateway
}

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token to ctx so gateways can
// act on the user's behalf.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFrom returns the access token attached to ctx, if any.
func AccessTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}

// ErrNoMatch is returned by StoreGateway.Update when no row matched.
var ErrNoMatch = errors.New("no matching row")
