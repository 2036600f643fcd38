package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/ports"
)

func TestCurrentUserID(t *testing.T) {
	auth := &fakeAuth{sessions: map[string]*ports.Session{
		"good":    {UserID: "u1"},
		"no-user": {},
	}}
	svc := NewSessionService(auth, logger.NewNop())
	ctx := context.Background()

	id, ok := svc.CurrentUserID(ctx, "good")
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	for _, token := range []string{"", "unknown", "no-user"} {
		id, ok := svc.CurrentUserID(ctx, token)
		assert.False(t, ok, token)
		assert.Empty(t, id, token)
	}
}

func TestCurrentUserID_LookupErrorIsAbsent(t *testing.T) {
	auth := &fakeAuth{err: errors.New("auth service down")}
	svc := NewSessionService(auth, logger.NewNop())

	id, ok := svc.CurrentUserID(context.Background(), "good")
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestSignUp_ValidatesBeforeCallingGateway(t *testing.T) {
	auth := &fakeAuth{}
	svc := NewSessionService(auth, logger.NewNop())

	_, err := svc.SignUp(context.Background(), entities.SignUpCredentials{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgx",
	})

	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	issue, ok := verr.Field("confirmPassword")
	require.True(t, ok)
	assert.Equal(t, "Passwords don't match", issue.Message)
	assert.Zero(t, auth.signUps)
}

func TestSignIn(t *testing.T) {
	auth := &fakeAuth{}
	svc := NewSessionService(auth, logger.NewNop())

	session, err := svc.SignIn(context.Background(), entities.SignInCredentials{Email: "ada@example.com", Password: "abcdefgh"})
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, 1, auth.signIns)
}

func TestSignIn_WrapsGatewayError(t *testing.T) {
	auth := &fakeAuth{err: entities.ErrInvalidCredentials}
	svc := NewSessionService(auth, logger.NewNop())

	_, err := svc.SignIn(context.Background(), entities.SignInCredentials{Email: "ada@example.com", Password: "abcdefgh"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}
