package services

import (
	"context"
	"fmt"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/ports"
)

// SessionService resolves sessions and runs the sign-in/sign-up flows
type SessionService struct {
	auth   ports.AuthGateway
	logger *logger.Logger
}

// NewSessionService creates a new session service
func NewSessionService(auth ports.AuthGateway, logger *logger.Logger) *SessionService {
	return &SessionService{
		auth:   auth,
		logger: logger.WithComponent("session_service"),
	}
}

// CurrentUserID returns the user behind accessToken. A failed lookup and a
// missing session are reported the same way: ("", false).
func (s *SessionService) CurrentUserID(ctx context.Context, accessToken string) (string, bool) {
	if accessToken == "" {
		return "", false
	}

	session, err := s.auth.GetSession(ctx, accessToken)
	if err != nil {
		s.logger.Debugw("Session lookup failed", "error", err)
		return "", false
	}
	if session == nil || session.UserID == "" {
		return "", false
	}
	return session.UserID, true
}

// SignIn validates the form and exchanges the credentials for a session.
func (s *SessionService) SignIn(ctx context.Context, creds entities.SignInCredentials) (*ports.Session, error) {
	if err := entities.ValidateSignIn(&creds); err != nil {
		return nil, err
	}

	session, err := s.auth.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		s.logger.Warnw("Sign-in failed", "email", creds.Email, "error", err)
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s.logger.Infow("User signed in", "user_id", session.UserID)
	return session, nil
}

// SignUp validates the form, including password confirmation, and registers
// the user.
func (s *SessionService) SignUp(ctx context.Context, creds entities.SignUpCredentials) (*ports.Session, error) {
	if err := entities.ValidateSignUp(&creds); err != nil {
		return nil, err
	}

	session, err := s.auth.SignUp(ctx, creds.Name, creds.Email, creds.Password)
	if err != nil {
		s.logger.Warnw("Sign-up failed", "email", creds.Email, "error", err)
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.logger.Infow("User signed up", "user_id", session.UserID)
	return session, nil
}
