package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/config"
	"github.com/taskmaster/dayboard/internal/ports"
)

// Claims represents the session token claims
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// userRecord is a row of the users table
type userRecord struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// AuthGateway implements ports.AuthGateway with a users table, bcrypt
// password hashes and HS256 session tokens
type AuthGateway struct {
	db        *sqlx.DB
	jwtConfig config.JWTConfig
	now       func() time.Time
}

// NewAuthGateway creates a new SQL auth gateway
func NewAuthGateway(db *sqlx.DB, jwtConfig config.JWTConfig) *AuthGateway {
	return &AuthGateway{
		db:        db,
		jwtConfig: jwtConfig,
		now:       time.Now,
	}
}

func (g *AuthGateway) SignUp(ctx context.Context, name, email, password string) (*ports.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := g.getByEmail(ctx, email)
	if err == nil {
		return nil, entities.ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := userRecord{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    g.now().UTC(),
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (:id, :name, :email, :password_hash, :created_at)`

	if _, err := g.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return nil, entities.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return g.issueSession(user)
}

func (g *AuthGateway) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	user, err := g.getByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, entities.ErrInvalidCredentials
	}

	return g.issueSession(*user)
}

// GetSession validates a token issued by this gateway.
func (g *AuthGateway) GetSession(ctx context.Context, accessToken string) (*ports.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.jwtConfig.Secret), nil
	},
		jwt.WithIssuer(g.jwtConfig.Issuer),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, entities.ErrNoSession
	}

	session := &ports.Session{
		AccessToken: accessToken,
		TokenType:   "bearer",
		UserID:      claims.Subject,
		Email:       claims.Email,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (g *AuthGateway) getByEmail(ctx context.Context, email string) (*userRecord, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`

	var user userRecord
	if err := g.db.GetContext(ctx, &user, g.db.Rebind(query), email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *AuthGateway) issueSession(user userRecord) (*ports.Session, error) {
	now := g.now()
	expiresAt := now.Add(g.jwtConfig.ExpiresIn)

	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    g.jwtConfig.Issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(g.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &ports.Session{
		AccessToken: tokenString,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
