package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/dayboard/internal/infrastructure/config"
	"github.com/taskmaster/dayboard/internal/ports"
)

// Backend serves both the store and the auth surface from one database
type Backend struct {
	*StoreGateway
	*AuthGateway
}

var _ ports.Backend = (*Backend)(nil)

// NewBackend creates the self-hosted backend
func NewBackend(db *sqlx.DB, jwtConfig config.JWTConfig) *Backend {
	return &Backend{
		StoreGateway: NewStoreGateway(db),
		AuthGateway:  NewAuthGateway(db, jwtConfig),
	}
}
