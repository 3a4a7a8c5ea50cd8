package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const principalKey = "tagameal:principal"

var ErrInsufficientPrivilege = errors.New("new row violates row-level security policy")

type (
	// Gateway hands out database sessions bound to a principal. Every query
	// issued through such a session is filtered by the RowLevelSecurity plugin.
	Gateway interface {
		Anonymous(ctx context.Context) *gorm.DB
		AsUser(ctx context.Context, userID string) *gorm.DB
		Service(ctx context.Context) *gorm.DB
		Client(ctx context.Context, p Principal) *gorm.DB
		Transaction(ctx context.Context, p Principal, fn func(tx *gorm.DB) error) error
	}

	gateway struct {
		db *gorm.DB
	}
)

func NewGateway(db *gorm.DB) (Gateway, error) {
	if err := db.Use(&RowLevelSecurity{}); err != nil && !errors.Is(err, gorm.ErrRegistered) {
		return nil, err
	}
	return &gateway{db: db}, nil
}

func (g *gateway) Anonymous(ctx context.Context) *gorm.DB {
	return g.Client(ctx, Anon())
}

func (g *gateway) AsUser(ctx context.Context, userID string) *gorm.DB {
	return g.Client(ctx, User(userID))
}

func (g *gateway) Service(ctx context.Context) *gorm.DB {
	return g.Client(ctx, Service())
}

func (g *gateway) Client(ctx context.Context, p Principal) *gorm.DB {
	return g.db.WithContext(ctx).Set(principalKey, p).Session(&gorm.Session{})
}

func (g *gateway) Transaction(ctx context.Context, p Principal, fn func(tx *gorm.DB) error) error {
	return g.Client(ctx, p).Transaction(fn)
}

// PrincipalOf returns the principal a session is bound to. Sessions opened
// outside the gateway (migrations, seeding) act as the service role.
func PrincipalOf(db *gorm.DB) Principal {
	if v, ok := db.Get(principalKey); ok {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	return Service()
}

// IsInsufficientPrivilege reports policy denials from the plugin as well as
// Postgres' own 42501.
func IsInsufficientPrivilege(err error) bool {
	if errors.Is(err, ErrInsufficientPrivilege) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42501"
}
