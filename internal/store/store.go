// Package store persists user accounts. Email uniqueness is enforced by each
// backend itself, so concurrent registrations cannot both succeed.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNotFound       = errors.New("user not found")
)

// User is a registered account. Password holds the bcrypt hash, never the plain text.
type User struct {
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"`
}

// UserStore is implemented by every backend.
type UserStore interface {
	// Create inserts a user and returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *User) error
	// FindByEmail returns ErrNotFound when no such user exists.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Close(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Driver   string          `mapstructure:"driver"`
	Mongo    *MongoConfig    `mapstructure:"mongo"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri" json:"-"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url" json:"-"`
}

// Open connects to the configured backend and makes sure the email
// uniqueness constraint exists.
func Open(ctx context.Context, cfg *Config, logger *zap.Logger) (UserStore, error) {
	if cfg == nil {
		return nil, errors.New("store configuration is required")
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverMongo
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("store_driver", driver))

	switch driver {
	case DriverMongo:
		if cfg.Mongo == nil {
			return nil, errors.New("store.mongo configuration is required")
		}
		return NewMongo(ctx, cfg.Mongo, logger)
	case DriverPostgres:
		if cfg.Postgres == nil || strings.TrimSpace(cfg.Postgres.URL) == "" {
			return nil, errors.New("store.postgres.url is required")
		}
		return NewPostgres(ctx, cfg.Postgres.URL, logger)
	case DriverMemory:
		logger.Warn("using in-memory user store; accounts are lost on restart")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// NormalizeEmail is the canonical form used as the unique key.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
