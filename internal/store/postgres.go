package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const createUsersTable = `
	CREATE TABLE IF NOT EXISTS users (
		email    VARCHAR(255) PRIMARY KEY,
		name     VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL
	);
`

// Postgres stores users in a table keyed by email.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects, pings and creates the users table when absent.
func NewPostgres(ctx context.Context, url string, logger *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createUsersTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}

	logger.Info("postgres user store ready")

	return &Postgres{pool: pool, logger: logger}, nil
}

func (s *Postgres) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, name, password)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, NormalizeEmail(user.Email), user.Name, user.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT name, email, password
		FROM users
		WHERE email = $1
	`

	user := &User{}
	err := s.pool.QueryRow(ctx, query, NormalizeEmail(email)).Scan(&user.Name, &user.Email, &user.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Postgres) Close(context.Context) error {
	s.pool.Close()
	return nil
}
