// Package auth registers and authenticates users and issues bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spigell/careerpath/internal/store"
)

const (
	// DefaultBcryptCost is used when no cost is configured.
	DefaultBcryptCost = bcrypt.DefaultCost
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("email and password are required")
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
)

// Service implements registration and login on top of a user store.
type Service struct {
	users      store.UserStore
	tokens     *Tokens
	logger     *zap.Logger
	bcryptCost int
}

func NewService(users store.UserStore, tokens *Tokens, bcryptCost int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register stores a new user with a salted password hash.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	email = store.NormalizeEmail(email)
	if email == "" || password == "" {
		return ErrMissingFields
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.users.Create(ctx, &store.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hash),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("email", email))
	return nil
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("login for unknown email", zap.String("email", email))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Debug("login with wrong password", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(Identity{Name: user.Name, Email: user.Email})
	if err != nil {
		return "", err
	}

	s.logger.Info("user logged in", zap.String("email", user.Email))
	return token, nil
}

// Identify returns the identity carried by a bearer token.
func (s *Service) Identify(token string) (*Identity, error) {
	return s.tokens.Verify(token)
}
