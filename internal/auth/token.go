package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTokenTTL matches the access token lifetime clients got before it was configurable.
	DefaultTokenTTL = 15 * time.Minute

	tokenTypeAccess = "access"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is embedded in every access token as its subject.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Claims carries the identity as an object-valued "sub" claim.
type Claims struct {
	Identity Identity `json:"sub"`
	Type     string   `json:"type"`
	Fresh    bool     `json:"fresh"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a new access token for the identity.
func (t *Tokens) Issue(identity Identity) (string, error) {
	now := t.now()

	claims := &Claims{
		Identity: identity,
		Type:     tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and lifetime and returns the embedded identity.
func (t *Tokens) Verify(raw string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Type != tokenTypeAccess || claims.Identity.Email == "" {
		return nil, ErrInvalidToken
	}

	return &claims.Identity, nil
}
