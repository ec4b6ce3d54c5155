package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	purposeAccess    = "access"
	purposeMagicLink = "magic_link"

	magicLinkTTL = 24 * time.Hour
)

// TokenClaims is the verified identity extracted from a bearer token.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

type tokenPayload struct {
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service. The secret must be non-empty and
// should be at least 32 bytes.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token service: signing secret is required")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// IssueAccessToken creates a bearer token for the user, valid for ttl.
func (s *TokenService) IssueAccessToken(user *User, ttl time.Duration) (string, error) {
	return s.issue(user, purposeAccess, ttl)
}

// IssueMagicLinkToken creates a single-purpose sign-in token.
func (s *TokenService) IssueMagicLinkToken(user *User) (string, error) {
	return s.issue(user, purposeMagicLink, magicLinkTTL)
}

func (s *TokenService) issue(user *User, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenPayload{
		Email:   user.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates a bearer token and returns its claims.
func (s *TokenService) VerifyAccessToken(tokenString string) (*TokenClaims, error) {
	return s.verify(tokenString, purposeAccess)
}

// VerifyMagicLinkToken validates a magic-link token and returns its claims.
func (s *TokenService) VerifyMagicLinkToken(tokenString string) (*TokenClaims, error) {
	return s.verify(tokenString, purposeMagicLink)
}

func (s *TokenService) verify(tokenString, purpose string) (*TokenClaims, error) {
	var payload tokenPayload
	_, err := jwt.ParseWithClaims(tokenString, &payload,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if payload.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(payload.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &TokenClaims{UserID: userID, Email: payload.Email}, nil
}
