package auth

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/cristalhq/jwt/v4"
)

const (
	tokenIssuer   = "gradebook"
	tokenAudience = "api"
	tokenAlg      = jwt.HS256

	// DefaultTokenTTL is used when a TokenManager is created with ttl <= 0.
	DefaultTokenTTL = 24 * time.Hour
)

// TokenManager issues and verifies session tokens.
type TokenManager struct {
	ttl      time.Duration
	builder  *jwt.Builder
	verifier jwt.Verifier
	now      func() time.Time
}

// NewTokenManager returns a manager signing with secret. An empty secret is
// replaced by 32 random bytes, so tokens do not survive a restart.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("rand.Read error: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	signer, err := jwt.NewSignerHS(tokenAlg, key)
	if err != nil {
		return nil, fmt.Errorf("jwt.NewSignerHS error: %w", err)
	}

	verifier, err := jwt.NewVerifierHS(tokenAlg, key)
	if err != nil {
		return nil, fmt.Errorf("jwt.NewVerifierHS error: %w", err)
	}

	return &TokenManager{
		ttl:      ttl,
		builder:  jwt.NewBuilder(signer),
		verifier: verifier,
		now:      time.Now,
	}, nil
}

// Issue returns a signed token for username and its expiry.
func (m *TokenManager) Issue(username string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	claims := &jwt.RegisteredClaims{
		Subject:   username,
		Audience:  jwt.Audience{tokenAudience},
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := m.builder.Build(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("m.builder.Build error: %w", err)
	}
	return token.String(), expires, nil
}

// Verify checks token and returns the username it was issued for.
func (m *TokenManager) Verify(token string) (string, error) {
	claims := new(jwt.RegisteredClaims)
	if err := jwt.ParseClaims([]byte(token), m.verifier, claims); err != nil {
		return "", ErrInvalidToken
	}
	if !claims.IsIssuer(tokenIssuer) || !claims.IsForAudience(tokenAudience) || !claims.IsValidAt(m.now()) {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
