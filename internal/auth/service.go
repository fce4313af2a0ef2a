package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// DefaultMinPasswordLength applies when a Service is created with a
// non-positive minimum.
const DefaultMinPasswordLength = 6

// Service registers users, logs them in and verifies their tokens.
type Service struct {
	repo        UserRepository
	tokens      *TokenManager
	minPassword int
	cost        int
}

// NewService returns a Service. minPassword <= 0 uses DefaultMinPasswordLength.
func NewService(repo UserRepository, tokens *TokenManager, minPassword int) *Service {
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}
	return &Service{
		repo:        repo,
		tokens:      tokens,
		minPassword: minPassword,
		cost:        bcrypt.DefaultCost,
	}
}

// Register validates nu and creates the account.
// Returns FieldErrors for invalid input and ErrUserExists for a taken
// username or email.
func (s *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	nu.FullName = strings.TrimSpace(nu.FullName)
	nu.Username = strings.TrimSpace(nu.Username)
	nu.Email = strings.ToLower(strings.TrimSpace(nu.Email))

	if err := validateStruct(nu); err != nil {
		return User{}, err
	}
	if len(nu.Password) < s.minPassword {
		return User{}, FieldErrors{
			"password": fmt.Sprintf("password must be at least %d characters long", s.minPassword),
		}
	}

	exists, err := s.repo.Exists(ctx, nu.Username, nu.Email)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("bcrypt.GenerateFromPassword error: %w", err)
	}

	user, err := s.repo.Create(ctx, nu, string(hash))
	if err != nil {
		return User{}, err
	}

	logging.WithFields(ctx, "username", user.Username).Info("user registered")
	return user, nil
}

// Login checks credentials and issues a session token.
// Unknown users and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, c Credentials) (Session, error) {
	c.Username = strings.TrimSpace(c.Username)
	if err := validateStruct(c); err != nil {
		return Session{}, err
	}

	stored, err := s.repo.ByUsername(ctx, c.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(c.Password)); err != nil {
		logging.WithFields(ctx, "username", c.Username).Warn("login failed")
		return Session{}, ErrInvalidCredentials
	}

	if err := s.repo.TouchLogin(ctx, stored.ID); err != nil {
		logging.FromContext(ctx).Warn("record login time failed", "error", err)
	}

	token, expires, err := s.tokens.Issue(stored.Username)
	if err != nil {
		return Session{}, err
	}

	logging.WithFields(ctx, "username", stored.Username).Info("user logged in")
	return Session{Token: token, ExpiresAt: expires, User: stored.User}, nil
}

// Verify returns the username a token was issued for.
func (s *Service) Verify(token string) (string, error) {
	return s.tokens.Verify(strings.TrimSpace(token))
}
