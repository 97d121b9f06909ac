package services

import (
	"errors"
	"fmt"
	"time"

	"scribe/internal/models"
	"scribe/internal/repositories"
	"scribe/pkg/password"
)

// ErrInvalidCredentials is returned for any login failure. It deliberately
// does not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService verifies credentials and resolves federated identities.
// Session creation itself lives at the HTTP layer; this service only
// answers "which user are these credentials for".
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   *password.Hasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher *password.Hasher) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Login checks an email/password pair against the stored hash and returns
// the matching user. Accounts created through a federated provider have
// no local password and cannot log in this way.
func (s *AuthService) Login(email, clearPassword string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Password == "" || !s.hasher.Verify(clearPassword, user.Password) {
		return nil, ErrInvalidCredentials
	}

	sanitized := *user
	sanitized.Password = ""
	return &sanitized, nil
}

// FederatedLogin resolves a provider-issued identity to a local user,
// creating the account on first sight. This is the callback target for
// the external login provider; the provider has already authenticated
// the identity.
func (s *AuthService) FederatedLogin(federatedID, email, displayName string) (*models.User, error) {
	user, err := s.userRepo.GetByFederatedID(federatedID)
	if err == nil {
		sanitized := *user
		sanitized.Password = ""
		return &sanitized, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	fid := federatedID
	newUser := &models.User{
		Email:       email,
		DisplayName: displayName,
		FederatedID: &fid,
		CreatedAt:   time.Now(),
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, fmt.Errorf("failed to create federated user: %w", err)
	}
	return newUser, nil
}
