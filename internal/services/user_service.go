package services

import (
	"errors"
	"fmt"
	"time"

	"scribe/internal/models"
	"scribe/internal/repositories"
	"scribe/pkg/password"
)

// UserService handles business logic for user accounts: signup, profile
// reads and updates, deletion. Password handling goes through the hasher;
// clear text never reaches the repository.
type UserService struct {
	userRepo repositories.UserRepository
	hasher   *password.Hasher
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, hasher *password.Hasher) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// CreateUser registers a new account through the standard email/password
// path. The email uniqueness check here gives a friendly early failure;
// the repository's unique constraint remains the final arbiter under
// concurrency.
func (s *UserService) CreateUser(req *models.CreateUserRequest) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(req.Email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("email %s: %w", req.Email, repositories.ErrDuplicateKey)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		// A store failure is not "email available"; surface it instead
		// of hashing and attempting a doomed insert.
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          req.Email,
		Password:       hashed,
		DisplayName:    req.DisplayName,
		CreatedAt:      time.Now(),
		ProfilePicture: req.ProfilePicture,
		Bio:            req.Bio,
		Location:       req.Location,
		Website:        req.Website,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	sanitized := *user
	sanitized.Password = ""
	return &sanitized, nil
}

// GetAllUsers retrieves all users with password hashes stripped.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// GetUserByID retrieves a single user with the password hash stripped.
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	sanitized := *user
	sanitized.Password = ""
	return &sanitized, nil
}

// UpdateUser applies a partial update. The password is re-hashed only
// when the request carries a value that differs from the stored hash: a
// nil field or a re-sent hash leaves the stored credential untouched.
func (s *UserService) UpdateUser(id string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = *req.ProfilePicture
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Website != nil {
		user.Website = *req.Website
	}
	if req.Password != nil && *req.Password != "" && *req.Password != user.Password {
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	sanitized := *user
	sanitized.Password = ""
	return &sanitized, nil
}

// DeleteUser removes a user. Posts authored by the user are left in
// place; a post holds a non-owning reference to its creator.
func (s *UserService) DeleteUser(id string) (bool, error) {
	return s.userRepo.Delete(id)
}

// IsNotFound reports whether err is the store's not-found kind.
// Convenience for handlers mapping service errors to status codes.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

// IsDuplicateKey reports whether err is the store's duplicate-key kind.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, repositories.ErrDuplicateKey)
}
