package repositories

import "scribe/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetAll() ([]models.User, error)
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByFederatedID(federatedID string) (*models.User, error)
	Update(user *models.User) error
	Delete(id string) (bool, error)
}
