package models

import "time"

// User represents a registered account. A user signs up either with an
// email/password pair or through a third-party login provider, in which
// case FederatedID carries the provider-issued identifier and Password
// stays empty.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password       string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never the clear text
	DisplayName    string    `json:"displayName" gorm:"type:varchar(100);not null"`
	FederatedID    *string   `json:"federatedId,omitempty" gorm:"uniqueIndex;type:varchar(255)"`
	CreatedAt      time.Time `json:"createdAt"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Location       string    `json:"location,omitempty"`
	Website        string    `json:"website,omitempty"`
}

// CreateUserRequest is the payload accepted by POST /user (signup).
type CreateUserRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	DisplayName    string `json:"displayName" validate:"required"`
	ProfilePicture string `json:"profilePicture"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	Website        string `json:"website"`
}

// UpdateUserRequest is the partial payload accepted by PUT /user/:id.
// Nil pointers mean "leave unchanged"; in particular a nil Password must
// not disturb the stored hash.
type UpdateUserRequest struct {
	Email          *string `json:"email" validate:"omitempty,email"`
	Password       *string `json:"password" validate:"omitempty,min=6"`
	DisplayName    *string `json:"displayName" validate:"omitempty,min=1"`
	ProfilePicture *string `json:"profilePicture"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	Website        *string `json:"website"`
}
