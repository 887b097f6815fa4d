// Package users declares the persistence contract for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/server/models"
)

// Repository stores user accounts. Lookups of a missing user return
// common.ErrorNotFound; a duplicate email returns common.ErrEmailTaken.
type Repository interface {
	// Create inserts user and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID and GetByEmail return the user without avatar bytes.
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update writes name, email, password hash and age and refreshes UpdatedAt.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// Delete removes the user; tokens go with it by cascade.
	Delete(ctx context.Context, id string) error

	// SetAvatar replaces the avatar bytes; nil clears them.
	SetAvatar(ctx context.Context, id string, avatar []byte) error

	// GetAvatar returns common.ErrNoAvatar when the user exists without one.
	GetAvatar(ctx context.Context, id string) ([]byte, error)
}
