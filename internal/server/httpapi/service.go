package httpapi

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/server/models"
	"github.com/dmitrijs2005/gophusers/internal/server/services"
)

// UserService is what the handlers need from the business layer.
// *services.UserService implements it.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User, in services.UpdateInput) (*models.User, error)
	Delete(ctx context.Context, user *models.User) (*models.User, error)
	SetAvatar(ctx context.Context, userID string, upload []byte) error
	DeleteAvatar(ctx context.Context, userID string) error
	GetAvatar(ctx context.Context, userID string) ([]byte, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

var _ UserService = (*services.UserService)(nil)
