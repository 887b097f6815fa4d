// Package services contains server-side business logic. UserService covers
// the account lifecycle: registration, session tokens, profile updates,
// avatars and deletion.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/logging"
	"github.com/dmitrijs2005/gophusers/internal/server/auth"
	"github.com/dmitrijs2005/gophusers/internal/server/avatars"
	"github.com/dmitrijs2005/gophusers/internal/server/config"
	"github.com/dmitrijs2005/gophusers/internal/server/models"
	"github.com/dmitrijs2005/gophusers/internal/server/password"
	"github.com/dmitrijs2005/gophusers/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophusers/internal/server/validation"
	"github.com/google/uuid"
)

// Session is a user together with a freshly issued raw token.
type Session struct {
	User  *models.User
	Token string
}

// RegisterInput is the registration payload. Age defaults to 0.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UpdateInput carries the fields a profile update names; nil means untouched.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        password.Hasher
	avatars       avatars.Store
	secretKey     []byte
	tokenValidity time.Duration
	logger        logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher, store avatars.Store, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		hasher:        hasher,
		avatars:       store,
		secretKey:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		logger:        logger.With("module", "users"),
	}
}

// Register validates and stores a new user and issues its first token. Both
// rows are written in one transaction.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	p := validation.Profile{Name: in.Name, Email: in.Email, Password: in.Password, Age: in.Age, CheckPassword: true}
	validation.Normalize(&p)
	if err := validation.Validate(&p); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Name: p.Name, Email: p.Email, PasswordHash: hash, Age: p.Age}
	var token string

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		t, err := s.issueToken(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// Login checks credentials and issues a new token. An unknown email and a
// wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, plain string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Spend the same bcrypt time as for a real account.
			_, _ = s.hasher.Verify(plain, s.dummy())
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(plain, user.PasswordHash)
	if err != nil || !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}

	return &Session{User: user, Token: token}, nil
}

// Authenticate resolves a raw bearer token to its user. The token must carry
// a valid signature, be unexpired, be on record and belong to the user named
// in its claims; otherwise common.ErrorUnauthorized is returned.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	subject, err := auth.GetUserIDFromToken(token, s.secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}

	ownerID, err := s.repomanager.Tokens(s.db).FindUserID(ctx, common.HashToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if ownerID != subject {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Update applies in to a copy of user, validates it and persists it. user
// itself is never modified; the stored result is returned.
func (s *UserService) Update(ctx context.Context, user *models.User, in UpdateInput) (*models.User, error) {
	updated := user.Clone()

	p := validation.Profile{Name: updated.Name, Email: updated.Email, Age: updated.Age}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Password != nil {
		p.Password = *in.Password
		p.CheckPassword = true
	}

	validation.Normalize(&p)
	if err := validation.Validate(&p); err != nil {
		return nil, err
	}

	updated.Name, updated.Email, updated.Age = p.Name, p.Email, p.Age
	if p.CheckPassword {
		hash, err := s.hasher.Hash(p.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		updated.PasswordHash = hash
	}

	return s.repomanager.Users(s.db).Update(ctx, updated)
}

// Delete removes the user with its tokens and avatar and returns the record
// as it was.
func (s *UserService) Delete(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.repomanager.Users(s.db).Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	// The users.avatar column is gone with the row; external stores are not.
	if err := s.avatars.Delete(ctx, user.ID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "avatar cleanup failed", "user_id", user.ID, "error", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", user.ID)
	return user, nil
}

// SetAvatar resizes an uploaded image and stores it as the user's avatar.
func (s *UserService) SetAvatar(ctx context.Context, userID string, upload []byte) error {
	png, err := avatars.Process(upload)
	if err != nil {
		return err
	}
	return s.avatars.Put(ctx, userID, png)
}

// DeleteAvatar clears the avatar; clearing an absent avatar succeeds.
func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	return s.avatars.Delete(ctx, userID)
}

// GetAvatar returns the PNG bytes of a user's avatar. Unknown or malformed
// ids yield common.ErrorNotFound, a user without avatar common.ErrNoAvatar.
func (s *UserService) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrorNotFound
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.avatars.Get(ctx, userID)
}

// Logout revokes the presented token only.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.repomanager.Tokens(s.db).Delete(ctx, userID, common.HashToken(token))
}

// LogoutAll revokes every token of the user.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	n, err := s.repomanager.Tokens(s.db).DeleteAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	s.logger.Debug(ctx, "sessions revoked", "user_id", userID, "count", n)
	return nil
}

// Ping checks that the database answers.
func (s *UserService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *UserService) issueToken(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.secretKey, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	if err := s.repomanager.Tokens(db).Create(ctx, userID, common.HashToken(token)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err == nil {
			s.dummyHash, _ = s.hasher.Hash(pw)
		}
	})
	return s.dummyHash
}
