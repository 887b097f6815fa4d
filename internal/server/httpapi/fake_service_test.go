package httpapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/server/avatars"
	"github.com/dmitrijs2005/gophusers/internal/server/models"
	"github.com/dmitrijs2005/gophusers/internal/server/services"
	"github.com/dmitrijs2005/gophusers/internal/server/validation"
	"github.com/google/uuid"
)

// fakeService keeps users and tokens in memory. Passwords are stored as
// "hashed:<plain>" so tests can tell a hash from the plaintext.
type fakeService struct {
	mu      sync.Mutex
	users   map[string]*models.User
	tokens  map[string]string
	avatars map[string][]byte
	seq     int

	updateCalls int
	logoutErr   error
	deleteErr   error
	pingErr     error
}

func newFakeService() *fakeService {
	return &fakeService{
		users:   map[string]*models.User{},
		tokens:  map[string]string{},
		avatars: map[string][]byte{},
	}
}

func (f *fakeService) issue(userID string) string {
	f.seq++
	tok := fmt.Sprintf("tok-%d", f.seq)
	f.tokens[tok] = userID
	return tok
}

func (f *fakeService) Register(_ context.Context, in services.RegisterInput) (*services.Session, error) {
	p := validation.Profile{Name: in.Name, Email: in.Email, Password: in.Password, Age: in.Age, CheckPassword: true}
	validation.Normalize(&p)
	if err := validation.Validate(&p); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == p.Email {
			return nil, common.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u := &models.User{ID: uuid.NewString(), Name: p.Name, Email: p.Email, PasswordHash: "hashed:" + p.Password, Age: p.Age, CreatedAt: now, UpdatedAt: now}
	f.users[u.ID] = u
	return &services.Session{User: u.Clone(), Token: f.issue(u.ID)}, nil
}

func (f *fakeService) Login(_ context.Context, email, password string) (*services.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == validation.NormalizeEmail(email) {
			if u.PasswordHash != "hashed:"+password {
				return nil, common.ErrInvalidCredentials
			}
			return &services.Session{User: u.Clone(), Token: f.issue(u.ID)}, nil
		}
	}
	return nil, common.ErrInvalidCredentials
}

func (f *fakeService) Authenticate(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return u.Clone(), nil
}

func (f *fakeService) Update(_ context.Context, user *models.User, in services.UpdateInput) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++

	u := user.Clone()
	p := validation.Profile{Name: u.Name, Email: u.Email, Age: u.Age}
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
		p.Password, p.CheckPassword = *in.Password, true
	}
	validation.Normalize(&p)
	if err := validation.Validate(&p); err != nil {
		return nil, err
	}
	for id, other := range f.users {
		if id != u.ID && other.Email == p.Email {
			return nil, common.ErrEmailTaken
		}
	}
	u.Name, u.Email, u.Age = p.Name, p.Email, p.Age
	if p.CheckPassword {
		u.PasswordHash = "hashed:" + p.Password
	}
	f.users[u.ID] = u
	return u.Clone(), nil
}

func (f *fakeService) Delete(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.users, user.ID)
	delete(f.avatars, user.ID)
	for tok, id := range f.tokens {
		if id == user.ID {
			delete(f.tokens, tok)
		}
	}
	return user, nil
}

func (f *fakeService) SetAvatar(_ context.Context, userID string, upload []byte) error {
	png, err := avatars.Process(upload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.avatars[userID] = png
	return nil
}

func (f *fakeService) DeleteAvatar(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.avatars, userID)
	return nil
}

func (f *fakeService) GetAvatar(_ context.Context, userID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return nil, common.ErrorNotFound
	}
	a, ok := f.avatars[userID]
	if !ok {
		return nil, common.ErrNoAvatar
	}
	return a, nil
}

func (f *fakeService) Logout(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logoutErr != nil {
		return f.logoutErr
	}
	if f.tokens[token] == userID {
		delete(f.tokens, token)
	}
	return nil
}

func (f *fakeService) LogoutAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logoutErr != nil {
		return f.logoutErr
	}
	for tok, id := range f.tokens {
		if id == userID {
			delete(f.tokens, tok)
		}
	}
	return nil
}

func (f *fakeService) Ping(context.Context) error {
	return f.pingErr
}

var _ UserService = (*fakeService)(nil)
