package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/server/models"
	"github.com/dmitrijs2005/gophusers/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/gophusers/internal/server/repositories/users"
	"github.com/google/uuid"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	avatars map[string][]byte
	err     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}, avatars: map[string][]byte{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byID[u.ID] = u.Clone()
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) Update(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byID[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	for id, existing := range f.byID {
		if id != u.ID && existing.Email == u.Email {
			return nil, common.ErrEmailTaken
		}
	}
	u.UpdatedAt = time.Now()
	f.byID[u.ID] = u.Clone()
	return u, nil
}

func (f *fakeUsersRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	delete(f.avatars, id)
	return nil
}

func (f *fakeUsersRepo) SetAvatar(_ context.Context, id string, avatar []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	if avatar == nil {
		delete(f.avatars, id)
		return nil
	}
	f.avatars[id] = avatar
	return nil
}

func (f *fakeUsersRepo) GetAvatar(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return nil, common.ErrorNotFound
	}
	a, ok := f.avatars[id]
	if !ok {
		return nil, common.ErrNoAvatar
	}
	return a, nil
}

type fakeTokensRepo struct {
	mu     sync.Mutex
	owners map[string]string
	err    error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{owners: map[string]string{}}
}

func (f *fakeTokensRepo) Create(_ context.Context, userID, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.owners[tokenHash] = userID
	return nil
}

func (f *fakeTokensRepo) FindUserID(_ context.Context, tokenHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	id, ok := f.owners[tokenHash]
	if !ok {
		return "", common.ErrorNotFound
	}
	return id, nil
}

func (f *fakeTokensRepo) Delete(_ context.Context, userID, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.owners[tokenHash] == userID {
		delete(f.owners, tokenHash)
	}
	return nil
}

func (f *fakeTokensRepo) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for h, id := range f.owners {
		if id == userID {
			delete(f.owners, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokensRepo) countFor(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.owners {
		if id == userID {
			n++
		}
	}
	return n
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTokensRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokens.Repository           { return m.t }

type fakeStore struct {
	data      map[string][]byte
	deleteErr error
	deleted   []string
}

func (f *fakeStore) Put(_ context.Context, id string, b []byte) error {
	f.data[id] = b
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) ([]byte, error) {
	b, ok := f.data[id]
	if !ok {
		return nil, common.ErrNoAvatar
	}
	return b, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.data, id)
	return nil
}
