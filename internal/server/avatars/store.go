package avatars

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/server/repositories/users"
)

// Store keeps processed avatar bytes per user. Get returns
// common.ErrNoAvatar (or common.ErrorNotFound) when nothing is stored.
// Delete of an absent avatar succeeds.
type Store interface {
	Put(ctx context.Context, userID string, data []byte) error
	Get(ctx context.Context, userID string) ([]byte, error)
	Delete(ctx context.Context, userID string) error
}

// DBStore keeps avatars in the users.avatar column.
type DBStore struct {
	users users.Repository
}

func NewDBStore(repo users.Repository) *DBStore {
	return &DBStore{users: repo}
}

func (s *DBStore) Put(ctx context.Context, userID string, data []byte) error {
	return s.users.SetAvatar(ctx, userID, data)
}

func (s *DBStore) Get(ctx context.Context, userID string) ([]byte, error) {
	return s.users.GetAvatar(ctx, userID)
}

func (s *DBStore) Delete(ctx context.Context, userID string) error {
	return s.users.SetAvatar(ctx, userID, nil)
}

var _ Store = (*DBStore)(nil)
