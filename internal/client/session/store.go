// Package session keeps the CLI's current login in a local SQLite file so a
// token survives between runs. The schema is applied with embedded goose
// migrations on open.
package session

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	keyToken  = "token"
	keyUserID = "user_id"
	keyEmail  = "email"
)

// Session is what the CLI remembers about the logged in user.
type Session struct {
	Token  string
	UserID string
	Email  string
}

type Store struct {
	db   *sql.DB
	repo Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// Open opens (creating if needed) the session database at dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session migrations: %w", err)
	}
	return &Store{db: db, repo: NewSQLiteRepository(db)}, nil
}

// Load returns the saved session, or nil when nobody is logged in.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	token, err := s.repo.Get(ctx, keyToken)
	if err != nil || token == nil {
		return nil, err
	}
	userID, err := s.repo.Get(ctx, keyUserID)
	if err != nil {
		return nil, err
	}
	email, err := s.repo.Get(ctx, keyEmail)
	if err != nil {
		return nil, err
	}
	return &Session{Token: string(token), UserID: string(userID), Email: string(email)}, nil
}

// Save replaces the stored session atomically.
func (s *Store) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for k, v := range map[string]string{keyToken: sess.Token, keyUserID: sess.UserID, keyEmail: sess.Email} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
