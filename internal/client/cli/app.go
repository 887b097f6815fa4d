package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophusers/internal/client/api"
	"github.com/dmitrijs2005/gophusers/internal/client/config"
	"github.com/dmitrijs2005/gophusers/internal/client/session"
)

// apiClient is the part of *api.Client the commands use.
type apiClient interface {
	Register(ctx context.Context, name, email, password string, age int) (*api.Session, error)
	Login(ctx context.Context, email, password string) (*api.Session, error)
	Me(ctx context.Context) (*api.User, error)
	Update(ctx context.Context, fields map[string]any) (*api.User, error)
	Delete(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	UploadAvatar(ctx context.Context, filename string, content io.Reader) error
	DeleteAvatar(ctx context.Context) error
	Avatar(ctx context.Context, userID string) ([]byte, error)
	SetToken(token string)
}

type sessionStore interface {
	Load(ctx context.Context) (*session.Session, error)
	Save(ctx context.Context, s session.Session) error
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	config   *config.Config
	api      apiClient
	sessions sessionStore
	current  *session.Session
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	store, err := session.Open(ctx, c.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("error opening session store: %w", err)
	}

	a := &App{
		config:   c,
		api:      api.New(c.ServerURL, c.RequestTimeout),
		sessions: store,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	if err := a.restore(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// restore picks up the session saved by a previous run.
func (a *App) restore(ctx context.Context) error {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("error loading session: %w", err)
	}
	if s != nil {
		a.current = s
		a.api.SetToken(s.Token)
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.current != nil
}

func (a *App) getStatus() string {
	if a.current == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.current.Email)
}

func (a *App) Run(ctx context.Context) {
	defer a.sessions.Close()

	fmt.Fprintln(a.out, "Welcome to gophusers CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
