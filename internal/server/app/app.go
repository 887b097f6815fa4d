// Package app wires the server together: database and migrations, avatar
// storage, the login rate limiter, the user service, the REST router and the
// gRPC health endpoint. Run serves both listeners until the context is
// cancelled or a signal arrives, then shuts them down gracefully.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/logging"
	"github.com/dmitrijs2005/gophusers/internal/server/avatars"
	"github.com/dmitrijs2005/gophusers/internal/server/config"
	gs "github.com/dmitrijs2005/gophusers/internal/server/grpc"
	"github.com/dmitrijs2005/gophusers/internal/server/httpapi"
	"github.com/dmitrijs2005/gophusers/internal/server/metrics"
	"github.com/dmitrijs2005/gophusers/internal/server/password"
	"github.com/dmitrijs2005/gophusers/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophusers/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophusers/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophusers/internal/server/services"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	limiter ratelimit.Limiter
	service *services.UserService
	router  http.Handler
	health  *gs.GRPCServer
}

// NewApp opens the database, applies migrations and builds every component.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Backend: c.LogBackend, Level: c.LogLevel, Format: c.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := wire(ctx, c, logger, db, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func wire(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager) (*App, error) {
	app := &App{config: c, logger: logger.With("module", "app"), db: db}

	store, err := newAvatarStore(ctx, c, m.Users(db))
	if err != nil {
		return nil, err
	}

	app.limiter, app.redis = newLimiter(c)

	app.service = services.NewUserService(db, m, password.NewBcryptHasher(c.BcryptCost), store, c, logger)

	if !strings.EqualFold(c.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := httpapi.NewRouter(httpapi.RouterOptions{
		Service:        app.service,
		Logger:         logger,
		Limiter:        app.limiter,
		Metrics:        metrics.NewHTTP(),
		BasePath:       c.BasePath,
		MaxAvatarBytes: c.MaxAvatarBytes,
		AllowedOrigins: c.AllowedOrigins,
		TrustedProxies: c.TrustedProxies,
	})
	if err != nil {
		_ = app.limiter.Close()
		if app.redis != nil {
			_ = app.redis.Close()
		}
		return nil, err
	}
	app.router = router

	app.health = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, app.service, 0)

	return app, nil
}

func newAvatarStore(ctx context.Context, c *config.Config, repo users.Repository) (avatars.Store, error) {
	switch c.AvatarStorage {
	case "", config.AvatarStorageDatabase:
		return avatars.NewDBStore(repo), nil
	case config.AvatarStorageS3:
		s, err := avatars.NewS3Store(ctx, avatars.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("avatar storage init error: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown avatar storage %q", c.AvatarStorage)
	}
}

// newLimiter picks the login limiter. The returned client is non-nil only
// for the Redis limiter.
func newLimiter(c *config.Config) (ratelimit.Limiter, *redis.Client) {
	if c.LoginRateLimit <= 0 {
		return ratelimit.Unlimited{}, nil
	}
	if c.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(c.LoginRateLimit, c.LoginRateWindow), nil
	}
	client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	return ratelimit.NewRedisLimiter(client, "", c.LoginRateLimit, c.LoginRateWindow), client
}

// Run listens on both endpoints and blocks until ctx is cancelled, SIGINT or
// SIGTERM arrives, or one of the servers fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpLis, err := net.Listen("tcp", a.config.EndpointAddrHTTP)
	if err != nil {
		return err
	}
	grpcLis, err := net.Listen("tcp", a.config.EndpointAddrGRPC)
	if err != nil {
		_ = httpLis.Close()
		return err
	}

	return a.serve(ctx, httpLis, grpcLis)
}

func (a *App) serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	srv := &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info(gctx, "Starting HTTP server", "address", httpLis.Addr().String())
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info(context.Background(), "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	g.Go(func() error {
		if err := a.health.Serve(gctx, grpcLis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases the limiter, Redis and the database pool.
func (a *App) Close() error {
	var errs []error
	if a.limiter != nil {
		errs = append(errs, a.limiter.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
