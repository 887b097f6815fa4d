package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/logging"
	"github.com/dmitrijs2005/gophusers/internal/server/metrics"
	"github.com/dmitrijs2005/gophusers/internal/server/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions configures NewRouter. Limiter and Metrics may be nil.
type RouterOptions struct {
	Service        UserService
	Logger         logging.Logger
	Limiter        ratelimit.Limiter
	Metrics        *metrics.HTTP
	BasePath       string
	MaxAvatarBytes int64
	AllowedOrigins []string
	TrustedProxies []string
}

// NewRouter builds the gin engine with every route and middleware.
//
//	POST   /users               register
//	GET    /users/me            current user            (auth)
//	PATCH  /users/me            update profile          (auth)
//	DELETE /users/me            delete account          (auth)
//	POST   /users/me/avatar     upload avatar           (auth)
//	DELETE /users/me/avatar     remove avatar           (auth)
//	GET    /users/:id/avatar    fetch avatar PNG
//	POST   /users/login         login
//	POST   /users/logout        revoke current token    (auth)
//	POST   /users/logoutAll     revoke all tokens       (auth)
//	GET    /healthz, /metrics
//
// Client IPs come from the peer address unless it is one of TrustedProxies.
func NewRouter(opts RouterOptions) (*gin.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("module", "http")

	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	h := NewHandler(opts.Service, logger)

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(requestID(), accessLog(logger), recovery(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeaderName, common.RequestIDHeaderName},
			ExposeHeaders: []string{common.RequestIDHeaderName},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.NoRoute(func(c *gin.Context) { abortWithError(c, http.StatusNotFound, msgNotFound) })

	r.GET("/healthz", h.healthz)

	api := r.Group(opts.BasePath)
	authed := h.authenticate()

	api.POST("/users", h.register)
	api.POST("/users/login", loginRateLimit(limiter, logger), h.login)
	api.GET("/users/:id/avatar", h.avatar)

	api.GET("/users/me", authed, h.me)
	api.PATCH("/users/me", authed, h.update)
	api.DELETE("/users/me", authed, h.deleteMe)
	api.POST("/users/me/avatar", authed, avatarUpload(opts.MaxAvatarBytes), h.uploadAvatar)
	api.DELETE("/users/me/avatar", authed, h.deleteAvatar)
	api.POST("/users/logout", authed, h.logout)
	api.POST("/users/logoutAll", authed, h.logoutAll)

	return r, nil
}
