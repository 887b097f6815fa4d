package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/gin-gonic/gin"
)

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate rejects the request with 401 unless it carries a token the
// service accepts. On success the Principal is attached to the request
// context.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, msgAuthenticate)
			return
		}

		user, err := h.svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				abortWithError(c, http.StatusUnauthorized, msgAuthenticate)
				return
			}
			h.fail(c, err)
			return
		}

		ctx := WithPrincipal(c.Request.Context(), &Principal{User: user, Token: token})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// principal is only called behind authenticate.
func principal(c *gin.Context) *Principal {
	p, ok := PrincipalFrom(c.Request.Context())
	if !ok {
		panic("httpapi: handler registered without the authentication gate")
	}
	return p
}
