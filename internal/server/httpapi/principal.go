package httpapi

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/server/models"
)

// Principal is the authenticated caller: the resolved user and the raw token
// that was presented.
type Principal struct {
	User  *models.User
	Token string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached by the authentication gate.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
