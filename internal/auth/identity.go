package auth

import (
	"context"

	"storerating/internal/model"
)

type identityKey struct{}

// ContextKey is the echo context key the resolved user is stored under.
const ContextKey = "user"

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(identityKey{}).(*model.User)
	return user
}
