package authctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser is the authenticated identity. Role grants are looked up in
// the store per request, never carried in the token.
type CurrentUser struct {
	ID    uuid.UUID
	Email string
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
