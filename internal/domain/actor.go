package domain

import (
	"context"
	"errors"
)

// Actor is the authenticated identity attached to a request context by the
// auth middleware. Identity management itself lives outside this service.
type Actor struct {
	ID    string
	Phone string
	Role  ActorRole
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type actorContextKey struct{}

// ContextWithActor attaches an actor to the context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from the context, if present.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(*Actor)
	return actor, ok
}
