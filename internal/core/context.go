package core

import "context"

type contextKey string

const ctxKeyActor contextKey = "actor"

// ContextWithActor records who is performing an operation, for import history.
func ContextWithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKeyActor, username)
}

// ActorFromContext returns the username stored by ContextWithActor, or "".
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyActor).(string); ok {
		return v
	}
	return ""
}
