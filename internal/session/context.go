package session

import "context"

type tokenKey struct{}

// ContextWithToken attaches a per-request session token. A Resolver prefers
// it over the Store's own session.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by ContextWithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok
}
