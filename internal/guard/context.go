package guard

import (
	"context"

	"github.com/dharohar/dharohar/internal/token"
)

type ctxKey int

const claimsKey ctxKey = iota

func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	return claims, ok && claims != nil
}
