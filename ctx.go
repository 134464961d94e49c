package biblio

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// claimsLocalsKey is where the Authenticate middleware stores decoded claims
// on the fiber request.
const claimsLocalsKey = "user"

// WithClaimsContext sets the TokenClaims in the given context
func WithClaimsContext(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the TokenClaims from the standard context
func GetClaims(ctx context.Context) (*TokenClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*TokenClaims)
	return raw, ok
}

// ClaimsFromRequest returns the claims attached by the Authenticate
// middleware, or nil for an anonymous request.
func ClaimsFromRequest(c *fiber.Ctx) *TokenClaims {
	claims, ok := c.Locals(claimsLocalsKey).(*TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
