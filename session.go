package biblio

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Authenticate is the session middleware. It never rejects a request for
// lacking credentials: no Authorization header means the request continues
// anonymously and the per-route policies decide. A header that is present
// but fails verification is an error and propagates to the error handler.
func Authenticate(tokens *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		claims, err := tokens.VerifyAccess(bearerToken(header))
		if err != nil {
			return err
		}

		c.Locals(claimsLocalsKey, claims)
		c.SetUserContext(WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

// bearerToken strips the auth scheme from an Authorization header value.
// The scheme match is case-insensitive, mirroring clients that send
// "bearer" in lowercase; a header without a scheme is passed through and
// left for token verification to reject.
func bearerToken(header string) string {
	const scheme = "Bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return strings.TrimSpace(header)
}
