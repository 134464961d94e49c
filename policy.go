package biblio

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// The policies below are the only place a request gets rejected for who the
// caller is. They compose as route middleware after Authenticate; each one
// either returns a terminal rich error or passes the request along.

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated(c *fiber.Ctx) error {
	if ClaimsFromRequest(c) == nil {
		return ErrAuthRequired
	}
	return c.Next()
}

// RequireAdmin rejects requests unless the caller's isAdmin claim is exactly
// true. An anonymous request fails the same way: absent claims are not admin.
func RequireAdmin(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil || !claims.IsAdmin {
		return ErrAdminRequired
	}
	return c.Next()
}

// RequireSelfOrAdmin admits admins, and otherwise only the user whose id
// matches the numeric :id route parameter.
func RequireSelfOrAdmin(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	if claims.IsAdmin {
		return c.Next()
	}

	id, err := RouteID(c)
	if err != nil {
		return err
	}

	if claims.UserID != id {
		return ErrAuthRequired
	}

	return c.Next()
}

// Ownable is any record that knows which user owns it.
type Ownable interface {
	OwnerID() int64
}

// CheckResourceOwner guards a mutation on a fetched record: admins pass,
// owners pass, everyone else is rejected. A nil resource is a no-op; the
// lookup that produced it reports absence as NotFound on its own.
func CheckResourceOwner(resource Ownable, claims *TokenClaims) error {
	if resource == nil {
		return nil
	}

	if claims == nil {
		return ErrAuthRequired
	}

	if !claims.IsAdmin && resource.OwnerID() != claims.UserID {
		return ErrNotOwner
	}

	return nil
}

// RouteID parses the numeric :id route parameter. Path parameters arrive as
// strings, so every handler keyed by id funnels through this coercion.
func RouteID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, BadRequestError(err, "Invalid id: "+raw)
	}
	return id, nil
}
