package biblio

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the payload both token classes carry: just enough identity
// to authorize a request without a user lookup. The JSON field names are the
// wire format legacy clients decode.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID  int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// valid reports whether the decoded payload carries the required identity
// fields. Tokens missing id or email are rejected rather than defaulted;
// a missing isAdmin simply decodes as false.
func (c *TokenClaims) valid() bool {
	return c.UserID > 0 && c.Email != ""
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.New().String()
	}
}
