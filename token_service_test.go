package biblio

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *User {
	return &User{
		ID:        7,
		Email:     "reader@example.com",
		FirstName: "Avid",
		LastName:  "Reader",
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts := NewTokenService(newTestConfig(), nil)

	t.Run("access token round trips", func(t *testing.T) {
		raw, err := ts.IssueAccess(testUser())
		require.NoError(t, err)

		claims, err := ts.VerifyAccess(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "reader@example.com", claims.Email)
		assert.False(t, claims.IsAdmin)
		assert.NotEmpty(t, claims.ID, "token should carry a jti")
	})

	t.Run("refresh token round trips", func(t *testing.T) {
		raw, err := ts.IssueRefresh(testUser())
		require.NoError(t, err)

		claims, err := ts.VerifyRefresh(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
	})

	t.Run("admin flag is carried", func(t *testing.T) {
		admin := testUser()
		admin.IsAdmin = true

		raw, err := ts.IssueAccess(admin)
		require.NoError(t, err)

		claims, err := ts.VerifyAccess(raw)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin)
	})
}

func TestTokenService_SecretIsolation(t *testing.T) {
	ts := NewTokenService(newTestConfig(), nil)

	t.Run("access token fails refresh verification", func(t *testing.T) {
		raw, err := ts.IssueAccess(testUser())
		require.NoError(t, err)

		_, err = ts.VerifyRefresh(raw)
		assert.True(t, IsMalformedError(err), "expected malformed, got %v", err)
	})

	t.Run("refresh token fails access verification", func(t *testing.T) {
		raw, err := ts.IssueRefresh(testUser())
		require.NoError(t, err)

		_, err = ts.VerifyAccess(raw)
		assert.True(t, IsMalformedError(err))
	})

	t.Run("token from another deployment is rejected", func(t *testing.T) {
		other := newTestConfig()
		other.AccessSecret = "some-other-secret"
		foreign := NewTokenService(other, nil)

		raw, err := foreign.IssueAccess(testUser())
		require.NoError(t, err)

		_, err = ts.VerifyAccess(raw)
		assert.True(t, IsMalformedError(err))
	})
}

func TestTokenService_Rejections(t *testing.T) {
	ts := NewTokenService(newTestConfig(), nil)

	t.Run("expired token", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.AccessTokenTTL = -time.Minute
		stale := NewTokenService(cfg, nil)

		raw, err := stale.IssueAccess(testUser())
		require.NoError(t, err)

		_, err = ts.VerifyAccess(raw)
		assert.True(t, IsTokenExpiredError(err), "expected expired, got %v", err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		raw, err := ts.IssueAccess(testUser())
		require.NoError(t, err)

		parts := strings.Split(raw, ".")
		require.Len(t, parts, 3)
		parts[1] = "eyJpZCI6OTk5fQ"

		_, err = ts.VerifyAccess(strings.Join(parts, "."))
		assert.True(t, IsMalformedError(err))
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := ts.VerifyAccess("not-a-token")
		assert.True(t, IsMalformedError(err))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ts.VerifyAccess("")
		assert.Error(t, err)
	})
}

func TestTokenService_IncompleteIdentity(t *testing.T) {
	ts := NewTokenService(newTestConfig(), nil)

	t.Run("nil user", func(t *testing.T) {
		_, err := ts.IssueAccess(nil)
		assert.Error(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := ts.IssueAccess(&User{Email: "reader@example.com"})
		assert.Error(t, err)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := ts.IssueAccess(&User{ID: 7})
		assert.Error(t, err)
	})
}
