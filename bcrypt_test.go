package biblio

import (
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Hash(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	t.Run("hashes a password", func(t *testing.T) {
		hash, err := hasher.Hash("secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "secret123", hash)
	})

	t.Run("same password yields different hashes", func(t *testing.T) {
		a, err := hasher.Hash("secret123")
		require.NoError(t, err)
		b, err := hasher.Hash("secret123")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects the empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, ErrNoEmptyPassword)
	})
}

func TestHasher_Compare(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)

	t.Run("accepts the matching password", func(t *testing.T) {
		assert.NoError(t, hasher.Compare("secret123", hash))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		err := hasher.Compare("wrong-password", hash)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("treats a malformed stored hash as internal", func(t *testing.T) {
		err := hasher.Compare("secret123", "not-a-bcrypt-hash")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)

		var rich *errors.Error
		require.ErrorAs(t, err, &rich)
		assert.Equal(t, errors.CategoryInternal, rich.Category)
	})
}

func TestNewHasher_CostClamping(t *testing.T) {
	t.Run("out of range cost falls back to default", func(t *testing.T) {
		assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
		assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	})

	t.Run("in range cost is kept", func(t *testing.T) {
		assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).cost)
	})
}
