package biblio

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepository_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an id", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))
		user := seedUser(t, repos, "reader@example.com", false)
		assert.NotZero(t, user.ID)
	})

	t.Run("duplicate email is rejected before insert", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))
		seedUser(t, repos, "reader@example.com", false)

		_, err := repos.Users().Register(ctx, &User{Email: "reader@example.com", PasswordHash: "x"})
		require.Error(t, err)

		var rich *errors.Error
		require.ErrorAs(t, err, &rich)
		assert.Equal(t, errors.CodeBadRequest, rich.Code)
	})
}

func TestUsersRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryManager(newTestDB(t))
	user := seedUser(t, repos, "reader@example.com", false)
	seedUser(t, repos, "other@example.com", true)

	t.Run("by id", func(t *testing.T) {
		found, err := repos.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", found.Email)
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repos.Users().GetByEmail(ctx, "reader@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := repos.Users().GetByID(ctx, 9999)
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("find all orders by id", func(t *testing.T) {
		list, err := repos.Users().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Less(t, list[0].ID, list[1].ID)
	})
}

func TestUsersRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("patches only the provided fields", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))
		user := seedUser(t, repos, "reader@example.com", false)

		name := "Renamed"
		updated, err := repos.Users().Update(ctx, user.ID, UserUpdate{FirstName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.FirstName)
		assert.Equal(t, "reader@example.com", updated.Email)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))

		name := "Renamed"
		_, err := repos.Users().Update(ctx, 9999, UserUpdate{FirstName: &name})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestUsersRepository_RefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("save bind and clear", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))
		user := seedUser(t, repos, "reader@example.com", false)

		require.NoError(t, repos.Users().SaveRefreshToken(ctx, user.ID, "refresh-token"))

		found, err := repos.Users().GetByRefreshToken(ctx, "refresh-token")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		require.NoError(t, repos.Users().ClearRefreshToken(ctx, user.ID))

		_, err = repos.Users().GetByRefreshToken(ctx, "refresh-token")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("saving overwrites the previous binding", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))
		user := seedUser(t, repos, "reader@example.com", false)

		require.NoError(t, repos.Users().SaveRefreshToken(ctx, user.ID, "first"))
		require.NoError(t, repos.Users().SaveRefreshToken(ctx, user.ID, "second"))

		_, err := repos.Users().GetByRefreshToken(ctx, "first")
		assert.True(t, errors.IsNotFound(err))

		found, err := repos.Users().GetByRefreshToken(ctx, "second")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})
}

func TestUsersRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the row and the bound token with it", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))
		user := seedUser(t, repos, "reader@example.com", false)
		require.NoError(t, repos.Users().SaveRefreshToken(ctx, user.ID, "refresh-token"))

		require.NoError(t, repos.Users().Delete(ctx, user.ID))

		_, err := repos.Users().GetByID(ctx, user.ID)
		assert.True(t, errors.IsNotFound(err))

		_, err = repos.Users().GetByRefreshToken(ctx, "refresh-token")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("missing row is not found", func(t *testing.T) {
		repos := NewRepositoryManager(newTestDB(t))
		err := repos.Users().Delete(ctx, 9999)
		assert.True(t, errors.IsNotFound(err))
	})
}
