package biblio

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accessTokenFor(t *testing.T, user *User) string {
	t.Helper()

	raw, err := NewTokenService(newTestConfig(), nil).IssueAccess(user)
	require.NoError(t, err)
	return raw
}

func authedJSONRequest(t *testing.T, method, path, token string, payload any) *http.Request {
	t.Helper()

	req := jsonRequest(t, method, path, payload)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestOwnershipOverHTTP(t *testing.T) {
	ctx := context.Background()

	t.Run("non owner cannot mutate a post", func(t *testing.T) {
		server, repos := newTestServer(t)
		owner := seedUser(t, repos, "owner@example.com", false)
		intruder := seedUser(t, repos, "intruder@example.com", false)

		post, err := repos.Posts().Create(ctx, &Post{Creator: owner.ID, Title: "mine", PostText: "x"})
		require.NoError(t, err)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/posts/%d", post.ID), accessTokenFor(t, intruder),
			fiber.Map{"title": "stolen"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		body := decodeBody(t, resp)
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "You do not own this resource", errBody["message"])

		unchanged, err := repos.Posts().GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", unchanged.Title)
	})

	t.Run("admin can mutate any post", func(t *testing.T) {
		server, repos := newTestServer(t)
		owner := seedUser(t, repos, "owner@example.com", false)
		admin := seedUser(t, repos, "admin@example.com", true)

		post, err := repos.Posts().Create(ctx, &Post{Creator: owner.ID, Title: "mine", PostText: "x"})
		require.NoError(t, err)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/posts/%d", post.ID), accessTokenFor(t, admin),
			fiber.Map{"title": "moderated"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		changed, err := repos.Posts().GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "moderated", changed.Title)
	})

	t.Run("delete responses name the entity and id", func(t *testing.T) {
		server, repos := newTestServer(t)
		owner := seedUser(t, repos, "owner@example.com", false)

		post, err := repos.Posts().Create(ctx, &Post{Creator: owner.ID, Title: "mine", PostText: "x"})
		require.NoError(t, err)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodDelete,
			fmt.Sprintf("/posts/%d", post.ID), accessTokenFor(t, owner), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, fmt.Sprintf("Post id: %d", post.ID), body["deleted"])
	})

	t.Run("private collection is hidden from other members", func(t *testing.T) {
		server, repos := newTestServer(t)
		owner := seedUser(t, repos, "owner@example.com", false)
		other := seedUser(t, repos, "other@example.com", false)

		collection, err := repos.Collections().Create(ctx, &Collection{
			Title: "secret", Owner: owner.ID, IsPrivate: true,
		})
		require.NoError(t, err)

		path := fmt.Sprintf("/collections/%d", collection.ID)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodGet, path, accessTokenFor(t, other), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, err = server.App().Test(authedJSONRequest(t, http.MethodGet, path, accessTokenFor(t, owner), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUsersOverHTTP(t *testing.T) {
	ctx := context.Background()

	t.Run("listing requires authentication", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp, err := server.App().Test(jsonRequest(t, http.MethodGet, "/users/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("member cannot create users", func(t *testing.T) {
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPost, "/users/",
			accessTokenFor(t, member), registerPayload("new@example.com", false)))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("member cannot promote themselves via patch", func(t *testing.T) {
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/users/%d", member.ID), accessTokenFor(t, member),
			fiber.Map{"firstName": "Renamed", "isAdmin": true}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		stored, err := repos.Users().GetByID(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.FirstName)
		assert.False(t, stored.IsAdmin, "isAdmin must be ignored for non-admin callers")
	})

	t.Run("admin can promote via patch", func(t *testing.T) {
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)
		admin := seedUser(t, repos, "admin@example.com", true)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/users/%d", member.ID), accessTokenFor(t, admin),
			fiber.Map{"isAdmin": true}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		stored, err := repos.Users().GetByID(ctx, member.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsAdmin)
	})

	t.Run("member cannot patch another user", func(t *testing.T) {
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)
		victim := seedUser(t, repos, "victim@example.com", false)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/users/%d", victim.ID), accessTokenFor(t, member),
			fiber.Map{"firstName": "Hacked"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("self delete names the user number", func(t *testing.T) {
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodDelete,
			fmt.Sprintf("/users/%d", member.ID), accessTokenFor(t, member), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, fmt.Sprintf("User number %d", member.ID), body["deleted"])
	})
}

func TestTaxonomyOverHTTP(t *testing.T) {
	t.Run("member cannot create a forum", func(t *testing.T) {
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPost, "/forums/",
			accessTokenFor(t, member), fiber.Map{"title": "General"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin curates forums and subjects", func(t *testing.T) {
		server, repos := newTestServer(t)
		admin := seedUser(t, repos, "admin@example.com", true)
		token := accessTokenFor(t, admin)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPost, "/forums/",
			token, fiber.Map{"title": "General", "description": "anything goes"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, err = server.App().Test(authedJSONRequest(t, http.MethodPost, "/subjects/",
			token, fiber.Map{"name": "Fiction"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, err = server.App().Test(authedJSONRequest(t, http.MethodGet, "/forums/", token, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Len(t, body["forums"], 1)
	})

	t.Run("forum and subject lookup by id", func(t *testing.T) {
		ctx := context.Background()
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)
		token := accessTokenFor(t, member)

		forum, err := repos.Forums().Create(ctx, &Forum{Title: "General", Creator: member.ID})
		require.NoError(t, err)
		subject, err := repos.Subjects().Create(ctx, &Subject{Name: "Fiction", Creator: member.ID})
		require.NoError(t, err)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodGet,
			fmt.Sprintf("/forums/%d", forum.ID), token, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		got := body["forum"].(map[string]any)
		assert.Equal(t, "General", got["title"])

		resp, err = server.App().Test(authedJSONRequest(t, http.MethodGet,
			fmt.Sprintf("/subjects/%d", subject.ID), token, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body = decodeBody(t, resp)
		got = body["subject"].(map[string]any)
		assert.Equal(t, "Fiction", got["name"])
	})

	t.Run("any member may create a subject", func(t *testing.T) {
		server, repos := newTestServer(t)
		member := seedUser(t, repos, "member@example.com", false)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPost, "/subjects/",
			accessTokenFor(t, member), fiber.Map{"name": "Poetry"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("subject edits require the creator or an admin", func(t *testing.T) {
		ctx := context.Background()
		server, repos := newTestServer(t)
		creator := seedUser(t, repos, "creator@example.com", false)
		intruder := seedUser(t, repos, "intruder@example.com", false)
		admin := seedUser(t, repos, "admin@example.com", true)

		subject, err := repos.Subjects().Create(ctx, &Subject{Name: "Fiction", Creator: creator.ID})
		require.NoError(t, err)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/subjects/%d", subject.ID), accessTokenFor(t, intruder),
			fiber.Map{"name": "Hijacked"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, err = server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/subjects/%d", subject.ID), accessTokenFor(t, creator),
			fiber.Map{"name": "Novels"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = server.App().Test(authedJSONRequest(t, http.MethodDelete,
			fmt.Sprintf("/subjects/%d", subject.ID), accessTokenFor(t, admin), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, fmt.Sprintf("Subject id: %d", subject.ID), body["deleted"])
	})
}

func TestLikesOverHTTP(t *testing.T) {
	ctx := context.Background()

	t.Run("owner fetches and moves a like", func(t *testing.T) {
		server, repos := newTestServer(t)
		user := seedUser(t, repos, "reader@example.com", false)
		token := accessTokenFor(t, user)

		first, err := repos.Posts().Create(ctx, &Post{Creator: user.ID, Title: "first", PostText: "x"})
		require.NoError(t, err)
		second, err := repos.Posts().Create(ctx, &Post{Creator: user.ID, Title: "second", PostText: "y"})
		require.NoError(t, err)

		like, err := repos.Likes().Create(ctx, &Like{PostID: first.ID, CreatorID: user.ID})
		require.NoError(t, err)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodGet,
			fmt.Sprintf("/likes/%d", like.ID), token, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		got := body["like"].(map[string]any)
		assert.Equal(t, float64(first.ID), got["postId"])

		resp, err = server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/likes/%d", like.ID), token, fiber.Map{"postId": second.ID}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body = decodeBody(t, resp)
		got = body["like"].(map[string]any)
		assert.Equal(t, float64(second.ID), got["postId"])
	})

	t.Run("non owner cannot move a like", func(t *testing.T) {
		server, repos := newTestServer(t)
		owner := seedUser(t, repos, "owner@example.com", false)
		intruder := seedUser(t, repos, "intruder@example.com", false)

		post, err := repos.Posts().Create(ctx, &Post{Creator: owner.ID, Title: "post", PostText: "x"})
		require.NoError(t, err)
		like, err := repos.Likes().Create(ctx, &Like{PostID: post.ID, CreatorID: owner.ID})
		require.NoError(t, err)

		resp, err := server.App().Test(authedJSONRequest(t, http.MethodPatch,
			fmt.Sprintf("/likes/%d", like.ID), accessTokenFor(t, intruder),
			fiber.Map{"postId": post.ID}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
