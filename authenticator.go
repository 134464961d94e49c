package biblio

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AuthResult carries the outcome of a credential exchange: the persisted
// user plus a fresh access token and, for register and login, the refresh
// token that was written to the user's row.
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// Auther implements the credential flows: register, login, refresh, and
// logout. Login and register overwrite the user's stored refresh token, so
// a user has at most one live session at a time.
type Auther struct {
	users  Users
	hasher *Hasher
	tokens *TokenService
	logger Logger
}

// NewAuther wires the credential flows over the given collaborators.
func NewAuther(users Users, hasher *Hasher, tokens *TokenService, logger Logger) *Auther {
	if logger == nil {
		logger = defLogger{}
	}
	return &Auther{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register hashes the plaintext password, persists the user, and opens a
// session by issuing both tokens. The plaintext never reaches the store.
func (a *Auther) Register(ctx context.Context, user *User, password string) (*AuthResult, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	created, err := a.users.Register(ctx, user)
	if err != nil {
		return nil, err
	}

	result, err := a.openSession(ctx, created)
	if err != nil {
		return nil, err
	}

	a.logger.Info("registered user %d (%s)", created.ID, created.Email)
	return result, nil
}

// Login verifies the credentials and opens a session. An unknown email and
// a wrong password produce the same error so callers cannot tell which
// addresses are registered.
func (a *Auther) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := a.hasher.Compare(password, user.PasswordHash); err != nil {
		return nil, err
	}

	result, err := a.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	a.logger.Info("user %d logged in", user.ID)
	return result, nil
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must verify against the refresh secret AND be the token currently bound to
// a user row; a verified token whose embedded id disagrees with that row is
// rejected outright. The stored refresh token is not rotated.
func (a *Auther) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.UserID != user.ID {
		a.logger.Warn("refresh token claim id %d does not match row %d", claims.UserID, user.ID)
		return nil, ErrSessionMismatch
	}

	access, err := a.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}

// Logout clears the refresh token of whichever user it is bound to and
// returns that user. The token itself is not verified: possession of a
// stored token is enough to close the session it names.
func (a *Auther) Logout(ctx context.Context, refreshToken string) (*User, error) {
	user, err := a.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if err := a.users.ClearRefreshToken(ctx, user.ID); err != nil {
		return nil, err
	}

	a.logger.Info("user %d logged out", user.ID)
	return user, nil
}

func (a *Auther) openSession(ctx context.Context, user *User) (*AuthResult, error) {
	access, err := a.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}

	refresh, err := a.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}

	if err := a.users.SaveRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
