package biblio

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService issues and validates both token classes. Access and refresh
// tokens are signed with distinct secrets so compromising one class cannot
// forge the other.
type TokenService struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	logger     Logger
}

// NewTokenService creates a TokenService from the service config.
func NewTokenService(cfg Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	cfg = cfg.withDefaults()

	return &TokenService{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     "biblio",
		logger:     logger,
	}
}

// IssueAccess signs a short-lived access token for the user.
func (ts *TokenService) IssueAccess(user *User) (string, error) {
	return ts.sign(user, ts.accessKey, ts.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the user.
func (ts *TokenService) IssueRefresh(user *User) (string, error) {
	return ts.sign(user, ts.refreshKey, ts.refreshTTL)
}

// VerifyAccess validates an access token and returns its claims.
func (ts *TokenService) VerifyAccess(raw string) (*TokenClaims, error) {
	return ts.verify(raw, ts.accessKey)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (ts *TokenService) VerifyRefresh(raw string) (*TokenClaims, error) {
	return ts.verify(raw, ts.refreshKey)
}

func (ts *TokenService) sign(user *User, key []byte, ttl time.Duration) (string, error) {
	// Signing a token without a complete identity is a programming error,
	// not a user error. Fail loudly instead of minting a half-empty claim.
	if user == nil || user.ID == 0 || user.Email == "" {
		return "", errors.New("token identity is missing id or email", errors.CategoryInternal).
			WithCode(errors.CodeInternal).
			WithTextCode("INCOMPLETE_CLAIMS")
	}

	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

func (ts *TokenService) verify(raw string, key []byte) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, jwt.WithIssuer(ts.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || !claims.valid() {
		ts.logger.Error("token verify could not decode a complete claim set")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
