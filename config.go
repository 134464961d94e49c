package biblio

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Default token lifetimes. Access tokens are deliberately short so a stolen
// bearer token has a small blast radius; the refresh cookie does the silent
// renewal.
const (
	DefaultAccessTokenTTL  = 5 * time.Minute
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// RefreshCookieName is the cookie carrying the refresh token. Legacy clients
// key off the literal name.
const RefreshCookieName = "jwt"

// Config holds everything the service reads from the environment.
type Config struct {
	Port            int
	DatabaseURL     string
	AccessSecret    string
	RefreshSecret   string
	BcryptCost      int
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// ConfigFromEnv builds a Config from the process environment. Callers that
// keep secrets in a .env file should load it first (cmd/server uses godotenv).
func ConfigFromEnv() Config {
	cfg := Config{
		Port:          3001,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AccessSecret:  os.Getenv("SECRET_KEY"),
		RefreshSecret: os.Getenv("REFRESH_SECRET_KEY"),
		BcryptCost:    bcrypt.DefaultCost,
	}

	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		cfg.Port = port
	}

	if cost, err := strconv.Atoi(os.Getenv("BCRYPT_WORK_FACTOR")); err == nil && cost > 0 {
		cfg.BcryptCost = cost
	}

	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return c
}
