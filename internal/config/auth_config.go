package config

import (
	"os"
	"strconv"
	"time"
)

// AuthConfig carries the signing secrets, token lifetimes and throttling
// policy injected into the auth service. Secrets are explicit configuration,
// never ambient globals, so tests can run with distinct secrets.
type AuthConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetMaxLoginAttempts() int64
	GetLoginBlockDuration() time.Duration

	// Federated identity providers
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGithubClientID() string
	GetGithubClientSecret() string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetAccessTokenSecret() string {
	return GetEnv("JWT_ACCESS_SECRET", "dev-access-secret")
}

func (Auth) GetRefreshTokenSecret() string {
	return GetEnv("JWT_REFRESH_SECRET", "dev-refresh-secret")
}

// Access tokens are short-lived and stateless: 15 minutes.
func (Auth) GetAccessTokenTTL() time.Duration {
	return durationEnv("ACCESS_TOKEN_TTL", 15*time.Minute)
}

// Refresh tokens live 7 days, matching the session-store slot TTL.
func (Auth) GetRefreshTokenTTL() time.Duration {
	return durationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour)
}

func (Auth) GetMaxLoginAttempts() int64 {
	if v, err := strconv.ParseInt(os.Getenv("MAX_ATTEMPTS"), 10, 64); err == nil && v > 0 {
		return v
	}
	return 3
}

func (Auth) GetLoginBlockDuration() time.Duration {
	return durationEnv("BLOCK_DURATION", 2*time.Hour)
}

func (Auth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Auth) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (Auth) GetGithubClientID() string {
	return GetEnv("GITHUB_CLIENT_ID", "")
}

func (Auth) GetGithubClientSecret() string {
	return GetEnv("GITHUB_CLIENT_SECRET", "")
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(envVar)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}
