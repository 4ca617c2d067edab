package constants

// Application Information
const (
	AppName    = "Accounts Service"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Session cookies issued on login and token refresh, cleared on logout.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// Rate limit key prefix in Redis
const (
	RateLimitKeyPrefix = "accounts:ratelimit:"
)
