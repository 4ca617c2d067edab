package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/service"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
	"go.uber.org/zap"
)

// JWTMiddleware is the request gate: it resolves an inbound access token to
// a user identity before any workflow runs.
type JWTMiddleware struct {
	tokenService *service.TokenService
	users        service.UserStore
}

func NewJWTMiddleware(tokenService *service.TokenService, users service.UserStore) *JWTMiddleware {
	return &JWTMiddleware{
		tokenService: tokenService,
		users:        users,
	}
}

// tokenFromRequest reads the access token from the session cookie first and
// falls back to the Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(constants.CookieAccessToken); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// RequireAuth validates the access token and places the resolved identity in
// the gin context. Missing or invalid tokens end the request with 401.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			logger.GetLogger().Warn("Missing access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			m.unauthorized(c)
			return
		}

		userID, err := m.tokenService.Verify(tokenString, service.TokenKindAccess)
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			m.unauthorized(c)
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.GetLogger().Warn("Token resolved to unknown user",
				zap.String("path", c.Request.URL.Path),
				zap.Uint("user_id", userID),
				zap.Error(err))
			m.unauthorized(c)
			return
		}

		c.Set(constants.GinKeyUserID, user.ID)
		c.Set(constants.GinKeyUsername, user.Username)
		c.Set(constants.GinKeyEmail, user.Email)

		// Carry the identity into the request context for log correlation.
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), user.ID))

		c.Next()
	}
}

func (m *JWTMiddleware) unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(
		http.StatusUnauthorized, "Unauthorized", nil, "", false))
	c.Abort()
}

// AuthenticatedUserID reads the identity the gate placed in the context.
func AuthenticatedUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.GinKeyUserID)
	if !exists {
		return 0, false
	}

	userID, ok := value.(uint)
	return userID, ok
}
