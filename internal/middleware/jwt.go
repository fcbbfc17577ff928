package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/internal/service"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/logger"
	"github.com/noah-isme/campus-id-api/pkg/response"
)

const (
	// ContextClaimsKey is the gin context key storing validated access token claims.
	ContextClaimsKey = "accessClaims"
	// ContextSessionKey is the gin context key storing the client's active session.
	ContextSessionKey = "currentSession"
)

// Identify attaches the client identity carried by a bearer token and the session its
// gate currently holds. A missing or invalid token leaves the request anonymous.
func Identify(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}
		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(ContextClaimsKey, claims)
		c.Set(logger.ClientIDKey, claims.ClientID)
		if session := authService.Session(c.Request.Context(), claims.ClientID); session != nil {
			c.Set(ContextSessionKey, session)
		}
		c.Next()
	}
}

// RequireClient rejects requests that carry no valid client token.
func RequireClient() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ClientID(c) == "" {
			response.Redirect(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"), service.LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClientID returns the client id attached by Identify.
func ClientID(c *gin.Context) string {
	return c.GetString(logger.ClientIDKey)
}

// Session returns the session attached by Identify, or nil.
func Session(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
