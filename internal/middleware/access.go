package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-id-api/internal/service"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/response"
)

// Guard enforces an access level against the session attached by Identify. Denials
// carry the view the client should move to: the login view when unauthenticated and
// the dashboard when the role is insufficient.
func Guard(level service.AccessLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := service.Decide(level, Session(c))
		if decision.Allowed {
			c.Next()
			return
		}
		base := appErrors.ErrUnauthorized
		if decision.Redirect == service.DashboardPath {
			base = appErrors.ErrForbidden
		}
		response.Redirect(c, appErrors.Clone(base, decision.Reason), decision.Redirect)
		c.Abort()
	}
}

// RequireAuth is Guard(service.AccessProtected).
func RequireAuth() gin.HandlerFunc {
	return Guard(service.AccessProtected)
}

// RequireAdmin is Guard(service.AccessAdmin).
func RequireAdmin() gin.HandlerFunc {
	return Guard(service.AccessAdmin)
}
