package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-id-api/internal/middleware"
	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/response"
)

func sessionFromContext(c *gin.Context) *models.Session {
	return middleware.Session(c)
}

// requireSession writes 401 and returns false when no session is attached.
func requireSession(c *gin.Context) (*models.Session, string, bool) {
	session := middleware.Session(c)
	clientID := middleware.ClientID(c)
	if session == nil || clientID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
		return nil, "", false
	}
	return session, clientID, true
}
