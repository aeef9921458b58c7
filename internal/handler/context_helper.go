package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sit-transcript-api/internal/middleware"
	"github.com/noah-isme/sit-transcript-api/internal/models"
)

// currentUser extracts the authenticated user placed by the session middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
