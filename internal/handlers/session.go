package handlers

import (
	"feedbackhub/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// GetAccountIDFromSession retrieves the current account ID from the session.
// Returns ("", false) if not authenticated or if the stored value is invalid.
func GetAccountIDFromSession(c *gin.Context) (string, bool) {
	session := sessions.Default(c)
	accountID := session.Get(middleware.AccountIDKey)
	if accountID == nil {
		return "", false
	}
	id, ok := accountID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
