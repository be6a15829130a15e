// Package middleware provides authentication and authorization middleware for the Gin web framework.
package middleware

import (
	"context"
	"net/http"

	contextutils "feedbackhub/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for storing account information
const (
	// AccountIDKey is the key used to store the account ID in the session
	AccountIDKey = "account_id"
	// UsernameKey is the key used to store the username in the session
	UsernameKey = "username"
)

// RequireAuth returns a middleware that requires authentication
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		accountID, ok := session.Get(AccountIDKey).(string)
		if !ok || accountID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		username, ok := session.Get(UsernameKey).(string)
		if !ok || username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		// Store account info in context for handlers to use
		c.Set(AccountIDKey, accountID)
		c.Set(UsernameKey, username)

		// Thread the account ID through the request context so spans and
		// logs downstream can read it without touching the session again
		c.Request = c.Request.WithContext(contextutils.WithAccountID(c.Request.Context(), accountID))

		c.Next()
	}
}

// RequireAdmin returns a middleware that requires authentication and an admin role
func RequireAdmin(identityService interface{}) gin.HandlerFunc {
	is, ok := identityService.(interface {
		IsAdmin(ctx context.Context, accountID string) (bool, error)
	})
	if !ok {
		panic("identityService must implement IsAdmin method")
	}

	return func(c *gin.Context) {
		session := sessions.Default(c)

		accountID, ok := session.Get(AccountIDKey).(string)
		if !ok || accountID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		username, ok := session.Get(UsernameKey).(string)
		if !ok || username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		isAdmin, err := is.IsAdmin(c.Request.Context(), accountID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check admin status",
				"code":  "INTERNAL_ERROR",
			})
			c.Abort()
			return
		}

		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
				"code":  "FORBIDDEN",
			})
			c.Abort()
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Set(UsernameKey, username)

		c.Request = c.Request.WithContext(contextutils.WithAccountID(c.Request.Context(), accountID))

		c.Next()
	}
}
