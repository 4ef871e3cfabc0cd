package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quizmentor/internal/api/handlers"
)

// CORSMiddleware adds CORS headers to allow cross-origin requests from
// the configured frontend.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		frontendURL := os.Getenv("FRONTEND_URL")
		if frontendURL == "" {
			frontendURL = "http://localhost:5173"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", strings.TrimSuffix(frontendURL, "/"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthRequired ensures the user is authenticated. It checks the user
// profile in the session and adds the internal database ID (UUID) to
// the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		profileValue := session.Get(handlers.ProfileSessionKey)

		profileData, ok := profileValue.(handlers.UserProfile)
		if !ok || profileValue == nil || profileData.DatabaseID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required or session invalid"})
			return
		}

		c.Set("userID", profileData.DatabaseID)
		c.Set("userProfile", profileData)
		c.Next()
	}
}
