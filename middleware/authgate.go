package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studybuddy/model"
	"studybuddy/services"
)

const identityKey = "identity"

// AuthGate admits requests carrying a valid bearer token. Browsers are sent to
// the login page; API clients get a 401 naming it.
func AuthGate(verifier services.IdentityProvider, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			reject(c, loginPath, "Authorization header is missing")
			return
		}

		id, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			reject(c, loginPath, "Token is expired or invalid")
			return
		}

		c.Set(identityKey, id)
		c.Set("userId", id.UID)
		c.Next()
	}
}

func reject(c *gin.Context, loginPath, msg string) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "login": loginPath})
}

// Identity returns the caller admitted by AuthGate.
func Identity(c *gin.Context) model.Identity {
	id, _ := c.Get(identityKey)
	identity, _ := id.(model.Identity)
	return identity
}

// UserID is the uid of the caller admitted by AuthGate.
func UserID(c *gin.Context) string {
	return c.GetString("userId")
}
