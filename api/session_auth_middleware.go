package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmorel/room-booking-backend/identity"
)

// SessionAuth validates the bearer token against the identity provider and
// stores the resolved user in the request context.
func SessionAuth(identityClient identity.IdentityClient, adminRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := bearerToken(c.GetHeader("Authorization"))

		if len(accessToken) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
			c.Abort()
			return
		}

		user, err := identityClient.GetSessionUser(c.Request.Context(), accessToken)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication"})
			c.Abort()
			return
		}

		c.Set("user", identity.User{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			Admin:    user.Role == adminRole,
		})
		c.Set("accessToken", accessToken)
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(identity.User)

		if !user.Admin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
			c.Abort()
			return
		}
	}
}

func bearerToken(header string) string {
	token, found := strings.CutPrefix(header, "Bearer ")

	if !found {
		return ""
	}

	return strings.TrimSpace(token)
}
