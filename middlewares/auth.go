package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"npj/utils"
)

// Authenticate verifies the raw token from the Authorization header and
// puts the caller's id and role into the context for downstream handlers.
func Authenticate(c *gin.Context) {
	token := c.Request.Header.Get("Authorization")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized."})
		return
	}

	userID, role, err := utils.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized."})
		return
	}

	c.Set("userId", userID)
	c.Set("role", role)
	c.Next()
}
