package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/session"
)

// RequireSession gates routes that need a logged-in user. An expired or
// missing credential is answered with a login redirect hint before any
// backend call is attempted.
func RequireSession(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sess.Token()
		if token == "" {
			log.Println("[AUTH] [ERROR] missing or expired session")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "login required",
				"loginAt": "/auth/login",
			})
			return
		}

		c.Set("token", token)
		c.Next()
	}
}
