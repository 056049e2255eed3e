package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/backend"
	"storefront/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

/*
POST /auth/login
- proxies the credential exchange and persists the session on success
*/
func Login(client *backend.Client, sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		result, err := client.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondWithError(c, statusForBackendError(err, http.StatusUnauthorized), route, err.Error())
			return
		}

		token := result.Credential()
		user := result.Profile()
		if token == "" {
			respondWithError(c, http.StatusBadGateway, route, "backend returned no token")
			return
		}
		if err := sess.Login(token, user); err != nil {
			log.Printf("[%s] session persist failed: %v", route, err)
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

/*
POST /auth/register
- pass-through; registering does not log the user in
*/
func Register(client *backend.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		confirmation, err := client.Register(c.Request.Context(), backend.RegisterRequest{
			FullName: req.FullName,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
			Location: req.Location,
		})
		if err != nil {
			respondWithError(c, statusForBackendError(err, http.StatusBadRequest), route, err.Error())
			return
		}

		c.JSON(http.StatusCreated, confirmation)
	}
}

/*
GET /auth/me
- refreshes the stored profile from the backend; on backend failure the
  stored copy is served instead of logging the user out
*/
func GetMe(client *backend.Client, sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, route)

		token := sess.Token()
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in", "loginAt": "/auth/login"})
			return
		}

		user, err := client.Me(c.Request.Context(), token)
		if err != nil {
			if stored, ok := sess.User(); ok {
				log.Printf("[%s] backend unavailable, serving stored profile: %v", route, err)
				c.JSON(http.StatusOK, gin.H{"user": stored, "stale": true})
				return
			}
			respondWithError(c, statusForBackendError(err, http.StatusBadGateway), route, err.Error())
			return
		}

		if err := sess.UpdateUser(user); err != nil {
			log.Printf("[%s] session persist failed: %v", route, err)
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

/*
POST /auth/logout
- clears token, user, and userId together
*/
func Logout(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"
		defer handlePanic(c, route)

		if err := sess.Logout(); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not clear session")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// statusForBackendError forwards the backend's status when it sent one.
func statusForBackendError(err error, fallback int) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return fallback
}
