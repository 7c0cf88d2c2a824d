package middleware

import (
	"net/http"
	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the session user and sets it as the request-scoped
// principal. Runs before AuthRequired; a stale session (deleted account)
// simply leaves the principal unset.
func LoadUser(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get("user_id").(uint); ok {
			if user, err := users.ByID(c.Request.Context(), userID); err == nil {
				c.Set(CheckUserKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the request principal set by LoadUser, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
