package handlers

import (
	"strconv"

	"ripple/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user, ok := middleware.CurrentUser(c); ok {
		obj["CurrentUser"] = user
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper for HTML pages
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// JSONError is the API error shape: {"error": "..."}
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// pageParam reads the page query parameter, first page when absent or
// malformed. Out-of-range pages are clamped later by the repository.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// idParam parses a numeric path parameter, zero when malformed.
func idParam(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
