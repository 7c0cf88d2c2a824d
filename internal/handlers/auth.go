package handlers

import (
	"net/http"
	"strings"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users repository.UserRepository
}

func NewAuthHandler(users repository.UserRepository) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirmation := c.PostForm("confirmation")

	if username == "" || password == "" {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Username and password are required."})
		return
	}
	if password != confirmation {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Passwords must match."})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/register.html", gin.H{"Error": "Registration failed."})
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		// Unique index on username: treat any insert failure as a taken name
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "Username already taken."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	// Same message for unknown user and wrong password
	user, err := h.users.ByUsername(c.Request.Context(), username)
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid username and/or password."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
