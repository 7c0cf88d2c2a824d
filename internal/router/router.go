package router

import (
	"ripple/internal/handlers"
	"ripple/internal/middleware"
	"ripple/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register wires repositories, handlers and routes onto the engine.
// Session middleware must already be installed by the caller.
func Register(r *gin.Engine, db *gorm.DB) {
	// Wrong verb on a known path answers 405 instead of 404
	r.HandleMethodNotAllowed = true

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	likes := repository.NewLikeRepository(db)
	follows := repository.NewFollowRepository(db)

	r.Use(middleware.LoadUser(users))

	authHandler := handlers.NewAuthHandler(users)
	postHandler := handlers.NewPostHandler(posts, likes, users)
	userHandler := handlers.NewUserHandler(users, posts, likes, follows)

	// 公共路由 (Public Routes)
	r.GET("/", postHandler.Index)
	r.GET("/posts", postHandler.GetPosts)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/new_post", postHandler.Create)
		authorized.GET("/following", postHandler.Following)
		authorized.POST("/like/:id", postHandler.Like)
		authorized.PUT("/edit/:id", postHandler.Edit)
		authorized.POST("/edit/:id", postHandler.Edit)
		authorized.DELETE("/delete/:id", postHandler.Delete)
		authorized.GET("/profile/:username", userHandler.Profile)
		authorized.POST("/follow/:username", userHandler.ToggleFollow)
		authorized.DELETE("/account", userHandler.DeleteAccount)
	}
}
