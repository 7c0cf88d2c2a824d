package main

import (
	"log"
	"net/http"
	"os"

	"ripple/internal/db"
	"ripple/internal/router"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		// Secure cookies only behind TLS, the server itself listens on plain HTTP
		Secure:   os.Getenv("SESSION_SECURE") == "true",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("ripple_session", store))

	// Templates and Static Assets
	r.HTMLRender = router.LoadTemplates("./web/templates")
	r.Static("/static", "./web/static")

	// Repositories, middleware and routes
	router.Register(r, db.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Ripple server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
