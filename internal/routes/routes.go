package routes

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/handlers"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/middleware"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/web"
)

func SetupRoutes(
	authHandler *handlers.AuthHandler,
	songHandler *handlers.SongHandler,
	ratingHandler *handlers.RatingHandler,
) *gin.Engine {

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.SetHTMLTemplate(web.Templates())

	// =========================
	// CORS CONFIG (DEV / PROD)
	// =========================
	env := os.Getenv("ENV")
	frontendURL := os.Getenv("CORS_ORIGIN")

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if env == "production" {
		if frontendURL == "" {
			log.Fatal("❌ CORS_ORIGIN environment variable is NOT set in production!")
		}
		corsConfig.AllowOrigins = []string{frontendURL}
	} else {
		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
		if frontendURL != "" {
			allowedOrigins = append(allowedOrigins, frontendURL)
		}
		corsConfig.AllowOriginFunc = func(origin string) bool {
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return strings.HasPrefix(origin, "http://192.168.") || strings.HasPrefix(origin, "http://10.")
		}
	}

	router.Use(cors.New(corsConfig))

	// =========================
	// SECURITY HEADERS
	// =========================
	router.Use(func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// =========================
	// PUBLIC PAGES
	// =========================
	public := router.Group("/")
	public.Use(middleware.OptionalSessionMiddleware())
	{
		public.GET("/", songHandler.Catalog)
		public.POST("/search", songHandler.Search)
		public.GET("/songs/:song_id/audio", songHandler.Audio)

		public.GET("/register", authHandler.RegisterForm)
		public.POST("/register", authHandler.Register)
		public.GET("/login", authHandler.LoginForm)
		public.POST("/login", authHandler.Login)
		public.GET("/guest_login", authHandler.GuestLoginForm)
		public.POST("/guest_login", authHandler.GuestLogin)
	}

	// =========================
	// SESSION-ONLY PAGES
	// =========================
	protected := router.Group("/")
	protected.Use(middleware.SessionMiddleware())
	{
		protected.GET("/logout", authHandler.Logout)
		protected.GET("/my-songs", songHandler.MySongs)
		protected.POST("/delete-song/:song_id", songHandler.DeleteSong)
		protected.POST("/rate-song", ratingHandler.RateSong)

		uploads := protected.Group("/")
		uploads.Use(middleware.RequireUploader())
		{
			uploads.GET("/upload", songHandler.UploadForm)
			uploads.POST("/upload", songHandler.Upload)
		}
	}

	// =========================
	// HEALTH
	// =========================
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Server is running",
		})
	})

	return router
}
