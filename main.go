package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/config"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/database"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/handlers"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/logger"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/repository"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/routes"
	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/storage"
)

func main() {

	// =========================
	// LOAD CONFIG
	// =========================
	if err := config.LoadConfig(); err != nil {
		log.Println("⚠️ Config load warning:", err)
		log.Println("⚠️ Using environment variables only")
	}
	cfg := config.GlobalConfig

	logger.Init(logger.Config{LogFilePath: cfg.LogFilePath})

	// =========================
	// CONNECT DATABASE
	// =========================
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalln("❌ Database connection failed:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalln("❌ Database migration failed:", err)
	}

	// =========================
	// CONTENT DIRECTORY
	// =========================
	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalln("❌ Content directory setup failed:", err)
	}

	// =========================
	// INIT REPOSITORIES
	// =========================
	userRepo := repository.NewUserRepository(db)
	songRepo := repository.NewSongRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	// =========================
	// INIT HANDLERS
	// =========================
	authHandler := handlers.NewAuthHandler(userRepo)
	songHandler := handlers.NewSongHandler(songRepo, store)
	ratingHandler := handlers.NewRatingHandler(ratingRepo, songRepo)

	// =========================
	// ROUTES
	// =========================
	router := routes.SetupRoutes(authHandler, songHandler, ratingHandler)

	// =========================
	// PORT
	// =========================
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.ServerPort
	}
	bindAddr := "0.0.0.0:" + port

	// =========================
	// SERVER CONFIG
	// =========================
	server := &http.Server{
		Addr:         bindAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// =========================
	// START SERVER
	// =========================
	go func() {
		logger.Info(logger.EventServiceStartup, "Server started", logger.Fields(
			"addr", bindAddr,
			"env", cfg.Env,
		))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Println("❌ Server error:", err)
		}
	}()

	// =========================
	// GRACEFUL SHUTDOWN
	// =========================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(logger.EventServiceShutdown, "Shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}

	log.Println("✅ Server exited properly")
}
