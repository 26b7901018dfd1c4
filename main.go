// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"alsafaglobal/api/database"
	"alsafaglobal/api/handlers"
	"alsafaglobal/api/middleware"
	"alsafaglobal/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Event log (flat-file, append-only) ---
	dataDir := os.Getenv("ANALYTICS_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	eventStore, err := store.NewEventStore(dataDir)
	if err != nil {
		log.Fatalf("Failed to initialize analytics event log: %v", err)
	}
	defer eventStore.Close()

	analyticsStore := store.NewAnalyticsStore(eventStore)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsStore)

	// --- Admin accounts database (optional: the site runs without it) ---
	var authHandlers *handlers.AuthHandlers
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Printf("Admin database unavailable, starting without login routes: %v", err)
	} else {
		defer dbClient.Close()
		authHandlers = handlers.NewAuthHandlers(store.NewUserStore(dbClient.DB))
	}

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecureHeaders())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(100, 15*time.Minute))
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		if authHandlers != nil {
			api.POST("/signup", authHandlers.Signup)
			api.POST("/login", authHandlers.Login)
			api.POST("/logout", authHandlers.Logout)
		}

		analytics := api.Group("/analytics")
		{
			analytics.POST("/track", analyticsHandlers.TrackEvent)
			analytics.GET("/summary", analyticsHandlers.GetSummary)
			// Seeding can wipe the event log, so it needs the admin JWT or
			// the operations API key.
			analytics.POST("/seed", middleware.AuthRequired(), analyticsHandlers.SeedDemoData)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Al Safa API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
