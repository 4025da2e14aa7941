package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"task-verification-service/config"
	"task-verification-service/handlers"
	"task-verification-service/middleware"
	"task-verification-service/models"
	"task-verification-service/services"
	"task-verification-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	app := fiber.New(fiber.Config{
		// 5MB screenshot cap plus multipart overhead
		BodyLimit:    6 * 1024 * 1024,
		ErrorHandler: handlers.JSONErrorHandler,
	})

	app.Use(middleware.RequestLogger())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOriginsString,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Verification{},
		&models.User{},
		&models.DailyClaim{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	// Optional redis cache for the status endpoint, keyed by REDIS_URL
	var statusCache *services.StatusCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		ttl := config.GetDurationEnv("STATUS_CACHE_TTL", 30*time.Second)
		statusCache = services.NewStatusCache(redis.NewClient(opts), ttl)
		log.Println("✅ Redis status cache enabled")
	}

	verificationService := services.NewVerificationService(db, statusCache)
	userService := services.NewUserService(db)

	orphanMaxAge := config.GetDurationEnv("ORPHAN_MAX_AGE", 24*time.Hour)
	verificationService.StartCleanupScheduler(orphanMaxAge)

	handlers.SetupVerificationRoutes(app, verificationService)
	handlers.SetupUserRoutes(app, userService)

	// Uploaded screenshots are public read-only (R2 mode serves from the CDN)
	app.Static("/uploads", "./uploads")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := config.GetEnv("PORT", "5300")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Orphan screenshot cleanup running (hourly)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)
	if utils.R2Enabled() {
		log.Println("✅ Screenshots stored in R2")
	} else {
		log.Println("✅ Screenshots stored locally under ./uploads")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
