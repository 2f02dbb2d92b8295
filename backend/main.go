package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"studyjourney/backend/config"
	"studyjourney/backend/middleware"
	"studyjourney/backend/routes"
	"studyjourney/backend/services"
	"studyjourney/backend/store"
	"studyjourney/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Document store: MongoDB when configured, in-memory otherwise
	var gateway store.Gateway
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		gateway, err = store.NewMongoGateway(ctx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			log.Fatalf("Error connecting to document store: %v", err)
		}
	} else {
		logger.Println("MONGO_URI not set, study data will not survive restarts")
		gateway = store.NewMemoryGateway()
	}

	registry := services.NewRegistry(gateway, logger)
	aggregator := services.NewAggregator(gateway, logger)
	streaks := services.NewStreakCalculator(gateway)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, gateway, registry, aggregator, streaks)

	// Drain pending study writes on shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		registry.Flush()
		app.Shutdown()
	}()

	// Start server
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}
