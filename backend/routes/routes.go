package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studyjourney/backend/config"
	"studyjourney/backend/controllers"
	"studyjourney/backend/middleware"
	"studyjourney/backend/services"
	"studyjourney/backend/store"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, gateway store.Gateway, registry *services.Registry, aggregator *services.Aggregator, streaks *services.StreakCalculator) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg, gateway, registry)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/token", authController.TokenLogin)

	authMiddleware := middleware.AuthMiddleware(cfg)

	app.Post("/api/auth/logout", authMiddleware, authController.Logout)
	app.Delete("/api/auth/account", authMiddleware, authController.DeleteAccount)

	// User routes
	userController := controllers.NewUserController(db, cfg, gateway)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Study routes
	studyController := controllers.NewStudyController(cfg, registry)
	study := app.Group("/api/study", authMiddleware)
	study.Get("/today", studyController.GetToday)
	study.Post("/time", studyController.AddStudyTime)
	study.Post("/break", studyController.AddBreakTime)
	study.Post("/session", studyController.CompleteSession)
	study.Post("/simulate/:kind", studyController.Simulate)
	study.Put("/goals", studyController.UpdateGoals)
	study.Get("/medals", studyController.GetMedals)
	study.Post("/medals/ack", studyController.AcknowledgeMedals)

	// Statistics routes
	statsController := controllers.NewStatsController(cfg, aggregator, streaks)
	stats := app.Group("/api/stats", authMiddleware)
	stats.Get("/", statsController.GetStatistics)
	stats.Get("/streak", statsController.GetStreak)
}
