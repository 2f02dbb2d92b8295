package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"studyjourney/backend/config"
	"studyjourney/backend/models"
)

// InitDB opens the Postgres connection holding the identity side
// (accounts, login history) and migrates its tables.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.UserProgress{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
