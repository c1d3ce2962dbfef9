package database

import (
	"fmt"
	"os"
	"strings"

	"github.com/insightdesk/backend/internal/config"
	"github.com/insightdesk/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedInitialAdmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Analyst{},
		&models.OTPChallenge{},
		&models.Request{},
		&models.EditHistory{},
		&models.DashboardConfig{},
	)
}

// seedInitialAdmin provisions the first admin from SEED_ADMIN_EMAIL so a
// fresh deployment has someone who can log in. Further admins are managed
// out-of-band.
func seedInitialAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")))
	if email == "" {
		return nil
	}

	name := os.Getenv("SEED_ADMIN_NAME")
	if name == "" {
		name = "Portal Admin"
	}

	admin := models.Admin{
		Email:  email,
		Name:   name,
		Active: true,
	}

	return db.Create(&admin).Error
}
