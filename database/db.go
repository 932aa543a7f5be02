package database

import (
	"fmt"
	"os"

	"autocare-backend/models"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Connect() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, relying on process environment")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		env("DB_HOST", "db"),
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"),
		env("DB_PORT", "5432"),
		env("DB_SSLMODE", "disable"))

	var err error
	// TranslateError lets handlers detect duplicate-key violations as
	// gorm.ErrDuplicatedKey (invoice uniqueness relies on this).
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
}

func AutoMigrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.ServiceCenter{},
		&models.Service{},
		&models.Booking{},
		&models.BookingService{},
		&models.JobCard{},
		&models.Task{},
		&models.PartUsage{},
		&models.Part{},
		&models.InventoryRecord{},
		&models.Invoice{},
		&models.MechanicAvailability{},
	)
	if err != nil {
		logrus.WithError(err).Fatal("automigrate failed")
	}
}
