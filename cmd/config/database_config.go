package config

import (
	"fmt"

	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDB() (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver := utils.GetConfig("DB_DRIVER"); driver {
	case "sqlite":
		dialector = sqlite.Open(fmt.Sprintf("file:%s?_foreign_keys=1", utils.GetConfig("DB_SQLITE_PATH")))
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			utils.GetConfig("DB_HOST"),
			utils.GetConfig("DB_USER"),
			utils.GetConfig("DB_PASSWORD"),
			utils.GetConfig("DB_NAME"),
			utils.GetConfig("DB_PORT"),
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	logLevel := logger.Warn
	if utils.GetConfigBool("IS_PROD") {
		logLevel = logger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Errorf("Database connection failed: %v", err)
		return nil, err
	}

	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
