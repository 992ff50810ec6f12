package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	conn *gorm.DB
	once sync.Once
)

// Connect opens the Postgres connection once and reuses it afterwards.
func Connect(dsn string, appEnv string) (*gorm.DB, error) {
	var err error
	once.Do(func() {
		if dsn == "" {
			err = errors.New("DATABASE_URL is not set")
			return
		}

		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logLevel(appEnv)),
		})
		if err != nil {
			err = fmt.Errorf("failed to connect database: %w", err)
			return
		}

		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get sql.DB: %w", dbErr)
			return
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		log.Info().Msg("database connected")
		conn = db
	})
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, errors.New("database connection previously failed")
	}

	return conn, nil
}

func logLevel(appEnv string) logger.LogLevel {
	if appEnv == "development" {
		return logger.Info
	}
	return logger.Warn
}
