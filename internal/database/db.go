package database

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection opens the postgres pool and migrates the gateway tables.
func NewConnection(ctx context.Context, dsn string, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		// The gateway still serves orders without its log table.
		log.Error(ctx, "failed to auto-migrate models", err)
	}

	return db, nil
}

// Migrate creates or updates the tables owned by the gateway.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.TransitionLog{})
}

// Ping checks the connection for the health endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
