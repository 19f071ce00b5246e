package database

import (
	"fmt"

	"inventario/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and tunes the relational store.
type Options struct {
	Driver string
	DSN    string
	Debug  bool
}

// Open connects to the configured store. It does not create the schema.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(opts.DSN)
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", opts.Driver, err)
	}
	return db, nil
}

// Migrate creates the tables that do not exist yet.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DropAll removes every table created by Migrate.
func DropAll(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&models.Product{}); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
