package server

import (
	"fmt"

	"inventario/internal/config"
	"inventario/internal/database"
	"inventario/internal/repositories"

	"gorm.io/gorm"
)

// Store is the product repository selected by configuration, with the
// resources it holds.
type Store struct {
	Products repositories.ProductRepository
	db       *gorm.DB
}

// OpenStore opens the configured store and creates its schema if needed.
func OpenStore(cfg config.DBConfig) (*Store, error) {
	if cfg.Driver == "memory" {
		return &Store{Products: repositories.NewMemoryProductRepository()}, nil
	}

	db, err := database.Open(database.Options{
		Driver: cfg.Driver,
		DSN:    cfg.DSN,
		Debug:  cfg.Debug,
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to prepare %s store: %w", cfg.Driver, err)
	}
	return &Store{
		Products: repositories.NewGORMProductRepository(db),
		db:       db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return database.Close(s.db)
}
