package gormstore

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the gorm connection and hands out the relational repositories.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured backend and migrates the schema. Supported
// drivers: sqlite, postgres.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore: unknown driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open: %w", err)
	}

	if err := db.AutoMigrate(&batchRow{}, &orderRow{}, &userRow{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Batches() *BatchRepository { return &BatchRepository{db: s.db} }
func (s *Store) Orders() *OrderRepository  { return &OrderRepository{db: s.db} }
func (s *Store) Users() *UserRepository    { return &UserRepository{db: s.db} }

// Ping reports backend connectivity, used by the status endpoint.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
