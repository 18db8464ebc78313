package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jobdeck/jobdeck/internal/logger"
)

// Document is one persisted collection blob. The whole collection is a
// single JSON value, same layout as the redis backend.
type Document struct {
	Key       string         `gorm:"primaryKey;column:doc_key"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// PostgresStore keeps documents in one table via GORM. It notifies local
// subscribers on every write; it cannot observe writers in other processes,
// so cross-process notification requires the redis backend.
type PostgresStore struct {
	db  *gorm.DB
	hub *hub
	log logger.Logger
}

func NewPostgresStore(dsn string, log logger.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	log.Info("running migrations")
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	return &PostgresStore{db: db, hub: newHub(), log: log}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc Document
	err := s.db.WithContext(ctx).First(&doc, "doc_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	doc := Document{Key: key, Value: datatypes.JSON(value)}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&doc).Error
	if err != nil {
		return fmt.Errorf("postgres put %s: %w", key, err)
	}

	s.hub.broadcast(key)
	return nil
}

func (s *PostgresStore) Subscribe(fn func(key string)) func() {
	return s.hub.subscribe(fn)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
