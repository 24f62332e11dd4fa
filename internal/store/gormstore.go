package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

type Store struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGormStore(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DatabaseDriver, err)
	}
	s := New(db, cfg)
	if err := s.Migrate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver != "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Pooling sensible defaults for small VPS (tune later)
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	return s, nil
}

// New wraps an already opened connection.
func New(db *gorm.DB, cfg *config.Config) *Store {
	return &Store{DB: db, Cfg: cfg}
}

// Migrate is non-destructive: it creates tables, columns and indexes.
func (s *Store) Migrate() error {
	return s.DB.Set("gorm:DisableForeignKeyConstraintWhenMigrating", true).AutoMigrate(
		&models.Operator{},
		&models.RefreshToken{},
		&models.UIStateEntry{},
		&models.ExportRecord{},
		&models.OutboxEvent{},
	)
}

/* ------------------ Refresh token methods ------------------ */

func hashTokenPlain(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SaveRefreshToken stores a token (hashed) and expiry
func (s *Store) SaveRefreshToken(ctx context.Context, operatorID, plainToken string, expiresAt time.Time) error {
	rt := models.RefreshToken{
		OperatorID: operatorID,
		TokenHash:  hashTokenPlain(plainToken),
		IssuedAt:   time.Now(),
		ExpiresAt:  expiresAt,
	}
	return s.DB.WithContext(ctx).Create(&rt).Error
}

// FindRefreshToken returns the token row (if valid and not revoked)
func (s *Store) FindRefreshToken(ctx context.Context, plainToken string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := s.DB.WithContext(ctx).
		Where("token_hash = ? AND revoked = ? AND expires_at > ?", hashTokenPlain(plainToken), false, time.Now()).
		First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks token revoked
func (s *Store) RevokeRefreshToken(ctx context.Context, plainToken string) error {
	return s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashTokenPlain(plainToken)).Update("revoked", true).Error
}

// RevokeOperatorTokens signs an operator out everywhere.
func (s *Store) RevokeOperatorTokens(ctx context.Context, operatorID string) error {
	return s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("operator_id = ? AND revoked = ?", operatorID, false).Update("revoked", true).Error
}

// RotateRefreshToken revokes the old token and stores the new one. It
// returns the operator the token belonged to.
func (s *Store) RotateRefreshToken(ctx context.Context, oldPlain, newPlain string, newExpiry time.Time) (string, error) {
	var operatorID string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		if err := tx.Where("token_hash = ? AND revoked = ? AND expires_at > ?", hashTokenPlain(oldPlain), false, time.Now()).
			First(&old).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RefreshToken{}).Where("id = ?", old.ID).Update("revoked", true).Error; err != nil {
			return err
		}
		operatorID = old.OperatorID
		return tx.Create(&models.RefreshToken{
			OperatorID: old.OperatorID,
			TokenHash:  hashTokenPlain(newPlain),
			IssuedAt:   time.Now(),
			ExpiresAt:  newExpiry,
		}).Error
	})
	return operatorID, err
}

// DeleteExpiredTokens drops expired and revoked tokens. It returns how many
// rows went away.
func (s *Store) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("expires_at < ? OR revoked = ?", time.Now(), true).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

/* ------------------ Helpers ------------------ */

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
