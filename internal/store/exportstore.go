package store

import (
	"context"
	"time"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

/* ------------------ Export bookkeeping ------------------ */

func (s *Store) CreateExport(ctx context.Context, rec *models.ExportRecord) error {
	return s.DB.WithContext(ctx).Create(rec).Error
}

func (s *Store) GetExport(ctx context.Context, id string) (*models.ExportRecord, error) {
	var rec models.ExportRecord
	if err := s.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListExports returns the newest exports first. An empty operatorID lists
// every operator's exports.
func (s *Store) ListExports(ctx context.Context, operatorID string, limit int) ([]models.ExportRecord, error) {
	var res []models.ExportRecord
	q := s.DB.WithContext(ctx).Order("created_at desc")
	if operatorID != "" {
		q = q.Where("operator_id = ?", operatorID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&res).Error
	return res, err
}

func (s *Store) ExportsBefore(ctx context.Context, before time.Time) ([]models.ExportRecord, error) {
	var res []models.ExportRecord
	err := s.DB.WithContext(ctx).Where("created_at < ?", before).Order("created_at").Find(&res).Error
	return res, err
}

func (s *Store) DeleteExport(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Delete(&models.ExportRecord{}, "id = ?", id).Error
}
