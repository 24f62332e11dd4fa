package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

/* ------------------ Audit outbox ------------------ */

const MaxOutboxRetries = 5

func (s *Store) EnqueueEvent(ctx context.Context, evt *models.OutboxEvent) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	return s.DB.WithContext(ctx).Create(evt).Error
}

// PendingEvents returns unprocessed, not yet failed events, oldest first.
func (s *Store) PendingEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	q := s.DB.WithContext(ctx).
		Where("processed_at IS NULL AND failed = ?", false).
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

func (s *Store) MarkEventProcessed(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).
		Update("processed_at", time.Now()).Error
}

// BumpEventRetry counts a failed publish. Past MaxOutboxRetries the event
// is parked as failed and left for manual inspection.
func (s *Store) BumpEventRetry(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry":  gorm.Expr("retry + 1"),
			"failed": gorm.Expr("retry + 1 >= ?", MaxOutboxRetries),
		}).Error
}

// PurgeProcessedEvents drops events published before cutoff.
func (s *Store) PurgeProcessedEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("processed_at IS NOT NULL AND processed_at < ?", cutoff).
		Delete(&models.OutboxEvent{})
	return res.RowsAffected, res.Error
}
