package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

/* ------------------ UI state ------------------ */

// OperatorUIState is a uistate.Store scoped to one operator.
type OperatorUIState struct {
	s          *Store
	operatorID string
}

func (s *Store) UIState(operatorID string) *OperatorUIState {
	return &OperatorUIState{s: s, operatorID: operatorID}
}

func (u *OperatorUIState) Get(ctx context.Context, key string) (string, bool, error) {
	var e models.UIStateEntry
	err := u.s.DB.WithContext(ctx).
		Where("operator_id = ? AND key = ?", u.operatorID, key).
		First(&e).Error
	if IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (u *OperatorUIState) Set(ctx context.Context, key, value string) error {
	e := models.UIStateEntry{OperatorID: u.operatorID, Key: key, Value: value, UpdatedAt: time.Now()}
	return u.s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operator_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}
