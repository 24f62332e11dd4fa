package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

/* ------------------ Operator CRUD ------------------ */

func (s *Store) CreateOperator(ctx context.Context, op *models.Operator) error {
	return s.DB.WithContext(ctx).Create(op).Error
}

func (s *Store) GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var op models.Operator
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&op).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (s *Store) GetOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	var op models.Operator
	if err := s.DB.WithContext(ctx).First(&op, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (s *Store) UpdateOperatorFields(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := s.DB.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) TouchLogin(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", id).
		UpdateColumn("last_login_at", time.Now()).Error
}

func (s *Store) ListOperators(ctx context.Context) ([]*models.Operator, error) {
	var res []*models.Operator
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) CountOperators(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Operator{}).Count(&n).Error
	return n, err
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
