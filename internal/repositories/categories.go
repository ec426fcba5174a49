package repositories

import (
	"context"

	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"gorm.io/gorm"
)

// Categories is the read-only category directory.
type Categories struct {
	db *gorm.DB
}

func NewCategories(db *gorm.DB) *Categories {
	return &Categories{db: db}
}

func (s *Categories) List(ctx context.Context) ([]models.Category, error) {
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "categories unavailable")
	}
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
