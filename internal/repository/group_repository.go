package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/coherentus/yatube/internal/models"
)

type GroupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) *GroupRepository { return &GroupRepository{db: db} }

func (r *GroupRepository) Create(ctx context.Context, g *models.Group) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *GroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).Count(&n).Error
	return n, err
}

// List returns groups in primary-key order; the group index promises no
// stronger ordering.
func (r *GroupRepository) List(ctx context.Context, offset, limit int) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&groups).Error
	return groups, err
}
