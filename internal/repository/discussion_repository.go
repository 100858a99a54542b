package repository

import (
	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type DiscussionRepository struct {
	DB *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{DB: db}
}

func (r *DiscussionRepository) Create(discussion *model.Discussion) error {
	return r.DB.Create(discussion).Error
}

func (r *DiscussionRepository) FindByID(id uint) (*model.Discussion, error) {
	var discussion model.Discussion
	err := r.DB.First(&discussion, id).Error
	return &discussion, err
}

// ListByTrack 顶层讨论（parent_id为空），回复单独查询
func (r *DiscussionRepository) ListByTrack(trackID uint, page, limit int) ([]model.Discussion, int64, error) {
	var discussions []model.Discussion
	var total int64

	query := r.DB.Model(&model.Discussion{}).
		Where("track_id = ? AND parent_id IS NULL", trackID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&discussions).Error
	return discussions, total, err
}

func (r *DiscussionRepository) ListReplies(parentID uint) ([]model.Discussion, error) {
	var replies []model.Discussion
	err := r.DB.Where("parent_id = ?", parentID).Order("id ASC").Find(&replies).Error
	return replies, err
}

func (r *DiscussionRepository) Update(discussion *model.Discussion) error {
	return r.DB.Save(discussion).Error
}

func (r *DiscussionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Discussion{}, id).Error
}
