package repository

import (
	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type TrackRepository struct {
	DB *gorm.DB
}

func NewTrackRepository(db *gorm.DB) *TrackRepository {
	return &TrackRepository{DB: db}
}

func (r *TrackRepository) Create(track *model.Track) error {
	return r.DB.Create(track).Error
}

func (r *TrackRepository) FindByID(id uint) (*model.Track, error) {
	var track model.Track
	err := r.DB.First(&track, id).Error
	return &track, err
}

// FindByIDWithModules 预加载按Order排序的模块列表
func (r *TrackRepository) FindByIDWithModules(id uint) (*model.Track, error) {
	var track model.Track
	err := r.DB.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("modules.order ASC")
	}).First(&track, id).Error
	return &track, err
}

func (r *TrackRepository) ListPublished(page, limit int, category, search string) ([]model.Track, int64, error) {
	var tracks []model.Track
	var total int64

	query := r.DB.Model(&model.Track{}).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&tracks).Error
	return tracks, total, err
}

func (r *TrackRepository) ListByCreator(creatorID uint) ([]model.Track, error) {
	var tracks []model.Track
	err := r.DB.Where("creator_id = ?", creatorID).Order("id DESC").Find(&tracks).Error
	return tracks, err
}

func (r *TrackRepository) Update(track *model.Track) error {
	return r.DB.Save(track).Error
}

func (r *TrackRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Track{}, id).Error
}

// UpdateRating 更新评分聚合字段
func (r *TrackRepository) UpdateRating(trackID uint, rating float64, reviewCount int) error {
	return r.DB.Model(&model.Track{}).
		Where("id = ?", trackID).
		Updates(map[string]interface{}{"rating": rating, "review_count": reviewCount}).
		Error
}

func (r *TrackRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Track{}).Count(&count).Error
	return count, err
}
