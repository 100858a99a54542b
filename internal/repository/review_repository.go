package repository

import (
	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) Create(review *model.Review) error {
	return r.DB.Create(review).Error
}

func (r *ReviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	err := r.DB.First(&review, id).Error
	return &review, err
}

func (r *ReviewRepository) FindByTrackAndUser(trackID, userID uint) (*model.Review, error) {
	var review model.Review
	err := r.DB.Where("track_id = ? AND user_id = ?", trackID, userID).First(&review).Error
	return &review, err
}

func (r *ReviewRepository) ListByTrack(trackID uint, page, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.DB.Model(&model.Review{}).Where("track_id = ?", trackID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Review{}, id).Error
}

// Aggregate 计算Track的平均评分与评价数
func (r *ReviewRepository) Aggregate(trackID uint) (float64, int, error) {
	var result struct {
		Avg   float64
		Count int
	}
	err := r.DB.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("track_id = ?", trackID).
		Scan(&result).Error
	return result.Avg, result.Count, err
}
