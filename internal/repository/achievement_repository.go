package repository

import (
	"time"

	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

// ListAll 按id升序返回全部成就定义，评估顺序即此顺序
func (r *AchievementRepository) ListAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("id ASC").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByID(id uint) (*model.Achievement, error) {
	var achievement model.Achievement
	err := r.DB.First(&achievement, id).Error
	return &achievement, err
}

func (r *AchievementRepository) ListEarnedByUser(userID uint) ([]model.UserAchievement, error) {
	var earned []model.UserAchievement
	err := r.DB.Where("user_id = ?", userID).Find(&earned).Error
	return earned, err
}

// Grant 授予成就。唯一索引兜底防止并发重复授予；
// 冲突时返回 (false, nil) 表示此前已授予过。
func (r *AchievementRepository) Grant(userID, achievementID uint) (bool, error) {
	grant := &model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now(),
	}
	if err := r.DB.Create(grant).Error; err != nil {
		if IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
