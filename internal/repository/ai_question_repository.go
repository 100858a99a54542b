package repository

import (
	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type AIQuestionRepository struct {
	DB *gorm.DB
}

func NewAIQuestionRepository(db *gorm.DB) *AIQuestionRepository {
	return &AIQuestionRepository{DB: db}
}

func (r *AIQuestionRepository) Create(question *model.AIQuestion) error {
	return r.DB.Create(question).Error
}

func (r *AIQuestionRepository) ListByUserAndModule(userID, moduleID uint, limit int) ([]model.AIQuestion, error) {
	var questions []model.AIQuestion
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("id DESC").Limit(limit).Find(&questions).Error
	return questions, err
}
