package repository

import (
	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) FindByModule(moduleID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("module_id = ?", moduleID).First(&quiz).Error
	return &quiz, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Quiz{}, id).Error
}

// SaveAttempt 保存判题记录（只插入，不更新）
func (r *QuizRepository) SaveAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizRepository) ListAttempts(userID, quizID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("id DESC").Find(&attempts).Error
	return attempts, err
}

func (r *QuizRepository) CountAttemptsByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *QuizRepository) CountPassedByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Count(&count).Error
	return count, err
}
