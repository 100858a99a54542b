package repository

import (
	"errors"

	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByUserAndTrack(userID, trackID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND track_id = ?", userID, trackID).First(&enrollment).Error
	return &enrollment, err
}

// FindOrCreate 幂等创建：并发插入撞唯一索引时回读已存在的行
func (r *EnrollmentRepository) FindOrCreate(userID, trackID uint) (*model.Enrollment, error) {
	enrollment, err := r.FindByUserAndTrack(userID, trackID)
	if err == nil {
		return enrollment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &model.Enrollment{UserID: userID, TrackID: trackID}
	if createErr := r.DB.Create(fresh).Error; createErr != nil {
		if IsDuplicateKey(createErr) {
			return r.FindByUserAndTrack(userID, trackID)
		}
		return nil, createErr
	}
	return fresh, nil
}

func (r *EnrollmentRepository) Update(enrollment *model.Enrollment) error {
	return r.DB.Save(enrollment).Error
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("last_accessed DESC").Find(&enrollments).Error
	return enrollments, err
}

// ListByTrackTopProgress 课程内排行榜：按进度降序，限前limit名
func (r *EnrollmentRepository) ListByTrackTopProgress(trackID uint, limit int) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("track_id = ?", trackID).
		Order("progress DESC, id ASC").
		Limit(limit).
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) CountCompletedByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Count(&count).Error
	return count, err
}

// CountModulesCompletedByUser 汇总用户在全部课程中已完成的模块数
func (r *EnrollmentRepository) CountModulesCompletedByUser(userID uint) (int64, error) {
	enrollments, err := r.ListByUser(userID)
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range enrollments {
		total += int64(len(enrollments[i].CompletedList()))
	}
	return total, nil
}
