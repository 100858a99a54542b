package service

import (
	"context"
	"io"
	"strings"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TrackService struct {
	TrackRepo      *repository.TrackRepository
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Gamification   *GamificationService
	Storage        *StorageService
	logger         *zap.Logger
}

func NewTrackService(
	trackRepo *repository.TrackRepository,
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	gamification *GamificationService,
	storage *StorageService,
	logger *zap.Logger,
) *TrackService {
	return &TrackService{
		TrackRepo:      trackRepo,
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		Gamification:   gamification,
		Storage:        storage,
		logger:         logger,
	}
}

type TrackInput struct {
	Title       string
	Description string
	Category    string
}

// Create 创建课程，初始为未发布状态
func (s *TrackService) Create(creatorID uint, input TrackInput) (*model.Track, error) {
	track := &model.Track{
		CreatorID:   creatorID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
	}
	if err := s.TrackRepo.Create(track); err != nil {
		return nil, err
	}
	return track, nil
}

// Update 只有课程创建者或管理员可以修改
func (s *TrackService) Update(userID uint, role model.UserRole, trackID uint, input TrackInput) (*model.Track, error) {
	track, err := s.authorize(userID, role, trackID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		track.Title = strings.TrimSpace(input.Title)
	}
	if input.Description != "" {
		track.Description = input.Description
	}
	if input.Category != "" {
		track.Category = input.Category
	}
	if err := s.TrackRepo.Update(track); err != nil {
		return nil, err
	}
	return track, nil
}

// SetPublished 发布或下架课程
func (s *TrackService) SetPublished(userID uint, role model.UserRole, trackID uint, published bool) (*model.Track, error) {
	track, err := s.authorize(userID, role, trackID)
	if err != nil {
		return nil, err
	}
	track.IsPublished = published
	if err := s.TrackRepo.Update(track); err != nil {
		return nil, err
	}
	return track, nil
}

func (s *TrackService) Delete(userID uint, role model.UserRole, trackID uint) error {
	if _, err := s.authorize(userID, role, trackID); err != nil {
		return err
	}
	return s.TrackRepo.Delete(trackID)
}

// Get 返回课程详情（含排序后的模块）
// 未发布课程仅创建者和管理员可见
func (s *TrackService) Get(trackID uint, userID uint, role model.UserRole) (*model.Track, error) {
	track, err := s.TrackRepo.FindByIDWithModules(trackID)
	if err != nil {
		return nil, util.ErrTrackNotFound
	}
	if !track.IsPublished && track.CreatorID != userID && role != model.RoleAdmin {
		return nil, util.ErrTrackNotFound
	}
	return track, nil
}

// List 分页返回已发布课程，支持分类过滤和标题搜索
func (s *TrackService) List(page, limit int, category, search string) ([]model.Track, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.TrackRepo.ListPublished(page, limit, category, search)
}

func (s *TrackService) ListByCreator(creatorID uint) ([]model.Track, error) {
	return s.TrackRepo.ListByCreator(creatorID)
}

// Enroll 报名课程，重复报名返回冲突错误
func (s *TrackService) Enroll(userID, trackID uint) (*model.Enrollment, error) {
	track, err := s.TrackRepo.FindByID(trackID)
	if err != nil {
		return nil, util.ErrTrackNotFound
	}
	if !track.IsPublished {
		return nil, util.ErrTrackNotPublished
	}

	if _, err := s.EnrollmentRepo.FindByUserAndTrack(userID, trackID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	}

	enrollment := &model.Enrollment{UserID: userID, TrackID: trackID}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}

	// 报名数可能触发成就
	if s.Gamification != nil {
		if _, err := s.Gamification.CheckAchievements(userID); err != nil {
			s.logger.Warn("报名后成就检查失败", zap.Uint("userId", userID), zap.Error(err))
		}
	}
	return enrollment, nil
}

// UploadCover 上传课程封面并更新CoverURL
func (s *TrackService) UploadCover(ctx context.Context, userID uint, role model.UserRole, trackID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	track, err := s.authorize(userID, role, trackID)
	if err != nil {
		return "", err
	}

	key := ObjectKey("covers", filename)
	url, err := s.Storage.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return "", err
	}

	track.CoverURL = url
	if err := s.TrackRepo.Update(track); err != nil {
		return "", err
	}
	return url, nil
}

func (s *TrackService) authorize(userID uint, role model.UserRole, trackID uint) (*model.Track, error) {
	track, err := s.TrackRepo.FindByID(trackID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTrackNotFound
		}
		return nil, err
	}
	if track.CreatorID != userID && role != model.RoleAdmin {
		return nil, util.ErrPermissionDenied
	}
	return track, nil
}
