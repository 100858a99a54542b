package service

import (
	"context"
	"io"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleService 课程模块与测验的创作侧操作
type ModuleService struct {
	TrackRepo  *repository.TrackRepository
	ModuleRepo *repository.ModuleRepository
	QuizRepo   *repository.QuizRepository
	Storage    *StorageService
	logger     *zap.Logger
}

func NewModuleService(
	trackRepo *repository.TrackRepository,
	moduleRepo *repository.ModuleRepository,
	quizRepo *repository.QuizRepository,
	storage *StorageService,
	logger *zap.Logger,
) *ModuleService {
	return &ModuleService{
		TrackRepo:  trackRepo,
		ModuleRepo: moduleRepo,
		QuizRepo:   quizRepo,
		Storage:    storage,
		logger:     logger,
	}
}

type ModuleInput struct {
	Title string
	Order int
	Notes string
}

// Create 在课程下新建模块，Order在Track内必须唯一
func (s *ModuleService) Create(userID uint, role model.UserRole, trackID uint, input ModuleInput) (*model.Module, error) {
	if err := s.authorizeTrack(userID, role, trackID); err != nil {
		return nil, err
	}

	module := &model.Module{
		TrackID: trackID,
		Title:   input.Title,
		Order:   input.Order,
		Notes:   input.Notes,
	}
	if err := s.ModuleRepo.Create(module); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, util.ErrModuleOrderConflict
		}
		return nil, err
	}
	return module, nil
}

func (s *ModuleService) Update(userID uint, role model.UserRole, moduleID uint, input ModuleInput) (*model.Module, error) {
	module, err := s.authorizeModule(userID, role, moduleID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		module.Title = input.Title
	}
	if input.Order > 0 {
		module.Order = input.Order
	}
	if input.Notes != "" {
		module.Notes = input.Notes
	}
	if err := s.ModuleRepo.Update(module); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, util.ErrModuleOrderConflict
		}
		return nil, err
	}
	return module, nil
}

func (s *ModuleService) Delete(userID uint, role model.UserRole, moduleID uint) error {
	if _, err := s.authorizeModule(userID, role, moduleID); err != nil {
		return err
	}
	return s.ModuleRepo.Delete(moduleID)
}

func (s *ModuleService) Get(moduleID uint) (*model.Module, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}
	return module, nil
}

// ListByTrack 返回课程下按Order排序的模块
func (s *ModuleService) ListByTrack(trackID uint) ([]model.Module, error) {
	return s.ModuleRepo.ListByTrack(trackID)
}

// UploadVideo 上传模块视频。上传成功后视频进入processing状态，
// 后台探测时长完成后置为ready，探测失败置为failed
func (s *ModuleService) UploadVideo(ctx context.Context, userID uint, role model.UserRole, moduleID uint, filename string, reader io.Reader, size int64, contentType string) (*model.Module, error) {
	module, err := s.authorizeModule(userID, role, moduleID)
	if err != nil {
		return nil, err
	}

	key := ObjectKey("videos", filename)
	url, err := s.Storage.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	module.VideoURL = url
	module.VideoKey = key
	module.VideoStatus = model.VideoProcessing
	module.VideoDuration = 0
	if err := s.ModuleRepo.Update(module); err != nil {
		return nil, err
	}

	go s.probeVideo(module.ID, key)
	return module, nil
}

func (s *ModuleService) probeVideo(moduleID uint, key string) {
	localPath := s.Storage.LocalPath(key)
	if localPath == "" {
		// 对象存储后端暂不支持探测，直接置为可用
		if err := s.ModuleRepo.SetVideoStatus(moduleID, model.VideoReady, 0); err != nil {
			s.logger.Error("更新视频状态失败", zap.Uint("moduleId", moduleID), zap.Error(err))
		}
		return
	}

	info, err := util.GetVideoInfo(localPath)
	if err != nil {
		s.logger.Warn("视频探测失败", zap.Uint("moduleId", moduleID), zap.Error(err))
		if err := s.ModuleRepo.SetVideoStatus(moduleID, model.VideoFailed, 0); err != nil {
			s.logger.Error("更新视频状态失败", zap.Uint("moduleId", moduleID), zap.Error(err))
		}
		return
	}

	if err := s.ModuleRepo.SetVideoStatus(moduleID, model.VideoReady, info.Duration); err != nil {
		s.logger.Error("更新视频状态失败", zap.Uint("moduleId", moduleID), zap.Error(err))
	}
}

type QuizInput struct {
	Title        string
	Questions    []model.QuizQuestion
	PassingScore int
}

// SaveQuiz 创建或覆盖模块的测验，每个模块最多一个测验
func (s *ModuleService) SaveQuiz(userID uint, role model.UserRole, moduleID uint, input QuizInput) (*model.Quiz, error) {
	if _, err := s.authorizeModule(userID, role, moduleID); err != nil {
		return nil, err
	}

	passingScore := input.PassingScore
	if passingScore <= 0 {
		passingScore = defaultPassingScore
	}

	quiz, err := s.QuizRepo.FindByModule(moduleID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		quiz = &model.Quiz{ModuleID: moduleID}
	}

	quiz.Title = input.Title
	quiz.PassingScore = passingScore
	if err := quiz.SetQuestionList(input.Questions); err != nil {
		return nil, err
	}

	if quiz.ID == 0 {
		err = s.QuizRepo.Create(quiz)
	} else {
		err = s.QuizRepo.Update(quiz)
	}
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *ModuleService) DeleteQuiz(userID uint, role model.UserRole, moduleID uint) error {
	if _, err := s.authorizeModule(userID, role, moduleID); err != nil {
		return err
	}
	quiz, err := s.QuizRepo.FindByModule(moduleID)
	if err != nil {
		return util.ErrQuizNotFound
	}
	return s.QuizRepo.Delete(quiz.ID)
}

func (s *ModuleService) authorizeTrack(userID uint, role model.UserRole, trackID uint) error {
	track, err := s.TrackRepo.FindByID(trackID)
	if err != nil {
		return util.ErrTrackNotFound
	}
	if track.CreatorID != userID && role != model.RoleAdmin {
		return util.ErrPermissionDenied
	}
	return nil
}

func (s *ModuleService) authorizeModule(userID uint, role model.UserRole, moduleID uint) (*model.Module, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}
	if err := s.authorizeTrack(userID, role, module.TrackID); err != nil {
		return nil, err
	}
	return module, nil
}
