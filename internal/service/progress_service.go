package service

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"gorm.io/gorm"
)

const (
	trackCompletionXP = 50  // 首次完成整个Track的奖励
	quizPassXP        = 100 // 通过测验的奖励
)

type ProgressService struct {
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
	TrackRepo      *repository.TrackRepository
	Gamification   *GamificationService
	Notifications  *NotificationService
	Email          *EmailService
}

func NewProgressService(
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	trackRepo *repository.TrackRepository,
	gamification *GamificationService,
	notifications *NotificationService,
	email *EmailService,
) *ProgressService {
	return &ProgressService{
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
		TrackRepo:      trackRepo,
		Gamification:   gamification,
		Notifications:  notifications,
		Email:          email,
	}
}

// ProgressUpdate 单次进度上报的结果
type ProgressUpdate struct {
	Progress       int                `json:"progress"`
	Completed      bool               `json:"completed"`
	XPAwarded      int                `json:"xpAwarded"`
	NewAchievement *model.Achievement `json:"newAchievement,omitempty"`
}

// RecordModuleProgress 上报单个模块的进度。
// 模块完成状态单调：已完成的模块不会因之后上报completed=false而回退。
// 进度到达100%时补齐progressData中缺失的模块条目，保证
// progress==100 与 completedModules 覆盖全部模块同时成立。
func (s *ProgressService) RecordModuleProgress(userID, moduleID uint, position *float64, completed bool) (*ProgressUpdate, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	enrollment, err := s.EnrollmentRepo.FindOrCreate(userID, module.TrackID)
	if err != nil {
		return nil, err
	}

	wasCompleted := enrollment.Completed
	now := time.Now()

	progressMap := enrollment.ProgressMap()
	key := moduleKey(moduleID)
	previous := progressMap[key]
	entry := model.ModuleProgress{
		Completed:    completed || previous.Completed, // 单调
		LastPosition: position,
		UpdatedAt:    &now,
	}
	progressMap[key] = entry

	// 模块数在报名后可能增减。进度始终以Track的当前模块集合为准：
	// 已被删除模块的完成记录不再计入，也不留在completedModules里
	modules, err := s.ModuleRepo.ListByTrack(module.TrackID)
	if err != nil {
		return nil, err
	}
	validIDs := make(map[uint]bool, len(modules))
	for _, m := range modules {
		validIDs[m.ID] = true
	}

	completedSet := make(map[uint]bool)
	for _, id := range enrollment.CompletedList() {
		if validIDs[id] {
			completedSet[id] = true
		}
	}
	if entry.Completed {
		completedSet[moduleID] = true
	}

	totalModules := len(modules)
	progress := 0
	if totalModules > 0 {
		progress = int(math.Round(100 * float64(len(completedSet)) / float64(totalModules)))
	}

	// 到达100%时把当前Track的所有模块补齐为已完成
	// （缺失条目position为null），保证完成集合覆盖全部模块
	if progress >= 100 && totalModules > 0 {
		for _, m := range modules {
			mKey := moduleKey(m.ID)
			if existing, ok := progressMap[mKey]; !ok || !existing.Completed {
				progressMap[mKey] = model.ModuleProgress{
					Completed:    true,
					LastPosition: nil,
					UpdatedAt:    &now,
				}
			}
			completedSet[m.ID] = true
		}
		progress = 100
	}

	if err := enrollment.SetProgressMap(progressMap); err != nil {
		return nil, err
	}
	if err := enrollment.SetCompletedList(sortedIDs(completedSet)); err != nil {
		return nil, err
	}
	enrollment.Progress = progress
	enrollment.Completed = progress == 100
	enrollment.LastModuleID = &moduleID
	enrollment.LastAccessed = now

	if err := s.EnrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}

	update := &ProgressUpdate{
		Progress:  enrollment.Progress,
		Completed: enrollment.Completed,
	}

	// 仅在本次调用把Track推到完成态时发一次奖励
	if !wasCompleted && enrollment.Completed {
		if err := s.UserRepo.UpdateXP(userID, trackCompletionXP); err != nil {
			return nil, err
		}
		update.XPAwarded += trackCompletionXP

		if s.Notifications != nil {
			s.Notifications.Notify(userID, model.NotifyTrackCompleted,
				"课程完成",
				"恭喜完成课程全部模块",
				map[string]interface{}{"trackId": module.TrackID, "xpAwarded": trackCompletionXP})
		}

		if s.Email != nil {
			user, uerr := s.UserRepo.FindByID(userID)
			track, terr := s.TrackRepo.FindByID(module.TrackID)
			if uerr == nil && terr == nil {
				s.Email.SendTrackCompletedEmail(user.Email, user.Name, track.Title)
			}
		}

		granted, err := s.Gamification.CheckAchievements(userID)
		if err != nil {
			return nil, err
		}
		if len(granted) > 0 {
			// 同时解锁多个时只展示第一个（评估顺序）
			update.NewAchievement = &granted[0]
		}
	}

	return update, nil
}

// CompleteModule 共享的完成路径：标记模块完成、发放额外XP、评估成就。
// 测验通过与直接上报两个入口都走这里，保证不变量一致。
func (s *ProgressService) CompleteModule(userID, moduleID uint, bonusXP int) (*ProgressUpdate, error) {
	update, err := s.RecordModuleProgress(userID, moduleID, nil, true)
	if err != nil {
		return nil, err
	}

	if bonusXP > 0 {
		if err := s.UserRepo.UpdateXP(userID, bonusXP); err != nil {
			return nil, err
		}
		update.XPAwarded += bonusXP

		granted, err := s.Gamification.CheckAchievements(userID)
		if err != nil {
			return nil, err
		}
		if update.NewAchievement == nil && len(granted) > 0 {
			update.NewAchievement = &granted[0]
		}
	}

	return update, nil
}

// GetEnrollmentProgress 返回用户在某Track的进度记录
func (s *ProgressService) GetEnrollmentProgress(userID, trackID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndTrack(userID, trackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return enrollment, nil
}

func moduleKey(moduleID uint) string {
	return strconv.FormatUint(uint64(moduleID), 10)
}

func sortedIDs(set map[uint]bool) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
