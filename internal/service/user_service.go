package service

import (
	"context"
	"io"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	UserRepo        *repository.UserRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	AchievementRepo *repository.AchievementRepository
	TrackRepo       *repository.TrackRepository
	Storage         *StorageService
}

func NewUserService(
	userRepo *repository.UserRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	achievementRepo *repository.AchievementRepository,
	trackRepo *repository.TrackRepository,
	storage *StorageService,
) *UserService {
	return &UserService{
		UserRepo:        userRepo,
		EnrollmentRepo:  enrollmentRepo,
		AchievementRepo: achievementRepo,
		TrackRepo:       trackRepo,
		Storage:         storage,
	}
}

// Profile 用户资料及游戏化状态
type Profile struct {
	User         *model.User             `json:"user"`
	Level        LevelInfo               `json:"level"`
	Achievements []model.UserAchievement `json:"achievements"`
}

func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	earned, err := s.AchievementRepo.ListEarnedByUser(userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:         user,
		Level:        CalculateLevel(user.XP),
		Achievements: earned,
	}, nil
}

type ProfileInput struct {
	Name string
	Bio  string
}

func (s *UserService) UpdateProfile(userID uint, input ProfileInput) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return util.ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.UserRepo.Update(user)
}

// UploadAvatar 上传头像并更新用户资料
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", util.ErrUserNotFound
	}

	key := ObjectKey("avatars", filename)
	url, err := s.Storage.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

// EnrollmentSummary 我的课程列表条目
type EnrollmentSummary struct {
	Enrollment model.Enrollment `json:"enrollment"`
	Track      *model.Track     `json:"track,omitempty"`
}

// MyEnrollments 返回用户报名的全部课程及进度
func (s *UserService) MyEnrollments(userID uint) ([]EnrollmentSummary, error) {
	enrollments, err := s.EnrollmentRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]EnrollmentSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		summary := EnrollmentSummary{Enrollment: enrollment}
		if track, err := s.TrackRepo.FindByID(enrollment.TrackID); err == nil {
			summary.Track = track
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
