package service

import (
	"time"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"github.com/google/uuid"
)

const invitationTTL = 7 * 24 * time.Hour

// AdminService 平台管理操作，仅admin角色可用
type AdminService struct {
	UserRepo       *repository.UserRepository
	TrackRepo      *repository.TrackRepository
	EnrollmentRepo *repository.EnrollmentRepository
	InvitationRepo *repository.InvitationRepository
	Notifications  *NotificationService
}

func NewAdminService(
	userRepo *repository.UserRepository,
	trackRepo *repository.TrackRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	invitationRepo *repository.InvitationRepository,
	notifications *NotificationService,
) *AdminService {
	return &AdminService{
		UserRepo:       userRepo,
		TrackRepo:      trackRepo,
		EnrollmentRepo: enrollmentRepo,
		InvitationRepo: invitationRepo,
		Notifications:  notifications,
	}
}

func (s *AdminService) ListUsers(page, limit int, status string) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.UserRepo.List(page, limit, status)
}

// SetUserStatus 封禁或解封用户，不允许操作管理员账号
func (s *AdminService) SetUserStatus(userID uint, status model.UserStatus) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if user.Role == model.RoleAdmin {
		return util.ErrPermissionDenied
	}
	return s.UserRepo.SetStatus(userID, status)
}

// MintInvitation 生成一次性admin注册邀请码，7天有效
func (s *AdminService) MintInvitation() (*model.AdminInvitationCode, error) {
	expires := time.Now().Add(invitationTTL)
	code := &model.AdminInvitationCode{
		Code:      uuid.NewString(),
		ExpiresAt: &expires,
	}
	if err := s.InvitationRepo.Create(code); err != nil {
		return nil, err
	}
	return code, nil
}

func (s *AdminService) ListInvitations() ([]model.AdminInvitationCode, error) {
	return s.InvitationRepo.List()
}

// PlatformStats 平台概览统计
type PlatformStats struct {
	TotalUsers       int64 `json:"totalUsers"`
	TotalTracks      int64 `json:"totalTracks"`
	TotalEnrollments int64 `json:"totalEnrollments"`
}

func (s *AdminService) Stats() (*PlatformStats, error) {
	users, err := s.UserRepo.Count()
	if err != nil {
		return nil, err
	}
	tracks, err := s.TrackRepo.Count()
	if err != nil {
		return nil, err
	}
	enrollments, err := s.EnrollmentRepo.Count()
	if err != nil {
		return nil, err
	}
	return &PlatformStats{
		TotalUsers:       users,
		TotalTracks:      tracks,
		TotalEnrollments: enrollments,
	}, nil
}

// Announce 向指定用户批量发送公告通知
func (s *AdminService) Announce(userIDs []uint, title, message string) {
	for _, userID := range userIDs {
		s.Notifications.Notify(userID, model.NotifyAnnouncement, title, message, nil)
	}
}
