package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"learnx_backend/internal/config"
	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	UserRepo       *repository.UserRepository
	InvitationRepo *repository.InvitationRepository
	Email          *EmailService
	Cfg            *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, invitationRepo *repository.InvitationRepository, email *EmailService, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:       userRepo,
		InvitationRepo: invitationRepo,
		Email:          email,
		Cfg:            cfg,
	}
}

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           model.UserRole
	InvitationCode string
}

// Register 注册新用户并发送验证邮件
// 注册admin角色需要有效的一次性邀请码
func (s *AuthService) Register(input RegisterInput) (*model.User, error) {
	_, err := s.UserRepo.FindByEmail(input.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := input.Role
	switch role {
	case model.RoleCreator, model.RoleLearner:
	case model.RoleAdmin:
		if err := s.checkInvitation(input.InvitationCode); err != nil {
			return nil, err
		}
	default:
		role = model.RoleLearner
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:        input.Name,
		Email:       input.Email,
		Password:    string(hashed),
		Role:        role,
		Status:      model.StatusActive,
		VerifyToken: randomToken(),
	}
	if err := s.UserRepo.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	// admin注册成功后才消耗邀请码
	if role == model.RoleAdmin {
		if err := s.consumeInvitation(input.InvitationCode, user); err != nil {
			return nil, err
		}
	}

	if s.Email != nil {
		s.Email.SendVerificationEmail(user.Email, user.Name, user.VerifyToken)
	}
	return user, nil
}

// consumeInvitation 占用邀请码。并发注册时只有一个请求能占到，
// 抢输的一方回滚刚创建的账号
func (s *AuthService) consumeInvitation(code string, user *model.User) error {
	consumed, err := s.InvitationRepo.Consume(code, user.ID)
	if err != nil {
		return err
	}
	if !consumed {
		_ = s.UserRepo.Delete(user.ID)
		return util.ErrInvitationUsed
	}
	return nil
}

func (s *AuthService) checkInvitation(code string) error {
	if code == "" {
		return util.ErrInvitationNotFound
	}
	invitation, err := s.InvitationRepo.FindByCode(code)
	if err != nil {
		return util.ErrInvitationNotFound
	}
	if invitation.IsUsed {
		return util.ErrInvitationUsed
	}
	if invitation.ExpiresAt != nil && invitation.ExpiresAt.Before(time.Now()) {
		return util.ErrInvitationExpired
	}
	return nil
}

// Login 校验凭证并签发JWT，被封禁账号拒绝登录
func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}
	if user.Status == model.StatusBanned {
		return "", nil, util.ErrAccountBanned
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.UserRepo.Update(user); err != nil {
		return "", nil, err
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// VerifyEmail 通过邮件中的token完成邮箱验证
func (s *AuthService) VerifyEmail(token string) error {
	user, err := s.UserRepo.FindByVerifyToken(token)
	if err != nil {
		return util.ErrUserNotFound
	}
	user.EmailVerified = true
	user.VerifyToken = ""
	return s.UserRepo.Update(user)
}

// RequestPasswordReset 生成重置token并发送邮件
// 邮箱不存在时静默成功，避免暴露注册信息
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	expires := time.Now().Add(resetTokenTTL)
	user.ResetToken = randomToken()
	user.ResetExpires = &expires
	if err := s.UserRepo.Update(user); err != nil {
		return err
	}

	if s.Email != nil {
		s.Email.SendPasswordResetEmail(user.Email, user.Name, user.ResetToken)
	}
	return nil
}

// ResetPassword 使用未过期的重置token设置新密码
func (s *AuthService) ResetPassword(token, newPassword string) error {
	user, err := s.UserRepo.FindByResetToken(token)
	if err != nil {
		return util.ErrUserNotFound
	}
	if user.ResetExpires == nil || user.ResetExpires.Before(time.Now()) {
		return util.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	user.ResetToken = ""
	user.ResetExpires = nil
	return s.UserRepo.Update(user)
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:64]
	}
	return hex.EncodeToString(b)
}
