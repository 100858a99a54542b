package repository

import (
	"time"

	"learnx_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByVerifyToken(token string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("verify_token = ?", token).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByResetToken(token string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("reset_token = ?", token).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// Delete 物理删除用户，仅用于注册失败回滚。
// 常规封禁走SetStatus；软删除会让email唯一索引挡住重新注册
func (r *UserRepository) Delete(userID uint) error {
	return r.DB.Unscoped().Delete(&model.User{}, userID).Error
}

// UpdateXP 原子累加经验值
func (r *UserRepository) UpdateXP(userID uint, xp int) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("xp", gorm.Expr("xp + ?", xp)).
		Error
}

// UpdateStreak 只写连续学习相关列。整行Save会把旧快照的xp一并写回，
// 覆盖掉并发的UpdateXP累加
func (r *UserRepository) UpdateStreak(userID uint, streakDays int, lastActive time.Time) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"streak_days":      streakDays,
			"last_active_date": lastActive,
		}).Error
}

// UpdateBadges 只写徽章列，理由同UpdateStreak
func (r *UserRepository) UpdateBadges(userID uint, badges datatypes.JSON) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("badges", badges).
		Error
}

// FindTopByXP 按XP降序返回前limit名用户，同分按创建顺序（id升序）保证稳定
func (r *UserRepository) FindTopByXP(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("xp DESC, id ASC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) List(page, limit int, status string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) SetStatus(userID uint, status model.UserStatus) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("status", status).
		Error
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Count(&count).Error
	return count, err
}
